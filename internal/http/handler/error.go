package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"shareapi/internal/http/middleware"
	"shareapi/internal/service"
	"shareapi/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// serviceErrors maps domain errors onto responses. The first match wins.
var serviceErrors = []errorMapping{
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", "id is required"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "file not found"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required"},
	{service.ErrFileNameRequired, fiber.StatusBadRequest, "FILE_NAME_REQUIRED", "file name is required"},
	{service.ErrInvalidScope, fiber.StatusBadRequest, "INVALID_SCOPE", "scope must be resources or images"},
	{service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the size limit"},
	{service.ErrEmptyFile, fiber.StatusBadRequest, "EMPTY_FILE", "file is empty"},
	{service.ErrKeyOutOfScope, fiber.StatusForbidden, "KEY_OUT_OF_SCOPE", "key is outside the allowed scope"},
	{service.ErrUnsupportedMode, fiber.StatusBadRequest, "UNSUPPORTED_STORAGE_MODE", "direct upload requires the remote storage backend"},
	{service.ErrUploadMissing, fiber.StatusBadRequest, "UPLOAD_NOT_FOUND", "uploaded file is missing or inaccessible"},
	{service.ErrUnsupportedType, fiber.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "file type is not allowed in this scope"},
	{service.ErrSizeUnknown, fiber.StatusBadRequest, "SIZE_UNKNOWN", "uploaded file size is unknown"},
	{service.ErrAlreadyRecorded, fiber.StatusConflict, "ALREADY_RECORDED", "file is already recorded"},
	{storage.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "file not found"},
	{storage.ErrValidation, fiber.StatusBadRequest, "INVALID_KEY", "invalid object key"},
}

// writeServiceError translates err into the error envelope. Unmapped errors
// become a generic 500 and are logged with the request-scoped logger.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return writeError(c, m.status, m.code, m.message)
		}
	}
	zerolog.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "missing or invalid bearer token")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "forbidden")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			zerolog.Ctx(c.UserContext()).Error().Err(err).Msg("unhandled error")
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
