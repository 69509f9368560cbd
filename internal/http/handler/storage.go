package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shareapi/internal/http/middleware"
	"shareapi/internal/service"
	"shareapi/internal/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

type uploadCredentialRequest struct {
	FileType    string `json:"fileType" validate:"required,oneof=resource resources image images"`
	FileName    string `json:"fileName" validate:"required,max=255"`
	FileSize    *int64 `json:"fileSize" validate:"omitempty,gte=0"`
	ContentType string `json:"contentType" validate:"omitempty,max=255"`
}

type uploadCallbackRequest struct {
	Key          string `json:"ossKey" validate:"required,max=1024"`
	OriginalName string `json:"originalName" validate:"omitempty,max=255"`
}

// StorageStatus describes the active storage backend.
//
//	@Summary	Storage backend status
//	@Tags		storage
//	@Produce	json
//	@Success	200	{object}	service.StorageStatus
//	@Router		/storage/status [get]
func StorageStatus(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Status(c.UserContext()))
	}
}

// UploadCredentials issues STS credentials or a presigned PUT URL for a direct upload.
//
//	@Summary	Issue direct upload credentials
//	@Tags		storage
//	@Accept		json
//	@Produce	json
//	@Param		request	body		uploadCredentialRequest	true	"File to upload"
//	@Success	200		{object}	service.UploadCredential
//	@Failure	400		{object}	errorPayload
//	@Failure	401		{object}	errorPayload
//	@Failure	413		{object}	errorPayload
//	@Failure	502		{object}	errorPayload
//	@Security	BearerAuth
//	@Router		/storage/upload-credentials [post]
func UploadCredentials(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req uploadCredentialRequest
		if code, msg, ok := bindJSON(c, &req); !ok {
			return writeError(c, fiber.StatusBadRequest, code, msg)
		}
		cred, err := svc.IssueUploadCredential(c.UserContext(), service.CredentialInput{
			OwnerID:     middleware.OwnerID(c),
			Scope:       req.FileType,
			FileName:    req.FileName,
			ContentType: req.ContentType,
			Size:        req.FileSize,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(cred)
	}
}

// UploadCallback records a direct upload once the object is visible in the store.
// The scope comes from the path: /storage/callback/resources or /storage/callback/images.
//
//	@Summary	Record a direct upload
//	@Tags		storage
//	@Accept		json
//	@Produce	json
//	@Param		scope	path		string					true	"resources or images"
//	@Param		request	body		uploadCallbackRequest	true	"Uploaded object"
//	@Success	201		{object}	model.StoredFile
//	@Failure	400		{object}	errorPayload
//	@Failure	401		{object}	errorPayload
//	@Failure	403		{object}	errorPayload
//	@Failure	409		{object}	errorPayload
//	@Failure	413		{object}	errorPayload
//	@Security	BearerAuth
//	@Router		/storage/callback/{scope} [post]
func UploadCallback(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req uploadCallbackRequest
		if code, msg, ok := bindJSON(c, &req); !ok {
			return writeError(c, fiber.StatusBadRequest, code, msg)
		}
		rec, err := svc.ConfirmUpload(c.UserContext(), service.ConfirmInput{
			OwnerID:      middleware.OwnerID(c),
			Scope:        c.Params("scope"),
			Key:          req.Key,
			OriginalName: req.OriginalName,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// bindJSON decodes and validates the body into dst. On failure it returns the
// error code and message to respond with.
func bindJSON(c *fiber.Ctx, dst any) (code, message string, ok bool) {
	if err := c.BodyParser(dst); err != nil {
		return "INVALID_BODY", "invalid request body", false
	}
	if err := validate.Struct(dst); err != nil {
		return "VALIDATION_FAILED", validationMessage(err), false
	}
	return "", "", true
}

// validationMessage names the first failing field by its JSON name.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}
	fe := fieldErrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// expiresIn converts a non-negative ?expires= value, capping it before the
// multiplication so it cannot overflow.
func expiresIn(secs int) time.Duration {
	if maxSecs := int(storage.MaxSignedURLExpiry / time.Second); secs > maxSecs {
		secs = maxSecs
	}
	return time.Duration(secs) * time.Second
}
