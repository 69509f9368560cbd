package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shareapi/internal/http/middleware"
	"shareapi/internal/model"
	"shareapi/internal/repository"
	"shareapi/internal/service"
)

// ListFiles lists the caller's files with limit & offset, optionally narrowed by ?scope=.
//
//	@Summary	List files
//	@Tags		files
//	@Produce	json
//	@Param		limit	query		int		false	"Page size"	default(10)
//	@Param		offset	query		int		false	"Offset"	default(0)
//	@Param		scope	query		string	false	"resources or images"
//	@Success	200		{object}	service.FileListResult
//	@Failure	400		{object}	errorPayload
//	@Failure	401		{object}	errorPayload
//	@Security	BearerAuth
//	@Router		/files [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		filter := repository.FileFilter{OwnerID: middleware.OwnerID(c)}
		if raw := c.Query("scope"); raw != "" {
			scope, err := service.NormalizeScope(raw)
			if err != nil {
				return writeServiceError(c, err)
			}
			filter.Scope = scope
		}

		res, err := svc.List(c.UserContext(), filter, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadFile accepts multipart/form-data with a "file" field and an optional "scope" (default resources).
//
//	@Summary	Upload a file
//	@Tags		files
//	@Accept		mpfd
//	@Produce	json
//	@Param		file	formData	file	true	"File content"
//	@Param		scope	formData	string	false	"resources or images"	default(resources)
//	@Success	201		{object}	model.StoredFile
//	@Failure	400		{object}	errorPayload
//	@Failure	413		{object}	errorPayload
//	@Failure	502		{object}	errorPayload
//	@Security	BearerAuth
//	@Router		/files [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		rec, err := svc.Upload(c.UserContext(), service.UploadInput{
			OwnerID:     middleware.OwnerID(c),
			Scope:       c.FormValue("scope", model.ScopeResources),
			FileName:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Reader:      f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// GetFile returns a file record by ID.
//
//	@Summary	Get file metadata
//	@Tags		files
//	@Produce	json
//	@Param		id	path		string	true	"File ID"	format(uuid)
//	@Success	200	{object}	model.StoredFile
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Security	BearerAuth
//	@Router		/files/{id} [get]
func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rec, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

// FileContent streams the stored bytes with the recorded content type.
//
//	@Summary	Read file content
//	@Tags		files
//	@Produce	octet-stream
//	@Param		id	path		string	true	"File ID"	format(uuid)
//	@Success	200	{file}		binary
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Security	BearerAuth
//	@Router		/files/{id}/content [get]
func FileContent(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rec, data, err := svc.Content(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, rec.ContentType)
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		if rec.ETag != "" {
			c.Set(fiber.HeaderETag, `"`+rec.ETag+`"`)
		}
		return c.Send(data)
	}
}

// DownloadFile redirects to a URL that downloads the file under its original name.
// ?expires= sets the URL lifetime in seconds; 0 or absent means the backend
// default and values beyond seven days are capped.
//
//	@Summary	Redirect to a download URL
//	@Tags		files
//	@Produce	json
//	@Param		id		path		string	true	"File ID"	format(uuid)
//	@Param		expires	query		int		false	"URL lifetime in seconds"
//	@Success	302
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Security	BearerAuth
//	@Router		/files/{id}/download [get]
func DownloadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		expires, err := strconv.Atoi(c.Query("expires", "0"))
		if err != nil || expires < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRES", "invalid expires")
		}
		u, err := svc.DownloadURL(c.UserContext(), id, expiresIn(expires))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Redirect(u, fiber.StatusFound)
	}
}

// DeleteFile removes a file owned by the caller.
//
//	@Summary	Delete a file
//	@Tags		files
//	@Produce	json
//	@Param		id	path	string	true	"File ID"	format(uuid)
//	@Success	204
//	@Failure	400	{object}	errorPayload
//	@Failure	403	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Security	BearerAuth
//	@Router		/files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rec, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if rec.OwnerID != middleware.OwnerID(c) {
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "only the owner can delete this file")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func fileID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
