package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"shareapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// auth guards every route that acts on behalf of a user.
func RegisterRoutes(app *fiber.App, db *sql.DB, fileSvc service.FileService, auth fiber.Handler) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", Liveness())
	app.Get("/storage/status", StorageStatus(fileSvc))
	app.Get("/swagger/*", SwaggerUI())

	files := app.Group("/files", auth)
	files.Get("/", ListFiles(fileSvc))
	files.Post("/", UploadFile(fileSvc))
	files.Get("/:id", GetFile(fileSvc))
	files.Get("/:id/content", FileContent(fileSvc))
	files.Get("/:id/download", DownloadFile(fileSvc))
	files.Delete("/:id", DeleteFile(fileSvc))

	app.Post("/storage/upload-credentials", auth, UploadCredentials(fileSvc))
	app.Post("/storage/callback/:scope", auth, UploadCallback(fileSvc))
}
