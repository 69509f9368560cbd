package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shareapi/internal/config"
	"shareapi/internal/database"
	"shareapi/internal/database/migration"
	handlers "shareapi/internal/http/handler"
	"shareapi/internal/http/middleware"
	"shareapi/internal/logger"
	"shareapi/internal/otel"
	"shareapi/internal/repository/postgres"
	"shareapi/internal/service"
	"shareapi/internal/storage"
)

// bodyLimit leaves room for multipart framing around the largest resource upload.
const bodyLimit = int(service.MaxResourceSize) + 1<<20

const shutdownTimeout = 10 * time.Second

// @title Share API
// @version 1.0
// @description File sharing over local or OSS-compatible object storage.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: **Bearer {token}**
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logger.New(cfg.Log, cfg.Telemetry.ServiceName, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, cfg.Telemetry, logger.Component(log, "otel"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database, logger.Component(log, "database"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger.Component(log, "migration"), cfg.Database.Host); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	if err := cfg.Storage.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid storage configuration")
	}
	storageMetrics, err := storage.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register storage metrics")
	}
	storageLog := logger.Component(log, "storage")
	store, err := storage.New(cfg.Storage, storage.WithLogger(storageLog), storage.WithMetrics(storageMetrics))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	fileRepo := postgres.NewFilePostgres(db)
	fileSvc := service.NewFileService(store, fileRepo, logger.Component(log, "service"), storage.WithRetryMetrics(storageMetrics))

	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if local, ok := store.(*storage.LocalStorage); ok && strings.HasPrefix(cfg.Storage.Local.BaseURL, "/") {
		app.Static(strings.TrimRight(cfg.Storage.Local.BaseURL, "/"), local.Root())
	}

	handlers.RegisterRoutes(app, db, fileSvc, middleware.RequireAuth([]byte(cfg.JWTSecret)))

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().
		Str("addr", addr).
		Str("storage_backend", string(store.BackendType())).
		Msg("server starting")

	if err := app.Listen(addr); err != nil {
		log.Error().Err(err).Msg("failed to start server")
	}
}
