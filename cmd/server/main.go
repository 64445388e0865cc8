package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" && cfg.DBPassword == "" {
		slog.Error("DATABASE_URL or DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.MigrateShared(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout, slog.LevelInfo),
		pgLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Media storage
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		slog.Error("media storage init failed", "driver", cfg.MediaDriver, "error", err)
		os.Exit(1)
	}
	slog.Info("media storage ready", "driver", store.Driver())

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.MaxUploadBytes()) + 1024*1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.Metrics())

	routes.Setup(app, cfg, database.DB, routes.NewHandlers(cfg, database.DB, store, database.Ping))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
