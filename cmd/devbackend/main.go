package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/arturoeanton/soundgate/internal/adapter/store"
	"github.com/arturoeanton/soundgate/internal/handler"
	"github.com/arturoeanton/soundgate/internal/middleware"
	"github.com/arturoeanton/soundgate/internal/service"
	"github.com/arturoeanton/soundgate/pkg/config"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("starting soundgate devbackend",
		"port", cfg.Port,
		"public_url", cfg.PublicURL,
		"database", cfg.DSN(),
		"redis", cfg.RedisAddr,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL, cfg.PublicURL, cfg.ProjectID)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if err := pgStore.Migrate(context.Background()); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// ── Sessions ─────────────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// ── Services ─────────────────────────────────────────────────────────
	identity := service.NewIdentityService(pgStore, store.NewRedisSessionStore(rdb), cfg.SessionTTL)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    50 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderProject, middleware.HeaderSession},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))
	app.Use(middleware.SessionMiddleware(identity))
	app.Use(middleware.AuditMiddleware(pgStore))

	// ── Routes ───────────────────────────────────────────────────────────
	v1 := app.Group("/v1")
	handler.RegisterHealth(v1, cfg.AppName)
	handler.NewAccountHandler(identity, pgStore).Register(v1)
	handler.NewDatabasesHandler(pgStore, pgStore).Register(v1)
	handler.NewStorageHandler(pgStore, pgStore).Register(v1)
	handler.NewAuditHandler(pgStore).Register(v1)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
