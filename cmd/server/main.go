package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"formsmith-backend/internal/auth"
	"formsmith-backend/internal/builder"
	"formsmith-backend/internal/config"
	"formsmith-backend/internal/engine"
	"formsmith-backend/internal/instrument"
	"formsmith-backend/internal/metadata"
	"formsmith-backend/internal/notify"
	"formsmith-backend/internal/storage"
	"formsmith-backend/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, db: %s:%d/%s)", cfg.Server.Port, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	// 2. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Bootstrap system tables
	if err := db.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap system tables: %v", err)
	}
	log.Println("System tables ready")

	// 4. Create registry and load form documents
	reg := metadata.NewRegistry()
	if err := metadata.LoadAll(ctx, db.Pool, reg); err != nil {
		log.Printf("WARN: Failed to load forms: %v", err)
	}
	log.Printf("Loaded %d forms", len(reg.AllForms()))

	// 5. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// 6. Instrumentation (span recorder propagated through request context)
	var recorder *instrument.Recorder
	if cfg.Instrumentation.Enabled {
		recorder = instrument.NewRecorder(cfg.Instrumentation.BufferSize)
		app.Use(instrument.Middleware(recorder))
	}

	// 7. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 8. Auth middleware for protected routes
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	authMW := auth.AuthMiddleware(tokens)
	adminMW := auth.RequireAdmin()

	// 9. Auth routes (login/refresh public, register admin-only)
	authHandler := auth.NewAuthHandler(db, tokens)
	auth.RegisterAuthRoutes(app, authHandler, authMW, adminMW)

	// 10. Builder routes (auth + admin required)
	builderHandler := builder.NewHandler(db, reg)
	builder.RegisterBuilderRoutes(app, builderHandler, authMW, adminMW)

	// 11. Form runtime routes (public: render, validate, visibility, submit)
	engineHandler := engine.NewHandler(db, reg, notify.NewWebhookNotifier())
	uploadHandler := engine.NewUploadHandler(storage.NewLocalStorage(cfg.Storage.LocalPath), cfg.Storage.MaxFileSize)
	engine.RegisterFormRoutes(app, engineHandler, uploadHandler)

	// 12. Span inspection (auth + admin required)
	if recorder != nil {
		instHandler := instrument.NewHandler(recorder)
		app.Get("/api/instrument/spans", authMW, adminMW, instHandler.List)
	}

	// 13. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *engine.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(engine.ErrorResponse{
		Error: &engine.AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
