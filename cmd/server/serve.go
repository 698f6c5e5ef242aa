package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"library_catalog/internal/catalog"
	"library_catalog/internal/config"
	"library_catalog/internal/handler"
	"library_catalog/internal/middleware"
	"library_catalog/internal/repository"
	"library_catalog/internal/service"
	"library_catalog/internal/storage"
	"library_catalog/internal/utils"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.With("env", cfg.AppEnv)

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
		})
		if err != nil {
			logger.Warn("sentry init failed, error reporting disabled", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// --- Database ---
	dbPool, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	// --- Blob store ---
	blobs, err := storage.NewLocalStore(cfg.UploadsDir, cfg.PublicBaseURL)
	if err != nil {
		return err
	}
	logger.Info("uploads will be stored", "dir", blobs.Root())

	// --- Repositories ---
	adminRepo := repository.NewAdminRepository(dbPool)
	userRepo := repository.NewUserRepository(dbPool)
	bookRepo := repository.NewBookRepository(dbPool)

	// --- Catalog mirror ---
	mirror := catalog.NewMirror()
	hub := catalog.NewHub()
	watcher := catalog.NewWatcher(bookRepo, userRepo, mirror, hub,
		catalog.PgConnector(dbPool, config.NotifyChannel), cfg.WatchRetry)
	if err := watcher.Refresh(ctx); err != nil {
		logger.Warn("initial catalog load failed, waiting for the watcher", "error", err)
	}
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		if err := watcher.Run(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("catalog watcher stopped", "error", err)
		}
	}()

	// --- Services ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours)
	authService := service.NewAuthService(adminRepo, jwtUtil)
	userService := service.NewUserService(userRepo)
	bookService := service.NewBookService(bookRepo, blobs, cfg.MaxActiveBooks)
	catalogService := service.NewCatalogService(mirror, hub, cfg.MaxActiveBooks)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	// --- Router ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Simple CORS middleware (allow all)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	jwtAuthMW := middleware.JWTAuthMiddleware(authService)
	adminRoleMW := middleware.AdminMiddleware()

	apiGroup := router.Group("/api/v1")
	handler.NewAuthHandler(authService).RegisterAuthRoutes(apiGroup, jwtAuthMW)
	handler.NewCatalogHandler(catalogService).RegisterCatalogRoutes(apiGroup)
	handler.NewBookHandler(bookService, catalogService).RegisterBookRoutes(apiGroup, jwtAuthMW, adminRoleMW)
	handler.NewUserHandler(userService, catalogService).RegisterUserRoutes(apiGroup, jwtAuthMW, adminRoleMW)

	router.Static("/media", blobs.Root())
	router.GET("/health", handler.Health(dbPool, catalogService))

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")
	stopWatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}
