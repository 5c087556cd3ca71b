package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/producelens/internal/api"
	"github.com/timmy/producelens/internal/bootstrap"
	"github.com/timmy/producelens/internal/config"
	"github.com/timmy/producelens/internal/logger"
	"github.com/timmy/producelens/internal/tracer"
)

func main() {
	// Initialize logger first (LOG_LEVEL, LOG_FORMAT, APP_ENV, LOG_FILE...)
	appLogger := logger.NewFromEnv(nil)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx := context.Background()

	shutdownTracer := tracer.InitTracer(ctx, cfg.Tracing, appLogger)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			appLogger.WithError(err).Warn("Failed to flush traces")
		}
	}()

	// Reference data and model are loaded once; a failure here means we never serve
	pipeline, err := bootstrap.NewPipeline(ctx, cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize analyzer")
	}
	defer pipeline.Close()

	router, err := api.SetupRouter(cfg, api.Dependencies{
		Store:    pipeline.Store,
		Analyzer: pipeline.Analyzer,
		Logger:   appLogger,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to set up router")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
