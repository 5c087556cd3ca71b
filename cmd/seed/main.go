package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/timmy/producelens/internal/bootstrap"
	"github.com/timmy/producelens/internal/catalog"
	"github.com/timmy/producelens/internal/config"
	"github.com/timmy/producelens/internal/logger"
	"github.com/timmy/producelens/internal/repository"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "producelens-seed",
	})
	logger.SetDefaultLogger(appLogger)

	configPath := flag.String("config", "", "Path to config file")
	dryRun := flag.Bool("dry-run", false, "Parse and validate the artifacts without writing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := bootstrap.FileSources(cfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	labels, nutrition, health, err := catalog.LoadFiles(ctx, src)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load reference artifacts")
	}
	// Same validation the server applies at startup
	if _, err := catalog.NewStore(labels, nutrition, health); err != nil {
		appLogger.WithError(err).Fatal("Reference artifacts are invalid")
	}

	fields := logger.Fields{
		"labels":          len(labels),
		"nutrition_items": len(nutrition),
		"health_guides":   len(health),
		"labels_source":   src.Storage.Location(src.LabelsKey),
	}
	if *dryRun {
		appLogger.WithFields(fields).Info("Dry run: artifacts are valid")
		return
	}

	cfg.Database.AutoMigrate = true
	db, err := repository.InitDB(&cfg.Database, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	repo := repository.NewCatalogRepository(db)
	if err := repo.ReplaceAll(ctx, labels, nutrition, health); err != nil {
		appLogger.WithError(err).Fatal("Failed to write catalog")
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to count catalog rows")
	}
	appLogger.WithFields(fields).WithFields(logger.Fields{
		"rows_labels":    counts.Labels,
		"rows_nutrition": counts.Nutrition,
		"rows_health":    counts.HealthGuides,
	}).Info("Catalog seeded")

	if cfg.Catalog.Source != config.CatalogSourceDatabase {
		appLogger.Info("Set catalog.source=database to serve from the seeded catalog")
	}
}
