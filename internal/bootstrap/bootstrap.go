// Package bootstrap builds the long-lived dependencies shared by the binaries:
// reference catalog, classifier and analyzer service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/timmy/producelens/internal/catalog"
	"github.com/timmy/producelens/internal/classifier"
	"github.com/timmy/producelens/internal/config"
	"github.com/timmy/producelens/internal/logger"
	"github.com/timmy/producelens/internal/preprocess"
	"github.com/timmy/producelens/internal/repository"
	"github.com/timmy/producelens/internal/service"
	"github.com/timmy/producelens/internal/storage"
)

// NewStorage creates the object storage the reference artifacts are read from.
func NewStorage(cfg *config.StorageConfig) (storage.ObjectStorage, error) {
	return storage.NewStorage(&storage.Config{
		Type:      storage.StorageType(cfg.Type),
		Root:      cfg.Root,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
	})
}

// FileSources returns the catalog artifact locations for the configured storage.
func FileSources(cfg *config.Config) (catalog.Sources, error) {
	objectStorage, err := NewStorage(&cfg.Storage)
	if err != nil {
		return catalog.Sources{}, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return catalog.Sources{
		Storage:      objectStorage,
		LabelsKey:    cfg.Catalog.LabelsPath,
		NutritionKey: cfg.Catalog.NutritionPath,
		HealthKey:    cfg.Catalog.HealthGuidePath,
	}, nil
}

// LoadCatalog loads the reference catalog from files or from the database,
// depending on catalog.source.
func LoadCatalog(ctx context.Context, cfg *config.Config, log *logger.Logger) (*catalog.Store, error) {
	var (
		store *catalog.Store
		err   error
	)

	switch cfg.Catalog.Source {
	case config.CatalogSourceDatabase:
		db, dbErr := repository.InitDB(&cfg.Database, log)
		if dbErr != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", dbErr)
		}
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			defer sqlDB.Close()
		}
		store, err = catalog.LoadFromRepository(ctx, repository.NewCatalogRepository(db))
	default:
		src, srcErr := FileSources(cfg)
		if srcErr != nil {
			return nil, srcErr
		}
		store, err = catalog.Load(ctx, src)
	}
	if err != nil {
		return nil, err
	}

	stats := store.Stats()
	log.WithFields(logger.Fields{
		"source":                cfg.Catalog.Source,
		"labels":                stats.Labels,
		"nutrition_items":       stats.NutritionItems,
		"health_guides":         stats.HealthGuides,
		"labels_with_nutrition": stats.LabelsNutrition,
		"labels_with_health":    stats.LabelsHealth,
	}).Info("Reference catalog loaded")
	if stats.LabelsNutrition < stats.Labels || stats.LabelsHealth < stats.Labels {
		log.Warn("Some labels have no reference data; their results will have empty sections")
	}
	return store, nil
}

// ClassifierConfig converts the configuration section to engine settings.
func ClassifierConfig(cfg *config.ClassifierConfig) classifier.Config {
	return classifier.Config{
		Engine: classifier.Engine(cfg.Engine),
		ONNX: classifier.ONNXConfig{
			ModelPath:      cfg.ONNX.ModelPath,
			LibraryPath:    cfg.ONNX.LibraryPath,
			InputName:      cfg.ONNX.InputName,
			OutputName:     cfg.ONNX.OutputName,
			IntraOpThreads: cfg.ONNX.IntraOpThreads,
		},
		Remote: classifier.RemoteConfig{
			BaseURL:   cfg.Remote.BaseURL,
			ModelName: cfg.Remote.ModelName,
			APIKey:    cfg.Remote.APIKey,
			Timeout:   cfg.Remote.Timeout,
		},
	}
}

// Pipeline is the assembled analyzer with the resources it owns.
type Pipeline struct {
	Store      *catalog.Store
	Classifier classifier.Classifier
	Analyzer   *service.AnalyzerService
}

// Close releases the classifier.
func (p *Pipeline) Close() error {
	return p.Classifier.Close()
}

// NewPipeline loads the catalog, creates the classifier and wires the analyzer.
// Parameters:
//   - ctx: context for catalog loading.
//   - cfg: full application configuration.
//   - log: base logger.
// Returns:
//   - *Pipeline: ready-to-serve analyzer; call Close on exit.
//   - error: an *domain.InitializationError or classifier setup failure.
func NewPipeline(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Pipeline, error) {
	store, err := LoadCatalog(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	clf, err := classifier.New(ClassifierConfig(&cfg.Classifier), store.Len())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}
	if n := clf.OutputSize(); n > 0 && n != store.Len() {
		log.WithFields(logger.Fields{
			"model_outputs": n,
			"labels":        store.Len(),
		}).Warn("Classifier output size does not match the label list")
	}
	log.WithField(logger.FieldEngine, cfg.Classifier.Engine).Info("Classifier ready")

	pre := preprocess.New(cfg.Classifier.ImageSize, preprocess.WithMaxPixels(cfg.Classifier.MaxImagePixels))
	return &Pipeline{
		Store:      store,
		Classifier: clf,
		Analyzer:   service.NewAnalyzerService(store, pre, clf, log),
	}, nil
}
