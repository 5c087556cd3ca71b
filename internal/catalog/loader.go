package catalog

import (
	"bytes"
	"context"
	"fmt"

	"github.com/timmy/producelens/internal/domain"
	"github.com/timmy/producelens/internal/storage"
)

// Sources locates the three reference artifacts.
type Sources struct {
	Storage      storage.ObjectStorage
	LabelsKey    string
	NutritionKey string
	HealthKey    string
}

// Load reads and parses all reference artifacts. Any missing or malformed
// artifact yields a *domain.InitializationError; there is no partial success.
func Load(ctx context.Context, src Sources) (*Store, error) {
	labels, nutrition, health, err := LoadFiles(ctx, src)
	if err != nil {
		return nil, err
	}
	return NewStore(labels, nutrition, health)
}

// LoadFiles reads and parses the artifacts without building a Store.
func LoadFiles(ctx context.Context, src Sources) ([]string, map[string]domain.NutritionRecord, map[string]domain.HealthRecord, error) {
	if src.Storage == nil {
		src.Storage = storage.NewLocalStorage("")
	}

	raw, err := read(ctx, src.Storage, "label list", src.LabelsKey)
	if err != nil {
		return nil, nil, nil, err
	}
	labels, err := ParseLabels(raw)
	if err != nil {
		return nil, nil, nil, initErr(src.Storage, "label list", src.LabelsKey, err)
	}

	raw, err = read(ctx, src.Storage, "nutrition table", src.NutritionKey)
	if err != nil {
		return nil, nil, nil, err
	}
	nutrition, err := ParseNutrition(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, nil, initErr(src.Storage, "nutrition table", src.NutritionKey, err)
	}

	raw, err = read(ctx, src.Storage, "health guide", src.HealthKey)
	if err != nil {
		return nil, nil, nil, err
	}
	health, err := ParseHealthGuide(raw)
	if err != nil {
		return nil, nil, nil, initErr(src.Storage, "health guide", src.HealthKey, err)
	}

	return labels, nutrition, health, nil
}

func read(ctx context.Context, s storage.ObjectStorage, what, key string) ([]byte, error) {
	if key == "" {
		return nil, &domain.InitializationError{Source: what, Err: fmt.Errorf("no path configured")}
	}
	data, err := storage.ReadAll(ctx, s, key)
	if err != nil {
		return nil, initErr(s, what, key, err)
	}
	return data, nil
}

func initErr(s storage.ObjectStorage, what, key string, err error) error {
	return &domain.InitializationError{
		Source: fmt.Sprintf("%s %s", what, s.Location(key)),
		Err:    err,
	}
}
