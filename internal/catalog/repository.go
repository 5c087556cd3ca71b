package catalog

import (
	"context"
	"fmt"

	"github.com/timmy/producelens/internal/domain"
)

// Reader is the read side of the catalog database.
type Reader interface {
	ListLabels(ctx context.Context) ([]domain.ClassLabelEntry, error)
	ListNutrition(ctx context.Context) ([]domain.NutritionEntry, error)
	ListHealthGuides(ctx context.Context) ([]domain.HealthGuideEntry, error)
}

// LoadFromRepository builds a Store from the catalog database.
// Labels must occupy positions 0..N-1 without gaps.
func LoadFromRepository(ctx context.Context, repo Reader) (*Store, error) {
	entries, err := repo.ListLabels(ctx)
	if err != nil {
		return nil, &domain.InitializationError{Source: "class_labels table", Err: err}
	}
	labels := make([]string, len(entries))
	for i, e := range entries {
		if e.Position != i {
			return nil, &domain.InitializationError{
				Source: "class_labels table",
				Err:    fmt.Errorf("expected position %d, found %d", i, e.Position),
			}
		}
		labels[i] = e.Name
	}

	rows, err := repo.ListNutrition(ctx)
	if err != nil {
		return nil, &domain.InitializationError{Source: "nutrition_entries table", Err: err}
	}
	nutrition := make(map[string]domain.NutritionRecord, len(rows))
	for i := range rows {
		nutrition[domain.NormalizeKey(rows[i].Item)] = rows[i].Record()
	}

	guides, err := repo.ListHealthGuides(ctx)
	if err != nil {
		return nil, &domain.InitializationError{Source: "health_guides table", Err: err}
	}
	health := make(map[string]domain.HealthRecord, len(guides))
	for i := range guides {
		health[domain.NormalizeKey(guides[i].Name)] = guides[i].Record()
	}

	return NewStore(labels, nutrition, health)
}
