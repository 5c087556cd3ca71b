package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/timmy/producelens/internal/domain"
	"gorm.io/gorm"
)

const batchSize = 100

// CatalogRepository stores the reference catalog: class labels, nutrition rows
// and health guides.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new CatalogRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CatalogRepository: repository instance bound to db.
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListLabels returns every class label ordered by position.
func (r *CatalogRepository) ListLabels(ctx context.Context) ([]domain.ClassLabelEntry, error) {
	var labels []domain.ClassLabelEntry
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

// ListNutrition returns every nutrition row in table order.
func (r *CatalogRepository) ListNutrition(ctx context.Context) ([]domain.NutritionEntry, error) {
	var rows []domain.NutritionEntry
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListHealthGuides returns every health guide ordered by name.
func (r *CatalogRepository) ListHealthGuides(ctx context.Context) ([]domain.HealthGuideEntry, error) {
	var guides []domain.HealthGuideEntry
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&guides).Error; err != nil {
		return nil, err
	}
	return guides, nil
}

// CatalogCounts is the number of rows per catalog table.
type CatalogCounts struct {
	Labels       int64
	Nutrition    int64
	HealthGuides int64
}

// Counts returns the row count of each catalog table.
func (r *CatalogRepository) Counts(ctx context.Context) (CatalogCounts, error) {
	var c CatalogCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.ClassLabelEntry{}).Count(&c.Labels).Error; err != nil {
		return c, err
	}
	if err := db.Model(&domain.NutritionEntry{}).Count(&c.Nutrition).Error; err != nil {
		return c, err
	}
	if err := db.Model(&domain.HealthGuideEntry{}).Count(&c.HealthGuides).Error; err != nil {
		return c, err
	}
	return c, nil
}

// ReplaceAll swaps the whole catalog for the given data in one transaction.
// Map keys must be normalized with domain.NormalizeKey; nutrition rows are
// stored in key order.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - labels: class labels in classifier output order.
//   - nutrition: nutrition records keyed by item.
//   - health: health records keyed by name.
// Returns:
//   - error: non-nil if any statement fails; the catalog is then unchanged.
func (r *CatalogRepository) ReplaceAll(
	ctx context.Context,
	labels []string,
	nutrition map[string]domain.NutritionRecord,
	health map[string]domain.HealthRecord,
) error {
	labelRows := make([]domain.ClassLabelEntry, len(labels))
	for i, name := range labels {
		labelRows[i] = domain.ClassLabelEntry{Position: i, Name: name}
	}

	nutritionRows := make([]domain.NutritionEntry, 0, len(nutrition))
	for i, item := range sortedKeys(nutrition) {
		nutritionRows = append(nutritionRows, domain.NutritionEntry{
			Item:      item,
			Position:  i,
			Nutrients: nutrition[item].Nutrients,
		})
	}

	guideRows := make([]domain.HealthGuideEntry, 0, len(health))
	for _, name := range sortedKeys(health) {
		guideRows = append(guideRows, *domain.NewHealthGuideEntry(name, health[name]))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&domain.ClassLabelEntry{},
			&domain.NutritionEntry{},
			&domain.HealthGuideEntry{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear catalog: %w", err)
			}
		}

		if len(labelRows) > 0 {
			if err := tx.CreateInBatches(labelRows, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert labels: %w", err)
			}
		}
		if len(nutritionRows) > 0 {
			if err := tx.CreateInBatches(nutritionRows, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert nutrition rows: %w", err)
			}
		}
		if len(guideRows) > 0 {
			if err := tx.CreateInBatches(guideRows, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert health guides: %w", err)
			}
		}
		return nil
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
