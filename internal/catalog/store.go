// Package catalog holds the read-only reference data joined with every prediction:
// the classifier's label list, the nutrition table and the health guide.
package catalog

import (
	"fmt"

	"github.com/timmy/producelens/internal/domain"
)

// Store is the loaded reference data. It is built once at startup and never
// mutated afterwards, so it is safe for concurrent use. Records returned by the
// lookups share memory with the store and must be treated as read-only.
type Store struct {
	labels    []string
	nutrition map[string]domain.NutritionRecord
	health    map[string]domain.HealthRecord
}

// NewStore builds a Store from already-parsed data. Map keys must be normalized
// with domain.NormalizeKey.
func NewStore(labels []string, nutrition map[string]domain.NutritionRecord, health map[string]domain.HealthRecord) (*Store, error) {
	if len(labels) == 0 {
		return nil, &domain.InitializationError{Source: "label list", Err: fmt.Errorf("no class labels")}
	}
	if nutrition == nil {
		nutrition = map[string]domain.NutritionRecord{}
	}
	if health == nil {
		health = map[string]domain.HealthRecord{}
	}
	return &Store{
		labels:    append([]string(nil), labels...),
		nutrition: nutrition,
		health:    health,
	}, nil
}

// ResolveLabel returns the class label at index.
func (s *Store) ResolveLabel(index int) (string, error) {
	if index < 0 || index >= len(s.labels) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", domain.ErrLabelOutOfRange, index, len(s.labels))
	}
	return s.labels[index], nil
}

// LookupNutrition returns the nutrition record for name, or an empty record.
func (s *Store) LookupNutrition(name string) domain.NutritionRecord {
	return s.nutrition[domain.NormalizeKey(name)]
}

// LookupHealth returns the health record for name, or an empty record.
func (s *Store) LookupHealth(name string) domain.HealthRecord {
	return s.health[domain.NormalizeKey(name)]
}

// Len returns the number of class labels.
func (s *Store) Len() int {
	return len(s.labels)
}

// Labels returns a copy of the label list.
func (s *Store) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Stats summarizes the loaded data for startup logs.
type Stats struct {
	Labels          int `json:"labels"`
	NutritionItems  int `json:"nutrition_items"`
	HealthGuides    int `json:"health_guides"`
	LabelsNutrition int `json:"labels_with_nutrition"`
	LabelsHealth    int `json:"labels_with_health"`
}

// Stats counts records and label coverage.
func (s *Store) Stats() Stats {
	st := Stats{
		Labels:         len(s.labels),
		NutritionItems: len(s.nutrition),
		HealthGuides:   len(s.health),
	}
	for _, l := range s.labels {
		key := domain.NormalizeKey(l)
		if _, ok := s.nutrition[key]; ok {
			st.LabelsNutrition++
		}
		if _, ok := s.health[key]; ok {
			st.LabelsHealth++
		}
	}
	return st
}
