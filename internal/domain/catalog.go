package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// ClassLabelEntry is one position of the classifier's label list.
type ClassLabelEntry struct {
	Position  int       `gorm:"primaryKey;autoIncrement:false" json:"position"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ClassLabelEntry.
func (ClassLabelEntry) TableName() string {
	return "class_labels"
}

// NutritionEntry is one nutrition table row keyed by normalized item name.
type NutritionEntry struct {
	Item      string       `gorm:"type:text;primaryKey" json:"item"`
	Position  int          `gorm:"not null;default:0" json:"position"`
	Nutrients NutrientList `gorm:"type:text" json:"nutrients"`
	CreatedAt time.Time    `json:"created_at"`
}

// TableName returns the database table name for NutritionEntry.
func (NutritionEntry) TableName() string {
	return "nutrition_entries"
}

// Record converts the row to a NutritionRecord.
func (e *NutritionEntry) Record() NutritionRecord {
	return NutritionRecord{Nutrients: e.Nutrients}
}

// HealthGuideEntry is one health-guidance document keyed by normalized name.
type HealthGuideEntry struct {
	Name            string      `gorm:"type:text;primaryKey" json:"name"`
	DisplayName     string      `gorm:"type:text" json:"display_name"`
	HealthBenefits  StringArray `gorm:"type:text" json:"health_benefits"`
	KeyNutrients    StringArray `gorm:"type:text" json:"key_nutrients"`
	GlycemicIndex   string      `gorm:"type:text" json:"glycemic_index"`
	GlycemicNumeric bool        `gorm:"default:false" json:"glycemic_numeric"`
	Origin          string      `gorm:"type:text" json:"origin"`
	FamousIn        StringArray `gorm:"type:text" json:"famous_in"`
	PrepTip         string      `gorm:"type:text" json:"prep_tip"`
	PairsWellWith   StringArray `gorm:"type:text" json:"pairs_well_with"`
	BestFor         StringArray `gorm:"type:text" json:"best_for"`
	AvoidIf         StringArray `gorm:"type:text" json:"avoid_if"`
	Season          StringArray `gorm:"type:text" json:"season"`
	CreatedAt       time.Time   `json:"created_at"`
}

// TableName returns the database table name for HealthGuideEntry.
func (HealthGuideEntry) TableName() string {
	return "health_guides"
}

// NewHealthGuideEntry builds a row from a record under the given key.
func NewHealthGuideEntry(key string, h HealthRecord) *HealthGuideEntry {
	return &HealthGuideEntry{
		Name:            key,
		DisplayName:     h.Name,
		HealthBenefits:  h.HealthBenefits,
		KeyNutrients:    h.KeyNutrients,
		GlycemicIndex:   h.GlycemicIndex.String(),
		GlycemicNumeric: h.GlycemicIndex.IsNumber(),
		Origin:          h.Origin,
		FamousIn:        h.FamousIn,
		PrepTip:         h.PrepTip,
		PairsWellWith:   h.PairsWellWith,
		BestFor:         h.BestFor,
		AvoidIf:         h.AvoidIf,
		Season:          h.Season,
	}
}

// Record converts the row back to a HealthRecord.
func (e *HealthGuideEntry) Record() HealthRecord {
	gi := StringScalar(e.GlycemicIndex)
	if e.GlycemicNumeric {
		gi = NumberScalar(json.Number(e.GlycemicIndex))
	}
	name := e.DisplayName
	if name == "" {
		name = e.Name
	}
	return HealthRecord{
		Name:           name,
		HealthBenefits: e.HealthBenefits,
		KeyNutrients:   e.KeyNutrients,
		GlycemicIndex:  gi,
		Origin:         e.Origin,
		FamousIn:       e.FamousIn,
		PrepTip:        e.PrepTip,
		PairsWellWith:  e.PairsWellWith,
		BestFor:        e.BestFor,
		AvoidIf:        e.AvoidIf,
		Season:         e.Season,
	}
}
