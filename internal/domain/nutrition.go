package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// NutritionItemColumn is the required match-key column of the nutrition table.
const NutritionItemColumn = "Item"

// Nutrient is a single column of a nutrition table row.
// Value is nil, int64, float64 or string.
type Nutrient struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// NutritionRecord is one nutrition table row, kept in column order.
// The zero value is the empty record returned on a lookup miss.
type NutritionRecord struct {
	Nutrients NutrientList
}

// IsEmpty reports whether the record holds no nutrients.
func (r NutritionRecord) IsEmpty() bool {
	return len(r.Nutrients) == 0
}

// Get returns the value of the named column.
func (r NutritionRecord) Get(name string) (interface{}, bool) {
	for _, n := range r.Nutrients {
		if n.Name == name {
			return n.Value, true
		}
	}
	return nil, false
}

// Facts returns the nutrients without the Item key column, for display.
func (r NutritionRecord) Facts() []Nutrient {
	out := make([]Nutrient, 0, len(r.Nutrients))
	for _, n := range r.Nutrients {
		if n.Name == NutritionItemColumn {
			continue
		}
		out = append(out, n)
	}
	return out
}

// MarshalJSON encodes the record as a JSON object, preserving column order.
func (r NutritionRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range r.Nutrients {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(n.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NutrientList stores an ordered nutrient row as a JSON column.
type NutrientList []Nutrient

// Value implements the driver.Valuer interface for database serialization.
func (l NutrientList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (l *NutrientList) Scan(value interface{}) error {
	if value == nil {
		*l = NutrientList{}
		return nil
	}
	raw, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan NutrientList")
		}
		raw = []byte(str)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []Nutrient
	if err := dec.Decode(&items); err != nil {
		return err
	}
	for i := range items {
		if num, ok := items[i].Value.(json.Number); ok {
			if v, err := num.Int64(); err == nil {
				items[i].Value = v
			} else if f, err := num.Float64(); err == nil {
				items[i].Value = f
			}
		}
	}
	*l = items
	return nil
}
