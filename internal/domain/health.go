package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// HealthRecord is the health-guidance entry for one item.
// Every field is optional; the zero value is the empty record returned on a lookup miss.
type HealthRecord struct {
	Name           string   `json:"name"`
	HealthBenefits []string `json:"health_benefits"`
	KeyNutrients   []string `json:"key_nutrients"`
	GlycemicIndex  Scalar   `json:"glycemic_index"`
	Origin         string   `json:"origin"`
	FamousIn       []string `json:"famous_in"`
	PrepTip        string   `json:"prep_tip"`
	PairsWellWith  []string `json:"pairs_well_with"`
	BestFor        []string `json:"best_for"`
	AvoidIf        []string `json:"avoid_if"`
	Season         []string `json:"season"`
}

// IsEmpty reports whether the record is a lookup miss.
func (h HealthRecord) IsEmpty() bool {
	return h.Name == ""
}

// Scalar is a JSON value that may be written as a string or a number.
// It re-encodes in the form it was read.
type Scalar struct {
	text    string
	numeric bool
}

// StringScalar builds a Scalar holding text.
func StringScalar(s string) Scalar {
	return Scalar{text: s}
}

// NumberScalar builds a Scalar holding a JSON number literal.
func NumberScalar(n json.Number) Scalar {
	return Scalar{text: n.String(), numeric: true}
}

// String returns the textual form of the value.
func (s Scalar) String() string {
	return s.text
}

// IsNumber reports whether the value was written as a JSON number.
func (s Scalar) IsNumber() bool {
	return s.numeric
}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.numeric {
		return []byte(s.text), nil
	}
	return json.Marshal(s.text)
}

// UnmarshalJSON implements json.Unmarshaler. null decodes to the zero value.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = Scalar{}
		return nil
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = StringScalar(text)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = NumberScalar(num)
	return nil
}
