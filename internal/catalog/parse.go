package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/timmy/producelens/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseLabels decodes a JSON array of class labels.
func ParseLabels(data []byte) ([]string, error) {
	var labels []string
	if err := json.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &labels); err != nil {
		return nil, fmt.Errorf("decode label list: %w", err)
	}
	if len(labels) == 0 {
		return nil, errors.New("label list is empty")
	}
	return labels, nil
}

// ParseNutrition reads a CSV nutrition table with a required Item column.
// Rows are keyed by the normalized item name; the Item cell itself is stored
// normalized. Duplicate items are rejected.
func ParseNutrition(r io.Reader) (map[string]domain.NutritionRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("nutrition table is empty")
		}
		return nil, fmt.Errorf("read nutrition header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}

	itemCol := findItemColumn(header)
	if itemCol < 0 {
		return nil, fmt.Errorf("nutrition table has no %q column", domain.NutritionItemColumn)
	}

	out := make(map[string]domain.NutritionRecord)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read nutrition row %d: %w", line, err)
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("nutrition row %d has %d fields, header has %d", line, len(row), len(header))
		}

		key := domain.NormalizeKey(row[itemCol])
		if strings.TrimSpace(key) == "" {
			continue
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("nutrition row %d: duplicate item %q", line, key)
		}

		nutrients := make(domain.NutrientList, 0, len(header))
		for i, col := range header {
			if i == itemCol {
				nutrients = append(nutrients, domain.Nutrient{Name: col, Value: key})
				continue
			}
			nutrients = append(nutrients, domain.Nutrient{Name: col, Value: parseCell(row[i])})
		}
		out[key] = domain.NutritionRecord{Nutrients: nutrients}
	}
	return out, nil
}

func findItemColumn(header []string) int {
	for i, col := range header {
		if col == domain.NutritionItemColumn {
			return i
		}
	}
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), domain.NutritionItemColumn) {
			return i
		}
	}
	return -1
}

// parseCell types a CSV cell: empty and NaN become nil, numbers become
// int64 or float64, everything else stays a string.
func parseCell(cell string) interface{} {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	}
	return cell
}

// guideShape is the top-level layout of a health guide document.
type guideShape int

const (
	guideSingle guideShape = iota
	guideList
)

func detectGuideShape(data []byte) (guideShape, error) {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")
	if len(trimmed) == 0 {
		return 0, errors.New("health guide is empty")
	}
	switch trimmed[0] {
	case '{':
		return guideSingle, nil
	case '[':
		return guideList, nil
	default:
		return 0, fmt.Errorf("health guide must be a JSON object or array, got %q", trimmed[0])
	}
}

// ParseHealthGuide decodes a health guide that is either a single record or a
// list of records. Every record needs a name; later duplicates replace earlier ones.
func ParseHealthGuide(data []byte) (map[string]domain.HealthRecord, error) {
	shape, err := detectGuideShape(data)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var records []domain.HealthRecord
	switch shape {
	case guideSingle:
		var rec domain.HealthRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode health guide: %w", err)
		}
		records = []domain.HealthRecord{rec}
	case guideList:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode health guide: %w", err)
		}
	}

	out := make(map[string]domain.HealthRecord, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			return nil, fmt.Errorf("health guide record %d has no name", i)
		}
		out[domain.NormalizeKey(rec.Name)] = rec
	}
	return out, nil
}
