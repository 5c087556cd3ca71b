package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/producelens/internal/domain"
	"github.com/timmy/producelens/internal/storage"
)

const (
	testLabels    = `["Apple", "Banana", "Carrot"]`
	testNutrition = "Item,Calories,Vitamin C (mg),Notes\n" +
		"APPLE,52,4.6,crisp\n" +
		"Carrot,41,,\n"
	testGuideList = `[
  {"name": "apple", "health_benefits": ["Heart health"], "glycemic_index": 36, "origin": "Central Asia", "season": ["Autumn"]},
  {"name": "Banana", "best_for": ["Energy"], "glycemic_index": "Medium (51)"}
]`
)

func writeFixtures(t *testing.T, labels, nutrition, guide string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "labels.json"), []byte(labels), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nutrition.csv"), []byte(nutrition), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.json"), []byte(guide), 0o644))
	return dir
}

func loadFixtures(t *testing.T, labels, nutrition, guide string) (*Store, error) {
	t.Helper()
	dir := writeFixtures(t, labels, nutrition, guide)
	return Load(context.Background(), Sources{
		Storage:      storage.NewLocalStorage(dir),
		LabelsKey:    "labels.json",
		NutritionKey: "nutrition.csv",
		HealthKey:    "guide.json",
	})
}

func TestLoad(t *testing.T) {
	store, err := loadFixtures(t, testLabels, testNutrition, testGuideList)
	require.NoError(t, err)

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, []string{"Apple", "Banana", "Carrot"}, store.Labels())

	st := store.Stats()
	assert.Equal(t, 2, st.NutritionItems)
	assert.Equal(t, 2, st.HealthGuides)
	assert.Equal(t, 2, st.LabelsNutrition)
	assert.Equal(t, 2, st.LabelsHealth)
}

func TestResolveLabel(t *testing.T) {
	store, err := loadFixtures(t, testLabels, testNutrition, testGuideList)
	require.NoError(t, err)

	for i, want := range []string{"Apple", "Banana", "Carrot"} {
		got, err := store.ResolveLabel(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, idx := range []int{-1, 3, 100} {
		_, err := store.ResolveLabel(idx)
		assert.True(t, errors.Is(err, domain.ErrLabelOutOfRange), "index %d", idx)
	}
}

func TestLookupNutritionCaseInsensitive(t *testing.T) {
	store, err := loadFixtures(t, testLabels, testNutrition, testGuideList)
	require.NoError(t, err)

	lower := store.LookupNutrition("apple")
	upper := store.LookupNutrition("Apple")
	shout := store.LookupNutrition("APPLE")
	assert.Equal(t, lower, upper)
	assert.Equal(t, lower, shout)
	require.False(t, lower.IsEmpty())

	item, _ := lower.Get("Item")
	assert.Equal(t, "apple", item)
	cal, _ := lower.Get("Calories")
	assert.Equal(t, int64(52), cal)
	vc, _ := lower.Get("Vitamin C (mg)")
	assert.Equal(t, 4.6, vc)
	notes, _ := lower.Get("Notes")
	assert.Equal(t, "crisp", notes)

	carrot := store.LookupNutrition("carrot")
	vc, ok := carrot.Get("Vitamin C (mg)")
	assert.True(t, ok)
	assert.Nil(t, vc)
}

func TestLookupMissIsEmpty(t *testing.T) {
	store, err := loadFixtures(t, testLabels, testNutrition, testGuideList)
	require.NoError(t, err)

	banana := store.LookupNutrition("banana")
	assert.True(t, banana.IsEmpty())
	data, err := banana.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	assert.True(t, store.LookupHealth("carrot").IsEmpty())
	assert.True(t, store.LookupHealth("durian").IsEmpty())
}

func TestLookupHealth(t *testing.T) {
	store, err := loadFixtures(t, testLabels, testNutrition, testGuideList)
	require.NoError(t, err)

	apple := store.LookupHealth("APPLE")
	assert.Equal(t, []string{"Heart health"}, apple.HealthBenefits)
	assert.True(t, apple.GlycemicIndex.IsNumber())
	assert.Equal(t, "36", apple.GlycemicIndex.String())
	assert.Nil(t, apple.AvoidIf)

	banana := store.LookupHealth("banana")
	assert.Equal(t, "Medium (51)", banana.GlycemicIndex.String())
	assert.False(t, banana.GlycemicIndex.IsNumber())
}

func TestHealthGuideSingleObject(t *testing.T) {
	guide := `{"name": "Carrot", "prep_tip": "Roast whole", "season": ["Winter"]}`
	store, err := loadFixtures(t, testLabels, testNutrition, guide)
	require.NoError(t, err)

	carrot := store.LookupHealth("carrot")
	assert.Equal(t, "Roast whole", carrot.PrepTip)
	assert.True(t, store.LookupHealth("apple").IsEmpty())
}

func TestHealthGuideLastDuplicateWins(t *testing.T) {
	guide := `[{"name": "apple", "origin": "first"}, {"name": "Apple", "origin": "second"}]`
	records, err := ParseHealthGuide([]byte(guide))
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "second", records["apple"].Origin)
}

func TestLoadFailures(t *testing.T) {
	testCases := []struct {
		name      string
		labels    string
		nutrition string
		guide     string
	}{
		{"labels not json", `apple,banana`, testNutrition, testGuideList},
		{"labels empty", `[]`, testNutrition, testGuideList},
		{"nutrition without item column", testLabels, "Name,Calories\napple,52\n", testGuideList},
		{"nutrition empty", testLabels, "", testGuideList},
		{"nutrition duplicate item", testLabels, "Item,Calories\napple,52\nApple,53\n", testGuideList},
		{"nutrition ragged row", testLabels, "Item,Calories\napple,52,extra\n", testGuideList},
		{"guide not json", testLabels, testNutrition, `name: apple`},
		{"guide record without name", testLabels, testNutrition, `[{"origin": "x"}]`},
		{"guide list field wrong type", testLabels, testNutrition, `[{"name": "apple", "season": "Autumn"}]`},
		{"guide glycemic index bool", testLabels, testNutrition, `[{"name": "apple", "glycemic_index": true}]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadFixtures(t, tc.labels, tc.nutrition, tc.guide)
			require.Error(t, err)
			var initErr *domain.InitializationError
			assert.True(t, errors.As(err, &initErr), "got %T: %v", err, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := writeFixtures(t, testLabels, testNutrition, testGuideList)
	_, err := Load(context.Background(), Sources{
		Storage:      storage.NewLocalStorage(dir),
		LabelsKey:    "labels.json",
		NutritionKey: "nutrition.csv",
		HealthKey:    "missing.json",
	})
	var initErr *domain.InitializationError
	require.True(t, errors.As(err, &initErr))
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.True(t, strings.Contains(initErr.Source, "health guide"))
}

func TestParseNutritionBOM(t *testing.T) {
	records, err := ParseNutrition(strings.NewReader("\ufeffItem,Calories\nKiwi,61\n"))
	require.NoError(t, err)
	assert.Contains(t, records, "kiwi")
}

func TestParseCell(t *testing.T) {
	assert.Nil(t, parseCell(""))
	assert.Nil(t, parseCell("NaN"))
	assert.Equal(t, int64(7), parseCell("7"))
	assert.Equal(t, 0.5, parseCell(" 0.5 "))
	assert.Equal(t, "12 g", parseCell("12 g"))
}

type fakeReader struct {
	labels    []domain.ClassLabelEntry
	nutrition []domain.NutritionEntry
	guides    []domain.HealthGuideEntry
	err       error
}

func (f *fakeReader) ListLabels(context.Context) ([]domain.ClassLabelEntry, error) {
	return f.labels, f.err
}

func (f *fakeReader) ListNutrition(context.Context) ([]domain.NutritionEntry, error) {
	return f.nutrition, nil
}

func (f *fakeReader) ListHealthGuides(context.Context) ([]domain.HealthGuideEntry, error) {
	return f.guides, nil
}

func TestLoadFromRepository(t *testing.T) {
	repo := &fakeReader{
		labels: []domain.ClassLabelEntry{{Position: 0, Name: "Apple"}, {Position: 1, Name: "Banana"}},
		nutrition: []domain.NutritionEntry{{
			Item:      "apple",
			Nutrients: domain.NutrientList{{Name: "Item", Value: "apple"}, {Name: "Calories", Value: int64(52)}},
		}},
		guides: []domain.HealthGuideEntry{{Name: "banana", DisplayName: "Banana", Season: domain.StringArray{"All year"}}},
	}

	store, err := LoadFromRepository(context.Background(), repo)
	require.NoError(t, err)

	label, err := store.ResolveLabel(1)
	require.NoError(t, err)
	assert.Equal(t, "Banana", label)
	assert.False(t, store.LookupNutrition("APPLE").IsEmpty())
	assert.Equal(t, []string{"All year"}, store.LookupHealth("Banana").Season)
}

func TestLoadFromRepositoryGap(t *testing.T) {
	repo := &fakeReader{labels: []domain.ClassLabelEntry{{Position: 0, Name: "a"}, {Position: 2, Name: "c"}}}
	_, err := LoadFromRepository(context.Background(), repo)
	var initErr *domain.InitializationError
	assert.True(t, errors.As(err, &initErr))
}

func TestLoadFromRepositoryError(t *testing.T) {
	repo := &fakeReader{err: errors.New("connection refused")}
	_, err := LoadFromRepository(context.Background(), repo)
	var initErr *domain.InitializationError
	assert.True(t, errors.As(err, &initErr))
}
