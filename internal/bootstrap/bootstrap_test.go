package bootstrap

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/producelens/internal/config"
	"github.com/timmy/producelens/internal/domain"
	"github.com/timmy/producelens/internal/logger"
)

func writeArtifacts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"labels.json":   `["Apple", "Banana"]`,
		"nutrition.csv": "Item,Calories\nApple,52\n",
		"guide.json":    `[{"name": "Apple", "season": ["Autumn"]}]`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{
			Source:          config.CatalogSourceFiles,
			LabelsPath:      "labels.json",
			NutritionPath:   "nutrition.csv",
			HealthGuidePath: "guide.json",
		},
		Storage: config.StorageConfig{Type: "local", Root: dir},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			Path:        filepath.Join(dir, "catalog.db"),
			AutoMigrate: true,
		},
		Classifier: config.ClassifierConfig{Engine: "remote", ImageSize: 8},
	}
}

func quietLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Output: &bytes.Buffer{}})
}

func TestLoadCatalogFromFiles(t *testing.T) {
	cfg := testConfig(writeArtifacts(t))

	store, err := LoadCatalog(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Banana"}, store.Labels())
	assert.False(t, store.LookupNutrition("apple").IsEmpty())
}

func TestLoadCatalogMissingArtifact(t *testing.T) {
	cfg := testConfig(t.TempDir())

	_, err := LoadCatalog(context.Background(), cfg, quietLogger())
	var initErr *domain.InitializationError
	assert.ErrorAs(t, err, &initErr)
}

func TestLoadCatalogFromEmptyDatabase(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Catalog.Source = config.CatalogSourceDatabase

	_, err := LoadCatalog(context.Background(), cfg, quietLogger())
	var initErr *domain.InitializationError
	assert.ErrorAs(t, err, &initErr)
}

func TestNewPipelineRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"predictions": [[0.25, 0.75]]}`))
	}))
	defer srv.Close()

	cfg := testConfig(writeArtifacts(t))
	cfg.Classifier.Remote.BaseURL = srv.URL
	cfg.Classifier.Remote.ModelName = "produce"

	p, err := NewPipeline(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 2, p.Store.Len())
	assert.NotNil(t, p.Analyzer)
}

func TestClassifierConfig(t *testing.T) {
	got := ClassifierConfig(&config.ClassifierConfig{
		Engine: "onnx",
		ONNX:   config.ONNXConfig{ModelPath: "m.onnx", InputName: "input", IntraOpThreads: 2},
	})
	assert.EqualValues(t, "onnx", got.Engine)
	assert.Equal(t, "m.onnx", got.ONNX.ModelPath)
	assert.Equal(t, "input", got.ONNX.InputName)
	assert.Equal(t, 2, got.ONNX.IntraOpThreads)
}
