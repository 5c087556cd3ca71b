package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  mode: release\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.EqualValues(t, 10, cfg.Server.MaxUploadMB)
	assert.True(t, cfg.Server.CORS.AllowAllOrigins)
	assert.Equal(t, CatalogSourceFiles, cfg.Catalog.Source)
	assert.Equal(t, "class_names.json", cfg.Catalog.LabelsPath)
	assert.Equal(t, "onnx", cfg.Classifier.Engine)
	assert.Equal(t, 224, cfg.Classifier.ImageSize)
	assert.EqualValues(t, 178956970, cfg.Classifier.MaxImagePixels)
	assert.Zero(t, cfg.Classifier.Remote.Timeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "./data/catalog.db", cfg.Database.DSN())
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
catalog:
  source: database
classifier:
  engine: remote
  image_size: 128
  remote:
    base_url: http://models:8501
    model_name: veg
    timeout: 5s
database:
  driver: postgres
  host: db
  user: lens
  password: secret
  dbname: catalog
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, CatalogSourceDatabase, cfg.Catalog.Source)
	assert.Equal(t, "remote", cfg.Classifier.Engine)
	assert.Equal(t, 128, cfg.Classifier.ImageSize)
	assert.Equal(t, "http://models:8501", cfg.Classifier.Remote.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Classifier.Remote.Timeout)
	assert.Equal(t, "host=db port=5432 user=lens password=secret dbname=catalog sslmode=disable", cfg.Database.DSN())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("MODEL_SERVER_API_KEY", "token-1")

	cfg, err := Load(writeConfig(t, "classifier:\n  engine: remote\n"))
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "token-1", cfg.Classifier.Remote.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown engine", "classifier:\n  engine: tflite\n", `unknown engine "tflite"`},
		{"unknown source", "catalog:\n  source: redis\n", `unknown source "redis"`},
		{"unknown driver", "database:\n  driver: mysql\n", `unknown driver "mysql"`},
		{"bad image size", "classifier:\n  image_size: 0\n", "image_size must be positive"},
		{"bad pixel ceiling", "classifier:\n  max_image_pixels: 0\n", "max_image_pixels must be positive"},
		{"missing model", "classifier:\n  onnx:\n    model_path: \"\"\n", "model_path is required"},
		{"negative timeout", "classifier:\n  engine: remote\n  remote:\n    timeout: -1s\n", "timeout must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
