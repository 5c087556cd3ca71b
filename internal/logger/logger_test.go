package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "json", Output: &buf, ServiceName: "test-svc"})

	log.WithField(FieldLabel, "apple").Info("predicted")
	line := decodeLine(t, &buf)

	assert.Equal(t, "predicted", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "test-svc", line["service"])
	assert.Equal(t, "apple", line[FieldLabel])
	assert.Contains(t, line, "timestamp")
	assert.Contains(t, line["file"], "logger_test.go:")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "warn", Output: &buf})
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(&Config{Level: "debug", Output: &buf, ServiceName: "ctx"})

	ctx := base.WithContext(context.Background())
	ctx = SetRequestID(ctx, "req-1")
	ctx = SetComponent(ctx, "api")

	assert.Equal(t, "req-1", GetRequestID(ctx))

	With(Fields{FieldStatus: 200}).WithDuration(15).Info(ctx, "Request completed: %s", "/predict")
	line := decodeLine(t, &buf)
	assert.Equal(t, "req-1", line[FieldRequestID])
	assert.Equal(t, "api", line[FieldComponent])
	assert.Equal(t, float64(200), line[FieldStatus])
	assert.Equal(t, float64(15), line[FieldDurationMs])
	assert.Equal(t, "Request completed: /predict", line["message"])
}

func TestCtxHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := New(&Config{Level: "info", Format: "json", Output: &buf})
	ctx := SetRequestID(base.WithContext(context.Background()), "req-9")

	CtxWarn(ctx, "Dashboard analyze failed: %s", "boom")
	line := decodeLine(t, &buf)
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "Dashboard analyze failed: boom", line["message"])
	assert.Equal(t, "req-9", line[FieldRequestID])

	buf.Reset()
	CtxError(ctx, "Predict failed: %d", 7)
	line = decodeLine(t, &buf)
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "Predict failed: 7", line["message"])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, GetDefault(), FromContext(context.Background()))
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestNewFromEnvExplicitOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewFromEnv(&EnvConfig{Level: "info", Format: "text", Output: &buf, ServiceName: "env"})
	log.Info("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "service=env")
	assert.NoError(t, Sync())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_MAX_SIZE", "not-a-number")
	t.Setenv("LOG_COMPRESS", "false")

	cfg := LoadFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.False(t, cfg.Compress)
	assert.Equal(t, "producelens", cfg.ServiceName)
}
