package tracer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/timmy/producelens/internal/config"
	"github.com/timmy/producelens/internal/logger"
)

func TestInitTracerDisabled(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Output: &buf})

	shutdown := InitTracer(context.Background(), config.TracingConfig{Enabled: false}, log)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "tracing is disabled")
}

func TestInitTracerEnabled(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Output: &buf})

	shutdown := InitTracer(context.Background(), config.TracingConfig{
		Enabled:     true,
		Endpoint:    "127.0.0.1:1",
		ServiceName: "producelens-test",
		Insecure:    true,
	}, log)
	assert.Contains(t, buf.String(), "tracer initialized")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
