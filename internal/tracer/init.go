package tracer

import (
	"context"

	"github.com/timmy/producelens/internal/config"
	"github.com/timmy/producelens/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// InitTracer initializes OpenTelemetry with an OTLP HTTP exporter.
// Tracing is disabled unless cfg.Enabled; spans then go to the global no-op provider.
// Returns a shutdown function that should be called on application exit.
func InitTracer(ctx context.Context, cfg config.TracingConfig, log *logger.Logger) ShutdownFunc {
	if !cfg.Enabled {
		log.Info("OpenTelemetry tracing is disabled (set OTEL_ENABLED=true to enable)")
		return noop
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		log.WithError(err).Warn("Failed to create OTLP exporter, tracing disabled")
		return noop
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "producelens"
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.WithField("endpoint", cfg.Endpoint).Info("OpenTelemetry tracer initialized")

	return tp.Shutdown
}
