// Package telemetry configures OpenTelemetry tracing for the CLI. Tracing
// is opt-in and exports over OTLP/HTTP.
package telemetry

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Settings are read from the environment
type Settings struct {
	Endpoint string  `env:"DRIVERJOBPOST_OTEL_ENDPOINT"`
	Enabled  bool    `env:"DRIVERJOBPOST_OTEL_ENABLED" envDefault:"true"`
	Ratio    float64 `env:"DRIVERJOBPOST_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// LoadSettings parses Settings from environment variables
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse telemetry env: %w", err)
	}
	return s, nil
}

// Active reports whether spans should be exported
func (s Settings) Active() bool {
	return s.Enabled && s.Endpoint != ""
}

// Setup installs a global tracer provider exporting to the configured
// endpoint. Without an endpoint, or with DRIVERJOBPOST_OTEL_ENABLED=false,
// it registers nothing and returns a no-op shutdown.
//
// The returned shutdown flushes pending spans and should be deferred.
func Setup(ctx context.Context, serviceName, version string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	settings, err := LoadSettings()
	if err != nil {
		return noop, err
	}
	if !settings.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(settings.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("create resource: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if settings.Ratio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.Ratio))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
