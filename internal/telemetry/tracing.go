// Package telemetry installs the OpenTelemetry tracer provider that session
// dispatch spans are recorded through.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/jwebster45206/odyssey-engine/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const ServiceName = "odyssey-engine"

// Provider wraps the SDK tracer provider so callers can flush on exit.
type Provider struct {
	provider *sdktrace.TracerProvider
}

// Init exports spans to the configured OTLP/HTTP endpoint. With tracing
// disabled the global no-op provider is left in place.
func Init(ctx context.Context, cfg *config.Config) (*Provider, error) {
	if !cfg.TracingEnabled {
		return &Provider{}, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint+"/v1/traces"),
		otlptracehttp.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}
	return NewProvider(exporter, cfg.Environment), nil
}

// NewProvider batches spans to exporter and installs itself globally.
func NewProvider(exporter sdktrace.SpanExporter, environment string) *Provider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
			attribute.String("deployment.environment", environment),
		)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return &Provider{provider: tp}
}

func (p *Provider) Enabled() bool {
	return p.provider != nil
}

// ForceFlush exports any buffered spans.
func (p *Provider) ForceFlush(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	return p.provider.ForceFlush(ctx)
}

// Shutdown flushes and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
