// Package apm configures the global OTEL tracer provider. Quote sources
// start a span per quote request; exporters are selected from config.
package apm

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// Exporter names accepted in configuration.
const (
	ExporterConsole  = "console"
	ExporterZipkin   = "zipkin"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
	ExporterNone     = "none"
)

// Config selects the span exporter.
type Config struct {
	ServiceName string
	Exporter    string
	Endpoint    string // zipkin/otlp collector URL
	Insecure    bool
}

// TraceProvider owns the configured tracer provider.
type TraceProvider struct {
	tp *sdktrace.TracerProvider
}

// NewTraceProvider builds the tracer provider, installs it globally and
// returns it for shutdown. ExporterNone installs a provider without an
// exporter so span creation stays cheap but valid.
func NewTraceProvider(ctx context.Context, cfg Config) (*TraceProvider, error) {
	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(
			resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName)),
		),
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TraceProvider{tp: tp}, nil
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterConsole:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case ExporterZipkin:
		return zipkin.New(cfg.Endpoint)
	case ExporterOTLPGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpointURL(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	case ExporterOTLPHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case ExporterNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("apm: unknown trace exporter %q", cfg.Exporter)
	}
}

// Stop flushes and shuts the tracer provider down.
func (p *TraceProvider) Stop(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}
