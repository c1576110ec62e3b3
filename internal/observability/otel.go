// Package observability wires distributed tracing and the structured
// logger that rides on top of it. Adapted from the teacher's
// pkg/observability/otel.go, narrowed to the single OTEL_TRACES_ENDPOINT
// variable this daemon reads (no metrics or log-exporter halves: this
// daemon's logs go to slog directly, see DESIGN.md).
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultServiceName names the service in exported spans and logs when
// OTEL_SERVICE_NAME is unset.
const DefaultServiceName = "gamayun"

// Config holds tracing configuration.
type Config struct {
	// Endpoint is the OTLP/gRPC collector address. When empty, no spans are
	// exported (the tracer provider has no exporter).
	Endpoint string
	// ServiceName names the service in resource attributes and the
	// otelslog bridge logger.
	ServiceName string
}

func newResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	serviceResource, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
		resource.WithFromEnv(),
		resource.WithSchemaURL(semconv.SchemaURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating service resource: %w", err)
	}

	res, err := resource.Merge(resource.Default(), serviceResource)
	if err != nil {
		if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
			return res, nil
		}
		return nil, fmt.Errorf("merging resources: %w", err)
	}
	return res, nil
}

// InitTracerProvider initializes an OTLP/gRPC tracer provider against
// cfg.Endpoint. When Endpoint is empty, it installs an SDK tracer provider
// with no exporter, so no spans leave the process, and returns immediately —
// tracing is opt-in.
func InitTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	if cfg.Endpoint == "" {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	res, err := newResource(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider, nil
}

// NewLogger returns the slog logger gamayun logs through: the otelslog
// bridge when tracing is enabled (so log records carry trace/span IDs),
// or a plain stdout JSON logger otherwise.
func NewLogger(cfg Config) *slog.Logger {
	if cfg.Endpoint == "" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	return otelslog.NewLogger(serviceName)
}
