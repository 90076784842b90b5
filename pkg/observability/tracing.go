package observability

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Environment variables read by Setup.
const (
	EnvOTelEndpoint = "PANGOLIN_OTEL_ENDPOINT"
	EnvOTelEnabled  = "PANGOLIN_OTEL_ENABLED"
)

// TracerName is the instrumentation scope used for pipeline spans.
const TracerName = "github.com/matzehuels/pangolin"

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when PANGOLIN_OTEL_ENDPOINT is empty or
// PANGOLIN_OTEL_ENABLED is "false", Setup returns a no-op shutdown function
// and no global provider is registered.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	return SetupEndpoint(ctx, serviceName, os.Getenv(EnvOTelEndpoint))
}

// SetupEndpoint is like Setup with an explicit collector endpoint, e.g. one
// taken from the config file.
func SetupEndpoint(ctx context.Context, serviceName, endpoint string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if strings.EqualFold(os.Getenv(EnvOTelEnabled), "false") || endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns the pangolin tracer from the global provider. Without
// Setup it is a no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
