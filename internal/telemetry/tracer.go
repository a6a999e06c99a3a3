// Package telemetry wires OpenTelemetry tracing for pipeline runs.
//
// Spans are exported through the stdout exporter so a local run can be
// inspected without any collector infrastructure. The caller chooses the
// destination writer, which keeps trace output away from the terminal
// unless it is asked for.
package telemetry

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ServiceName identifies this tool in exported trace resources.
const ServiceName = "cicd-local"

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Init configures the global tracer provider to export pretty-printed
// spans to w. It returns a tracer for pipeline spans and a shutdown
// function that must be called before exit to flush pending spans.
func Init(w io.Writer, logger zerolog.Logger) (trace.Tracer, ShutdownFunc, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(ServiceName),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Debug().Str("service", ServiceName).Msg("tracing initialized")

	return tp.Tracer(ServiceName), tp.Shutdown, nil
}

// Noop returns a tracer that records nothing, for callers that do not
// want trace output.
func Noop() (trace.Tracer, ShutdownFunc) {
	tracer := noop.NewTracerProvider().Tracer(ServiceName)
	return tracer, func(context.Context) error { return nil }
}
