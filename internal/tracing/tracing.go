// Package tracing wires OpenTelemetry for flowpaper. When no output is
// configured the global no-op provider stays in place and spans cost nothing.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rendis/flowpaper"

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

// Init installs a tracer provider exporting to output: "stdout", "stderr"
// or a file path. An empty output leaves tracing disabled.
func Init(serviceName, serviceVersion, output string) (Shutdown, error) {
	if output == "" {
		return func(context.Context) error { return nil }, nil
	}

	var (
		w       io.Writer
		closeFn = func() error { return nil }
	)
	switch output {
	case "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.Create(output)
		if err != nil {
			return nil, fmt.Errorf("tracing: open %s: %w", output, err)
		}
		w, closeFn = f, f.Close
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("tracing: create exporter: %w", err)
	}
	return InitWithExporter(serviceName, serviceVersion, exporter, closeFn)
}

// InitWithExporter installs a tracer provider around exporter. closeFn runs
// after the provider has shut down.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter, closeFn func() error) (Shutdown, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closeFn != nil {
			if cerr := closeFn(); err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}

// StartSpan starts an internal span on the global provider.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err (or success) on span and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
