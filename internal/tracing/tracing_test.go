package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func restoreProvider(t *testing.T) {
	t.Helper()
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init("flowpaper", "test", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_File(t *testing.T) {
	restoreProvider(t)
	out := filepath.Join(t.TempDir(), "spans.json")

	shutdown, err := Init("flowpaper", "test", out)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "paper.fit")
	EndSpan(span, nil)
	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Name":"paper.fit"`)
}

func TestInit_BadPath(t *testing.T) {
	_, err := Init("flowpaper", "test", filepath.Join(t.TempDir(), "missing", "spans.json"))
	assert.Error(t, err)
}

func TestSpanRecording(t *testing.T) {
	restoreProvider(t)
	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := InitWithExporter("flowpaper", "test", exporter, nil)
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	ctx, parent := StartSpan(context.Background(), "render", attribute.String("format", "svg"))
	_, child := StartSpan(ctx, "layout")
	EndSpan(child, errors.New("boom"))
	EndSpan(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "layout", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())

	assert.Equal(t, "render", spans[1].Name)
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
	assert.Contains(t, spans[1].Attributes, attribute.String("format", "svg"))
}
