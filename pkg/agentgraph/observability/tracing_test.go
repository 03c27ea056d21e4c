package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest installs an in-memory span exporter and rebinds the
// package tracer to it.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("agentgraph")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		tracer = otel.Tracer("agentgraph")
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutting down tracer provider: %v", err)
		}
	}
	return exporter, cleanup
}

func TestStartRunSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	ctx, span := sm.StartRunSpan(context.Background(), "thread-1")
	require.NotNil(t, span)
	assert.NotEqual(t, context.Background(), ctx)

	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "agentgraph.run", spans[0].Name)

	var threadID string
	for _, attr := range spans[0].Attributes {
		if attr.Key == "thread.id" {
			threadID = attr.Value.AsString()
		}
	}
	assert.Equal(t, "thread-1", threadID)
}

func TestStartNodeSpanIsChildOfRunSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	ctx, runSpan := sm.StartRunSpan(context.Background(), "thread-1")
	_, nodeSpan := sm.StartNodeSpan(ctx, "researcher")

	nodeSpan.End()
	runSpan.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	var node *tracetest.SpanStub
	for i := range spans {
		if spans[i].Name == "agentgraph.node.researcher" {
			node = &spans[i]
		}
	}
	require.NotNil(t, node)
	assert.True(t, node.Parent.IsValid())
}

func TestStartToolSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	_, span := sm.StartToolSpan(context.Background(), "retriever")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "agentgraph.tool.retriever", spans[0].Name)
}

func TestEndSpanWithError(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()

	t.Run("nil error sets OK status", func(t *testing.T) {
		_, span := sm.StartRunSpan(context.Background(), "thread-1")
		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Ok, spans[0].Status.Code)
	})

	t.Run("error sets status and records exception", func(t *testing.T) {
		exporter.Reset()
		_, span := sm.StartRunSpan(context.Background(), "thread-2")
		sm.EndSpanWithError(span, errors.New("backend down"))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.Equal(t, "backend down", spans[0].Status.Description)

		found := false
		for _, event := range spans[0].Events {
			if event.Name == "exception" {
				found = true
			}
		}
		assert.True(t, found, "expected exception event")
	})

	t.Run("nil span does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			sm.EndSpanWithError(nil, errors.New("boom"))
		})
	})
}

func TestAddSpanEvent(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	ctx, span := sm.StartRunSpan(context.Background(), "thread-1")
	sm.AddSpanEvent(ctx, "checkpoint_saved",
		attribute.String("node_id", "writer"),
		attribute.Int64("size_bytes", 512),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	found := false
	for _, event := range spans[0].Events {
		if event.Name == "checkpoint_saved" {
			found = true
		}
	}
	assert.True(t, found)

	assert.NotPanics(t, func() {
		sm.AddSpanEvent(context.Background(), "no_current_span")
	})
}
