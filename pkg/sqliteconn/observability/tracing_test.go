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

// setupTracingTest creates a test tracer provider with an in-memory span recorder.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	// Save the original provider
	originalProvider := otel.GetTracerProvider()

	// Set test provider
	otel.SetTracerProvider(tp)

	// Update the package-level tracer
	tracer = otel.Tracer("sqliteconn")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}

	return exporter, cleanup
}

func TestStartAcquireSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("creates span with correct name and attributes", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		_, span := StartAcquireSpan(ctx, "./data/users.db")
		require.NotNil(t, span)

		// End the span to flush it to the exporter
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, "sqliteconn.acquire", s.Name)

		attrs := s.Attributes
		found := false
		for _, attr := range attrs {
			if attr.Key == "db.path" && attr.Value.AsString() == "./data/users.db" {
				found = true
			}
		}
		assert.True(t, found, "Expected db.path attribute")
	})
}

func TestStartOpenSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("creates span with correct name and attributes", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		_, span := StartOpenSpan(ctx, "/data/users.db")
		require.NotNil(t, span)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, "sqliteconn.open", s.Name)

		found := false
		for _, attr := range s.Attributes {
			if attr.Key == "db.key" && attr.Value.AsString() == "/data/users.db" {
				found = true
			}
		}
		assert.True(t, found, "Expected db.key attribute")
	})

	t.Run("open span is a child of the acquire span", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		ctx, acquireSpan := StartAcquireSpan(ctx, "./users.db")
		_, openSpan := StartOpenSpan(ctx, "/abs/users.db")

		openSpan.End()
		acquireSpan.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 2)

		// Spans flush in end order: open first, then acquire.
		child, parent := spans[0], spans[1]
		assert.Equal(t, "sqliteconn.open", child.Name)
		assert.Equal(t, parent.SpanContext.SpanID(), child.Parent.SpanID())
	})
}

func TestEndSpanWithError(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("sets ok status on success", func(t *testing.T) {
		exporter.Reset()

		_, span := StartAcquireSpan(context.Background(), "./users.db")
		EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Ok, spans[0].Status.Code)
	})

	t.Run("records error and sets error status", func(t *testing.T) {
		exporter.Reset()

		_, span := StartAcquireSpan(context.Background(), "./users.db")
		EndSpanWithError(span, errors.New("open failed"))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, codes.Error, s.Status.Code)
		assert.Equal(t, "open failed", s.Status.Description)
		require.NotEmpty(t, s.Events, "Expected error event to be recorded")
	})

	t.Run("nil span does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			EndSpanWithError(nil, errors.New("boom"))
		})
	})
}

func TestAddSpanEvent(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	t.Run("adds event to recording span", func(t *testing.T) {
		exporter.Reset()

		ctx, span := StartAcquireSpan(context.Background(), "./users.db")
		AddSpanEvent(ctx, "stripe acquired", attribute.Int("stripe", 3))
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		require.NotEmpty(t, spans[0].Events)
		assert.Equal(t, "stripe acquired", spans[0].Events[0].Name)
	})

	t.Run("no-op without span in context", func(t *testing.T) {
		assert.NotPanics(t, func() {
			AddSpanEvent(context.Background(), "orphan event")
		})
	})
}

func TestSpanManager_Interface(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	require.NotNil(t, sm)

	t.Run("full span lifecycle through the interface", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		ctx, acquireSpan := sm.StartAcquireSpan(ctx, "./users.db")
		openCtx, openSpan := sm.StartOpenSpan(ctx, "/abs/users.db")
		sm.AddSpanEvent(openCtx, "pragmas applied")
		sm.EndSpanWithError(openSpan, nil)
		sm.EndSpanWithError(acquireSpan, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 2)
		assert.Equal(t, "sqliteconn.open", spans[0].Name)
		assert.Equal(t, "sqliteconn.acquire", spans[1].Name)
	})

	t.Run("error path through the interface", func(t *testing.T) {
		exporter.Reset()

		_, span := sm.StartAcquireSpan(context.Background(), "./missing.db")
		sm.EndSpanWithError(span, errors.New("database file does not exist"))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
	})
}
