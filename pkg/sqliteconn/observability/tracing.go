package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the connector tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("sqliteconn")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartAcquireSpan starts a span for a shared acquire.
	// Returns the context with span and the span itself.
	StartAcquireSpan(ctx context.Context, path string) (context.Context, trace.Span)

	// StartOpenSpan starts a span for a fresh database open.
	// The open span should be a child of the acquire span.
	StartOpenSpan(ctx context.Context, key string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartAcquireSpan starts a span for a shared acquire.
func (m *otelSpanManager) StartAcquireSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "sqliteconn.acquire",
		trace.WithAttributes(
			attribute.String("db.path", path),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartOpenSpan starts a span for a fresh database open.
func (m *otelSpanManager) StartOpenSpan(ctx context.Context, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "sqliteconn.open",
		trace.WithAttributes(
			attribute.String("db.key", key),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Convenience functions that operate on the global tracer.
// These are useful for simple cases where you don't need the interface.

// StartAcquireSpan starts a span for a shared acquire.
// Uses the global OTel tracer.
func StartAcquireSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "sqliteconn.acquire",
		trace.WithAttributes(
			attribute.String("db.path", path),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartOpenSpan starts a span for a fresh database open.
// Uses the global OTel tracer.
func StartOpenSpan(ctx context.Context, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "sqliteconn.open",
		trace.WithAttributes(
			attribute.String("db.key", key),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
