package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records connector metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordAcquire records a shared acquire with its duration and error
	// status. shared reports whether an existing handle was joined rather
	// than a fresh database opened.
	RecordAcquire(ctx context.Context, shared bool, duration time.Duration, err error)

	// RecordRelease records a release. closed reports whether the release
	// was the last one and shut the database down.
	RecordRelease(ctx context.Context, closed bool)

	// RecordUnshared records an unshared database open.
	RecordUnshared(ctx context.Context)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	acquires        metric.Int64Counter
	acquireLatency  metric.Float64Histogram
	acquireErrors   metric.Int64Counter
	releases        metric.Int64Counter
	openConnections metric.Int64UpDownCounter
	unsharedOpens   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("sqliteconn")

	acquires, err := meter.Int64Counter("sqliteconn.acquires",
		metric.WithDescription("Number of shared acquires"),
	)
	if err != nil {
		return nil, err
	}

	acquireLatency, err := meter.Float64Histogram("sqliteconn.acquire.latency_ms",
		metric.WithDescription("Shared acquire latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	acquireErrors, err := meter.Int64Counter("sqliteconn.acquire.errors",
		metric.WithDescription("Number of failed shared acquires"),
	)
	if err != nil {
		return nil, err
	}

	releases, err := meter.Int64Counter("sqliteconn.releases",
		metric.WithDescription("Number of releases of shared handles"),
	)
	if err != nil {
		return nil, err
	}

	openConnections, err := meter.Int64UpDownCounter("sqliteconn.connections.open",
		metric.WithDescription("Number of currently open shared databases"),
	)
	if err != nil {
		return nil, err
	}

	unsharedOpens, err := meter.Int64Counter("sqliteconn.unshared.opens",
		metric.WithDescription("Number of unshared database opens"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		acquires:        acquires,
		acquireLatency:  acquireLatency,
		acquireErrors:   acquireErrors,
		releases:        releases,
		openConnections: openConnections,
		unsharedOpens:   unsharedOpens,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordAcquire records a shared acquire.
func (m *otelMetrics) RecordAcquire(ctx context.Context, shared bool, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.Bool("shared", shared),
	}

	m.acquires.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.acquireLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.acquireErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
		return
	}
	if !shared {
		m.openConnections.Add(ctx, 1)
	}
}

// RecordRelease records a release of a shared handle.
func (m *otelMetrics) RecordRelease(ctx context.Context, closed bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("closed", closed),
	}
	m.releases.Add(ctx, 1, metric.WithAttributes(attrs...))

	if closed {
		m.openConnections.Add(ctx, -1)
	}
}

// RecordUnshared records an unshared open.
func (m *otelMetrics) RecordUnshared(ctx context.Context) {
	m.unsharedOpens.Add(ctx, 1)
}
