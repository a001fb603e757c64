// Package observability provides production-grade observability features
// for the connector: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds database context to a logger.
// Returns a new logger with the db_key field.
//
// Example:
//
//	enriched := EnrichLogger(logger, "/data/users.db")
//	enriched.Info("running migration") // includes db_key
func EnrichLogger(logger *slog.Logger, key string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("db_key", key),
	)
}

// LogDatabaseOpened logs a fresh database open.
func LogDatabaseOpened(logger *slog.Logger, key string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("database opened",
		slog.String("db_key", key),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogConnectionShared logs an acquire that joined an existing handle.
func LogConnectionShared(logger *slog.Logger, key string, refs int) {
	if logger == nil {
		return
	}
	logger.Debug("connection shared",
		slog.String("db_key", key),
		slog.Int("refs", refs),
	)
}

// LogConnectionReleased logs a release that left the database open.
func LogConnectionReleased(logger *slog.Logger, key string, refs int) {
	if logger == nil {
		return
	}
	logger.Debug("connection released",
		slog.String("db_key", key),
		slog.Int("refs", refs),
	)
}

// LogDatabaseClosed logs the close of a database after its last release.
func LogDatabaseClosed(logger *slog.Logger, key string) {
	if logger == nil {
		return
	}
	logger.Info("database closed",
		slog.String("db_key", key),
	)
}

// LogCloseError logs a failed underlying close (non-fatal).
func LogCloseError(logger *slog.Logger, key string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("database close failed",
		slog.String("db_key", key),
		slog.String("error", err.Error()),
	)
}

// LogUnsharedOpened logs an unshared database open.
func LogUnsharedOpened(logger *slog.Logger, key string) {
	if logger == nil {
		return
	}
	logger.Debug("unshared database opened",
		slog.String("db_key", key),
	)
}

// LogConnectorClosed logs connector teardown.
func LogConnectorClosed(logger *slog.Logger, closedCount int) {
	if logger == nil {
		return
	}
	logger.Info("connector closed",
		slog.Int("databases_closed", closedCount),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
