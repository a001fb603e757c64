package sqliteconn

import (
	"log/slog"

	"github.com/soulostar/sqlite-connector/pkg/sqliteconn/config"
	"github.com/soulostar/sqlite-connector/pkg/sqliteconn/observability"
	"github.com/soulostar/sqlite-connector/pkg/sqliteconn/stripe"
)

// options holds connector configuration, immutable after New.
type options struct {
	driver         string
	lockStripes    int
	createMissing  bool
	pragmas        map[string]string
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	metricsEnabled bool
	spans          observability.SpanManager
	tracingEnabled bool
}

// defaultOptions returns the default connector configuration.
func defaultOptions() options {
	return options{
		driver:        DefaultDriver,
		lockStripes:   stripe.DefaultCount,
		createMissing: true,
		pragmas:       map[string]string{},
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// Option configures a Connector.
type Option func(*options)

// WithLockStripes sets the number of lock stripes used to serialize per-key
// operations. Default: stripe.DefaultCount
//
// More stripes reduce contention between unrelated databases at a small
// fixed memory cost. Non-positive values fall back to the default.
func WithLockStripes(n int) Option {
	return func(o *options) {
		o.lockStripes = n
	}
}

// WithCreateMissing sets whether acquires may create database files that do
// not exist yet. Default: true
//
// When disabled, acquiring a non-existent file fails with ErrNotExist.
// Individual acquires can override this with CreateMissing.
func WithCreateMissing(create bool) Option {
	return func(o *options) {
		o.createMissing = create
	}
}

// WithDriver sets the database/sql driver name used for every open.
// Default: DefaultDriver
//
// Any registered SQLite driver works; the driver must accept a plain file
// path (or ":memory:") as its data source name.
func WithDriver(name string) Option {
	return func(o *options) {
		if name != "" {
			o.driver = name
		}
	}
}

// WithPragma adds one pragma applied to every database the connector opens,
// e.g. WithPragma("journal_mode", "WAL").
func WithPragma(name, value string) Option {
	return func(o *options) {
		o.pragmas[name] = value
	}
}

// WithPragmas merges a set of pragmas applied to every database the
// connector opens. Later options win on duplicate names.
func WithPragmas(pragmas map[string]string) Option {
	return func(o *options) {
		for name, value := range pragmas {
			o.pragmas[name] = value
		}
	}
}

// WithLogger sets the logger for connector diagnostics (opens, shares,
// releases, closes). Default: nil, which disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for acquires, releases and open
// connections. Default: false
//
// Metrics are recorded through the globally configured meter provider.
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		o.metricsEnabled = enabled
		if enabled {
			o.metrics = observability.NewMetricsRecorder()
		} else {
			o.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans around acquires and opens.
// Default: false
//
// Spans are created through the globally configured tracer provider.
func WithTracing(enabled bool) Option {
	return func(o *options) {
		o.tracingEnabled = enabled
		if enabled {
			o.spans = observability.NewSpanManager()
		} else {
			o.spans = observability.NoopSpanManager{}
		}
	}
}

// WithConfig applies every setting present in cfg, typically one loaded
// from a file with config.FromFile. Settings absent from cfg keep their
// current values, so WithConfig composes with the other options.
//
// Example:
//
//	cfg, err := config.FromFile("connector.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c := sqliteconn.New(sqliteconn.WithConfig(cfg))
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		if cfg.LockStripes > 0 {
			o.lockStripes = cfg.LockStripes
		}
		if cfg.CreateMissing != nil {
			o.createMissing = *cfg.CreateMissing
		}
		if cfg.Driver != "" {
			o.driver = cfg.Driver
		}
		for name, value := range cfg.Pragmas {
			o.pragmas[name] = value
		}
	}
}

// acquireConfig holds per-acquire overrides.
type acquireConfig struct {
	createMissing bool
}

// AcquireOption configures a single acquire.
type AcquireOption func(*acquireConfig)

// CreateMissing overrides the connector's creation policy for one acquire.
//
// Example:
//
//	conn, err := c.Acquire(path, sqliteconn.CreateMissing(false))
func CreateMissing(create bool) AcquireOption {
	return func(a *acquireConfig) {
		a.createMissing = create
	}
}
