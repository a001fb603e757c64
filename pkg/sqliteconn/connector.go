package sqliteconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/soulostar/sqlite-connector/pkg/sqliteconn/observability"
	"github.com/soulostar/sqlite-connector/pkg/sqliteconn/stripe"
)

// DefaultDriver is the database/sql driver name used unless WithDriver
// overrides it. It is registered by the modernc.org/sqlite import.
const DefaultDriver = "sqlite"

// Connector hands out shared SQLite database handles. At most one live
// database is open per canonical key; concurrent acquires of the same key
// receive the same *Conn, and the database closes exactly when the last
// holder releases it.
//
// A Connector is safe for concurrent use. Configuration is immutable
// after New.
type Connector struct {
	id             string
	driver         string
	createMissing  bool
	pragmas        map[string]string
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool

	stripes *stripe.Set

	mu     sync.RWMutex
	conns  map[string]*Conn
	closed atomic.Bool
}

// New creates a Connector.
func New(opts ...Option) *Connector {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	id := fmt.Sprintf("connector-%s", uuid.New().String()[:8])
	logger := cfg.logger
	if logger != nil {
		logger = logger.With(slog.String("connector_id", id))
	}

	return &Connector{
		id:             id,
		driver:         cfg.driver,
		createMissing:  cfg.createMissing,
		pragmas:        cfg.pragmas,
		logger:         logger,
		metrics:        cfg.metrics,
		spans:          cfg.spans,
		tracingEnabled: cfg.tracingEnabled,
		stripes:        stripe.New(cfg.lockStripes),
		conns:          make(map[string]*Conn),
	}
}

// Acquire returns the shared handle for the database at path, opening it if
// no live handle exists. path is canonicalized first, so every spelling of
// the same file (relative, absolute, through symlinks) shares one handle.
// The reserved path InMemory names a single shared in-memory database.
//
// Whether a missing database file is created is governed by the connector's
// creation policy; CreateMissing overrides it per call. When creation is
// disabled and the file is absent, Acquire fails with an error wrapping
// ErrNotExist and the registry is left untouched.
//
// The caller must balance every successful Acquire with exactly one Release
// on the returned handle.
func (c *Connector) Acquire(path string, opts ...AcquireOption) (*Conn, error) {
	cfg := acquireConfig{createMissing: c.createMissing}
	for _, opt := range opts {
		opt(&cfg)
	}

	key, err := resolveKey(path)
	if err != nil {
		return nil, err
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}

	ctx := context.Background()
	var span trace.Span
	if c.tracingEnabled {
		ctx, span = c.spans.StartAcquireSpan(ctx, path)
	}

	start := time.Now()
	conn, shared, err := c.getOrCreate(ctx, key, cfg.createMissing)
	c.metrics.RecordAcquire(ctx, shared, time.Since(start), err)
	if c.tracingEnabled {
		c.spans.EndSpanWithError(span, err)
	}
	return conn, err
}

// AcquireUnshared opens a brand-new database for path that bypasses the
// registry entirely: it is never shared, counted, or tracked, and the caller
// owns it and must Close it. The file is created if absent. The connector's
// pragmas apply.
//
// Unshared acquires of InMemory each receive their own private in-memory
// database.
func (c *Connector) AcquireUnshared(path string) (*sql.DB, error) {
	return c.AcquireUnsharedPragmas(path, c.pragmas)
}

// AcquireUnsharedPragmas is AcquireUnshared with an explicit pragma set
// replacing the connector's.
func (c *Connector) AcquireUnsharedPragmas(path string, pragmas map[string]string) (*sql.DB, error) {
	key, err := resolveKey(path)
	if err != nil {
		return nil, err
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}

	ctx := context.Background()
	db, err := c.open(ctx, key, pragmas)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordUnshared(ctx)
	observability.LogUnsharedOpened(c.logger, key)
	return db, nil
}

// ID returns the connector's unique instance identifier. It appears as the
// connector_id attribute on every log record the connector emits.
func (c *Connector) ID() string {
	return c.id
}

// Len returns the number of live shared handles.
func (c *Connector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.conns)
}

// Keys returns a snapshot of the canonical keys with live shared handles.
// The order is not guaranteed.
func (c *Connector) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Collect(maps.Keys(c.conns))
}

// Close tears down the registry: every remaining shared database is closed
// regardless of its reference count, and all further acquires fail with
// ErrClosed. Outstanding handles become inert; their Release is a no-op.
// Close is idempotent and returns the joined underlying close errors, if any.
func (c *Connector) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	// No acquire or release can run while every stripe is held, so the
	// sweep below cannot race a publish or a refcount change.
	release := c.stripes.LockAll()
	defer release()

	c.mu.Lock()
	conns := c.conns
	c.conns = make(map[string]*Conn)
	c.mu.Unlock()

	ctx := context.Background()
	var errs []error
	for key, conn := range conns {
		conn.closed.Store(true)
		if err := conn.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", key, err))
		}
		c.metrics.RecordRelease(ctx, true)
	}
	observability.LogConnectorClosed(c.logger, len(conns))
	return errors.Join(errs...)
}

// getOrCreate implements the registry protocol for key: share the live
// handle if one exists, otherwise open a fresh database and publish it. The
// whole decision runs under the key's stripe lock, so concurrent acquires of
// one key serialize and at most one database is ever opened per key. The
// boolean reports whether an existing handle was shared.
func (c *Connector) getOrCreate(ctx context.Context, key string, createMissing bool) (*Conn, bool, error) {
	for {
		lock := c.stripes.For(key)
		lock.Lock()

		if c.closed.Load() {
			lock.Unlock()
			return nil, false, ErrClosed
		}

		if conn := c.lookup(key); conn != nil {
			refs := conn.retain()
			lock.Unlock()
			observability.LogConnectionShared(c.logger, key, int(refs))
			return conn, true, nil
		}

		exists := key == InMemory
		if !exists {
			_, err := os.Stat(key)
			switch {
			case err == nil:
				exists = true
			case !errors.Is(err, fs.ErrNotExist):
				lock.Unlock()
				return nil, false, &OpenError{Path: key, Err: err}
			}
		}
		if !exists && !createMissing {
			lock.Unlock()
			return nil, false, fmt.Errorf("database file %s: %w", key, ErrNotExist)
		}

		done := observability.TimedOperation()
		db, err := c.openDB(ctx, key)
		if err != nil {
			lock.Unlock()
			return nil, false, err
		}

		if !exists {
			// The open created the file, whose canonical form can differ
			// from the pre-creation key. Publish under the created file's
			// key; if that key is a different one, redo the protocol under
			// its stripe instead of holding two stripes at once.
			created, cerr := canonicalPath(key)
			if cerr != nil {
				lock.Unlock()
				if err := db.Close(); err != nil {
					observability.LogCloseError(c.logger, key, err)
				}
				return nil, false, &OpenError{Path: key, Err: cerr}
			}
			if created != key {
				lock.Unlock()
				if err := db.Close(); err != nil {
					observability.LogCloseError(c.logger, key, err)
				}
				key = created
				continue
			}
		}

		conn := c.publish(key, db)
		lock.Unlock()
		observability.LogDatabaseOpened(c.logger, key, done())
		return conn, false, nil
	}
}

// lookup returns the live handle for key, or nil.
func (c *Connector) lookup(key string) *Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn := c.conns[key]
	if conn == nil || conn.closed.Load() {
		return nil
	}
	return conn
}

// publish stores a fresh handle for key with one reference.
// Caller holds the key's stripe lock.
func (c *Connector) publish(key string, db *sql.DB) *Conn {
	conn := &Conn{connector: c, key: key, db: db}
	conn.refs.Store(1)

	c.mu.Lock()
	c.conns[key] = conn
	c.mu.Unlock()
	return conn
}

// remove unpublishes the entry for key if it still maps to conn.
// Caller holds the key's stripe lock.
func (c *Connector) remove(key string, conn *Conn) {
	c.mu.Lock()
	if c.conns[key] == conn {
		delete(c.conns, key)
	}
	c.mu.Unlock()
}

// openDB opens the database for a registry key, wrapped in an open span
// when tracing is enabled.
func (c *Connector) openDB(ctx context.Context, key string) (*sql.DB, error) {
	var span trace.Span
	if c.tracingEnabled {
		ctx, span = c.spans.StartOpenSpan(ctx, key)
	}
	db, err := c.open(ctx, key, c.pragmas)
	if c.tracingEnabled {
		c.spans.EndSpanWithError(span, err)
	}
	return db, err
}

// open opens a single-connection database at path and applies pragmas to
// that connection. SQLite serializes writers per file, so one pinned
// connection per database keeps holders from contending on file locks.
// The first statement forces database/sql's lazy connect: open errors
// surface here, and a missing file comes into existence here.
func (c *Connector) open(ctx context.Context, path string, pragmas map[string]string) (*sql.DB, error) {
	db, err := sql.Open(c.driver, path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db, pragmas); err != nil {
		db.Close()
		return nil, &OpenError{Path: path, Err: err}
	}
	return db, nil
}

// applyPragmas applies each pragma to the database's pinned connection, in
// name order so the statement sequence is deterministic. With no pragmas
// configured, a ping still forces the lazy connect.
func applyPragmas(ctx context.Context, db *sql.DB, pragmas map[string]string) error {
	if len(pragmas) == 0 {
		return db.PingContext(ctx)
	}
	for _, name := range slices.Sorted(maps.Keys(pragmas)) {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", name, pragmas[name])); err != nil {
			return fmt.Errorf("pragma %s: %w", name, err)
		}
	}
	return nil
}
