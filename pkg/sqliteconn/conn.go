package sqliteconn

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/soulostar/sqlite-connector/pkg/sqliteconn/observability"
)

// Conn is a shared handle to one open SQLite database. Every goroutine that
// acquires the same key receives the same *Conn; the underlying database
// stays open until the last holder has released it.
//
// Database operations pass straight through to the underlying *sql.DB with
// no additional locking. The handle is valid until this holder's Release;
// operations after the last release fail with database/sql's closed-database
// error.
type Conn struct {
	connector *Connector
	key       string
	db        *sql.DB

	// refs is mutated only under the key's stripe lock.
	// Reads are atomic so diagnostics never block acquires.
	refs   atomic.Int32
	closed atomic.Bool
}

// retain adds a reference and returns the new count.
// Caller holds the key's stripe lock.
func (c *Conn) retain() int32 {
	return c.refs.Add(1)
}

// Release returns this holder's reference. The last release closes the
// underlying database and removes the registry entry; errors from that close
// are logged, never returned, so release is safe in cleanup paths.
// Releasing a handle whose database has already been fully closed is a no-op.
//
// Each successful acquire must be balanced by exactly one Release. An extra
// Release corrupts the shared count and can close the database under the
// remaining holders.
func (c *Conn) Release() {
	if c.closed.Load() {
		return
	}

	lock := c.connector.stripes.For(c.key)
	lock.Lock()
	defer lock.Unlock()

	// Re-check: the connector may have torn the handle down while we
	// waited on the stripe.
	if c.closed.Load() {
		return
	}

	if refs := c.refs.Add(-1); refs > 0 {
		observability.LogConnectionReleased(c.connector.logger, c.key, int(refs))
		c.connector.metrics.RecordRelease(context.Background(), false)
		return
	}

	c.closed.Store(true)
	c.connector.remove(c.key, c)
	if err := c.db.Close(); err != nil {
		observability.LogCloseError(c.connector.logger, c.key, err)
	}
	observability.LogDatabaseClosed(c.connector.logger, c.key)
	c.connector.metrics.RecordRelease(context.Background(), true)
}

// Close releases this holder's reference and always returns nil. It exists
// so a Conn satisfies io.Closer and works with defer-based cleanup.
func (c *Conn) Close() error {
	c.Release()
	return nil
}

// Key returns the canonical registry key of this database.
func (c *Conn) Key() string {
	return c.key
}

// Refs returns the current number of holders. The count is a diagnostic
// snapshot and can change the moment it is returned.
func (c *Conn) Refs() int32 {
	return c.refs.Load()
}

// String implements fmt.Stringer.
func (c *Conn) String() string {
	return fmt.Sprintf("Conn(%s)", c.key)
}

// Exec executes a statement without returning rows.
func (c *Conn) Exec(query string, args ...any) (sql.Result, error) {
	return c.db.Exec(query, args...)
}

// ExecContext executes a statement without returning rows.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// Query executes a query that returns rows.
func (c *Conn) Query(query string, args ...any) (*sql.Rows, error) {
	return c.db.Query(query, args...)
}

// QueryContext executes a query that returns rows.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that is expected to return at most one row.
func (c *Conn) QueryRow(query string, args ...any) *sql.Row {
	return c.db.QueryRow(query, args...)
}

// QueryRowContext executes a query that is expected to return at most one row.
func (c *Conn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

// Prepare creates a prepared statement.
func (c *Conn) Prepare(query string) (*sql.Stmt, error) {
	return c.db.Prepare(query)
}

// PrepareContext creates a prepared statement.
func (c *Conn) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return c.db.PrepareContext(ctx, query)
}

// Begin starts a transaction.
func (c *Conn) Begin() (*sql.Tx, error) {
	return c.db.Begin()
}

// BeginTx starts a transaction with the given options.
func (c *Conn) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, opts)
}

// Ping verifies the database is still reachable.
func (c *Conn) Ping() error {
	return c.db.Ping()
}

// PingContext verifies the database is still reachable.
func (c *Conn) PingContext(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Stats returns database statistics for the underlying *sql.DB.
func (c *Conn) Stats() sql.DBStats {
	return c.db.Stats()
}
