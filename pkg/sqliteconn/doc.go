/*
Package sqliteconn shares SQLite database handles between goroutines.

# Overview

sqliteconn is a Go library for reference-counted sharing of SQLite
databases. A Connector keeps at most one open database per canonical file
path (or the in-memory sentinel); concurrent acquires of the same database
receive the same handle, and the database closes exactly when the last
holder releases it. Opening a handle per goroutine is expensive and invites
file-lock contention between writers; sharing one pinned connection per
file avoids both.

Built on database/sql with the pure-Go modernc.org/sqlite driver, with:
  - Canonical path resolution, so every spelling of a file shares one handle
  - Striped per-key locking, so unrelated databases never contend
  - Optional structured logging, OpenTelemetry metrics and tracing

# Basic Usage

Create a connector, acquire, use, release:

	c := sqliteconn.New()

	conn, err := c.Acquire("./data/users.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer conn.Release()

	rows, err := conn.Query("SELECT name FROM users WHERE active = ?", true)
	// ... use rows ...

Acquires of the same file from other goroutines return the same *Conn and
bump its reference count; each holder calls Release once, and the Nth
release closes the database.

The reserved path sqliteconn.InMemory names a single shared in-memory
database:

	mem, err := c.Acquire(sqliteconn.InMemory)

# Creation Policy

By default a missing database file is created on first acquire. Disable
that per connector or per call:

	c := sqliteconn.New(sqliteconn.WithCreateMissing(false))

	// or for one acquire only
	conn, err := c.Acquire(path, sqliteconn.CreateMissing(false))
	if errors.Is(err, sqliteconn.ErrNotExist) {
	    // file absent, registry untouched
	}

# Unshared Databases

AcquireUnshared opens a private database that bypasses the registry; the
caller owns it and must Close it:

	db, err := c.AcquireUnshared("./scratch.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer db.Close()

# Configuration

Options configure pragmas applied to every opened database, the driver, the
stripe count, logging and telemetry:

	c := sqliteconn.New(
	    sqliteconn.WithPragma("journal_mode", "WAL"),
	    sqliteconn.WithPragma("busy_timeout", "10000"),
	    sqliteconn.WithLockStripes(8),
	    sqliteconn.WithLogger(slog.Default()),
	    sqliteconn.WithMetrics(true),
	    sqliteconn.WithTracing(true),
	)

Settings can also come from a YAML or JSON file via the config subpackage:

	cfg, err := config.FromFile("connector.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	c := sqliteconn.New(sqliteconn.WithConfig(cfg))

# Error Handling

Sentinel errors support errors.Is:

	conn, err := c.Acquire(path, sqliteconn.CreateMissing(false))
	if errors.Is(err, sqliteconn.ErrNotExist) {
	    // handle missing file
	}

Failures of the underlying open are wrapped in *OpenError:

	var openErr *sqliteconn.OpenError
	if errors.As(err, &openErr) {
	    log.Printf("open %s failed: %v", openErr.Path, openErr.Err)
	}

Errors from the underlying close during the last release are logged and
swallowed, so Release is safe in cleanup paths.

# Thread Safety

  - Connector IS safe for concurrent use
  - Conn IS safe for concurrent use; database operations pass through to
    database/sql with no extra locking
  - Each successful Acquire must be balanced by exactly one Release; an
    extra Release can close the database under the remaining holders

# Subpackages

  - stripe: Fixed mutex sets indexed by key hash
  - config: File-based connector configuration (YAML, JSON)
  - observability: Logging, metrics, and tracing helpers
*/
package sqliteconn
