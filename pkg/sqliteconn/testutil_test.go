package sqliteconn

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Test helpers used across tests.

// newTestConnector creates a connector that is torn down with the test.
func newTestConnector(t *testing.T, opts ...Option) *Connector {
	t.Helper()
	c := New(opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// tempDBPath returns a path for a database file inside a fresh temp dir.
func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// mustExec runs a statement through a shared handle.
func mustExec(t *testing.T, conn *Conn, query string, args ...any) {
	t.Helper()
	_, err := conn.Exec(query, args...)
	require.NoError(t, err)
}

// tableNames lists the user tables visible through a shared handle.
func tableNames(t *testing.T, conn *Conn) []string {
	t.Helper()
	rows, err := conn.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}
