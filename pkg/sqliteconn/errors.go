package sqliteconn

import (
	"errors"
	"fmt"
)

// Sentinel errors for acquisition.
var (
	// ErrEmptyPath indicates an acquire was called with an empty location.
	ErrEmptyPath = errors.New("database path is empty")

	// ErrNotExist indicates the database file does not exist and creation
	// was disabled for the call.
	ErrNotExist = errors.New("database file does not exist")

	// ErrClosed indicates the connector has been closed.
	ErrClosed = errors.New("connector is closed")
)

// OpenError wraps a failure to open the underlying database.
type OpenError struct {
	// Path is the canonical path (or the in-memory sentinel) that failed.
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *OpenError) Error() string {
	return fmt.Sprintf("open database %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OpenError) Unwrap() error {
	return e.Err
}
