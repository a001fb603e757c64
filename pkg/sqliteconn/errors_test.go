package sqliteconn

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := &OpenError{Path: "/data/app.db", Err: cause}

	assert.Equal(t, "open database /data/app.db: disk I/O error", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("acquire: %w", err)
	var openErr *OpenError
	require.ErrorAs(t, wrapped, &openErr)
	assert.Equal(t, "/data/app.db", openErr.Path)
}

func TestSentinelErrors_SurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("database file /data/app.db: %w", ErrNotExist)

	assert.ErrorIs(t, wrapped, ErrNotExist)
	assert.NotErrorIs(t, wrapped, ErrClosed)
	assert.NotErrorIs(t, wrapped, ErrEmptyPath)
}
