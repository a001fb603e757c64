package sqliteconn

import (
	"errors"
	"io/fs"
	"path/filepath"
)

// InMemory is the reserved location for the shared in-memory database.
// Every acquire of InMemory resolves to the same key and therefore shares
// one underlying database.
const InMemory = ":memory:"

// resolveKey maps a caller-supplied location to its canonical registry key.
// The in-memory sentinel is its own key and never touches the filesystem;
// anything else resolves to an absolute path with symlinks and dot segments
// removed, so every spelling of the same file lands on the same key.
func resolveKey(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if path == InMemory {
		return InMemory, nil
	}
	return canonicalPath(path)
}

// canonicalPath returns the canonical absolute form of path. For an existing
// path this is the fully symlink-resolved form. For a path that does not
// exist yet, the deepest existing ancestor is resolved and the remaining
// components are joined lexically, which keeps the result stable across the
// later creation of the file.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	// Walk up to the deepest existing ancestor, resolve it, and re-attach
	// the non-existent remainder.
	dir, rest := abs, ""
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent

		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
}
