package stripe

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultCount is the number of stripes used when no explicit count is given.
// A handful of stripes keeps memory negligible while making same-stripe
// collisions between unrelated keys unlikely for typical working sets.
const DefaultCount = 5

// Set is a fixed array of mutexes. A given key maps to the same mutex for
// the lifetime of the Set.
type Set struct {
	locks []sync.Mutex
}

// New creates a Set with n stripes. Non-positive n falls back to DefaultCount.
func New(n int) *Set {
	if n <= 0 {
		n = DefaultCount
	}
	return &Set{locks: make([]sync.Mutex, n)}
}

// For returns the mutex that guards key. The mapping is deterministic:
// equal keys always share a mutex.
func (s *Set) For(key string) *sync.Mutex {
	return &s.locks[xxhash.Sum64String(key)%uint64(len(s.locks))]
}

// Len returns the number of stripes.
func (s *Set) Len() int {
	return len(s.locks)
}

// LockAll acquires every stripe in index order and returns a function that
// releases them all. While the release function has not been called, no
// key-level operation anywhere in the Set can make progress.
func (s *Set) LockAll() (release func()) {
	for i := range s.locks {
		s.locks[i].Lock()
	}
	return func() {
		for i := range s.locks {
			s.locks[i].Unlock()
		}
	}
}
