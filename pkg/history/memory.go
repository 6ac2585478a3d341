package history

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry // oldest first
	limits  Limits
}

// NewMemoryStore creates an empty store. Zero limits take the defaults.
func NewMemoryStore(limits Limits) *MemoryStore {
	limits = limits.withDefaults()
	return &MemoryStore{
		entries: make([]Entry, 0, limits.Size),
		limits:  limits,
	}
}

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, e Entry) error {
	e = s.limits.prepare(e)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if over := len(s.entries) - s.limits.Size; over > 0 {
		s.entries = append(s.entries[:0], s.entries[over:]...)
	}
	return nil
}

// Recent implements Store.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, 0, n)
	for i := len(s.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
