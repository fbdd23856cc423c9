package dedup

import (
	"context"
	"sync"
	"time"
)

// MemoryStore tracks keys in process memory. Suitable only when a single
// process receives every delivery.
type MemoryStore struct {
	mu        sync.Mutex
	window    time.Duration
	now       Clock
	seen      map[string]time.Time // key -> first seen
	lastSweep time.Time
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithMemoryClock replaces the clock used by the store
func WithMemoryClock(now Clock) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an in-memory store with the given window
func NewMemoryStore(window time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

// CheckAndRecord implements Store
func (s *MemoryStore) CheckAndRecord(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.window {
		s.sweep(now)
	}

	if firstSeen, exists := s.seen[key]; exists && now.Sub(firstSeen) < s.window {
		return true, nil
	}

	s.seen[key] = now
	return false, nil
}

// Len returns the number of records currently held, expired or not
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// sweep removes records older than the window. Called with mu held.
func (s *MemoryStore) sweep(now time.Time) {
	for key, firstSeen := range s.seen {
		if now.Sub(firstSeen) >= s.window {
			delete(s.seen, key)
		}
	}
	s.lastSweep = now
}
