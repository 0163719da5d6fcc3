package store

import (
	"context"
	"sync"
	"time"

	"github.com/communa/backend/core"
	"github.com/communa/backend/ports"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-memory NonceStore for a single instance and for tests
type MemoryStore struct {
	data map[string]entry
	mu   sync.RWMutex
	now  func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates a store that reads time from now
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]entry),
		now:  now,
	}
}

var _ ports.NonceStore = (*MemoryStore)(nil)

// Set stores value under key until ttl elapses
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns the live value for key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return "", core.ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		// Only delete if nobody refreshed the key meanwhile
		if cur, exists := s.data[key]; exists && !cur.expiresAt.After(e.expiresAt) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return "", core.ErrNotFound
	}
	return e.value, nil
}

// Sweep drops every expired key and returns how many were removed
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.data {
		if !now.Before(e.expiresAt) {
			delete(s.data, k)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
