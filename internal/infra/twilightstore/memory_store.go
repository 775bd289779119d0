package twilightstore

import (
	"context"
	"sync"

	"github.com/yanqian/twilight-hud/internal/domain/twilight"
)

// MemoryStore keeps the last window in process memory for dev and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	cached twilight.Cached
	ok     bool
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements twilight.CacheStore.
func (s *MemoryStore) Load(_ context.Context) (twilight.Cached, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached, s.ok, nil
}

// Save implements twilight.CacheStore.
func (s *MemoryStore) Save(_ context.Context, cached twilight.Cached) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = cached
	s.ok = true
	return nil
}

var _ twilight.CacheStore = (*MemoryStore)(nil)
