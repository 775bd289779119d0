package messagerepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yanqian/twilight-hud/internal/domain/messaging"
)

// MemoryRepository keeps messages in process memory for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	messages map[string]messaging.Message
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{messages: make(map[string]messaging.Message)}
}

// Save inserts a new message.
func (r *MemoryRepository) Save(_ context.Context, msg messaging.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.messages[msg.ID]; exists {
		return fmt.Errorf("message %s already exists", msg.ID)
	}
	r.messages[msg.ID] = msg
	return nil
}

// Update replaces the delivery state of an existing message.
func (r *MemoryRepository) Update(_ context.Context, msg messaging.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.messages[msg.ID]; !exists {
		return fmt.Errorf("message %s not found", msg.ID)
	}
	r.messages[msg.ID] = msg
	return nil
}

// ListPending returns pending messages ordered by send time.
func (r *MemoryRepository) ListPending(_ context.Context) ([]messaging.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]messaging.Message, 0)
	for _, msg := range r.messages {
		if msg.Status == messaging.StatusPending {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SendAt.Before(out[j].SendAt)
	})
	return out, nil
}

// List returns the newest messages first.
func (r *MemoryRepository) List(_ context.Context, limit int) ([]messaging.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]messaging.Message, 0, len(r.messages))
	for _, msg := range r.messages {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ messaging.Repository = (*MemoryRepository)(nil)
