package twilightstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/twilight-hud/internal/domain/twilight"
)

const defaultTTL = 48 * time.Hour

// ValkeyStore persists the last window in a Valkey-compatible database so a
// restart during an outage still has something to display.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "twilight"
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: defaultTTL}
}

// Load implements twilight.CacheStore.
func (s *ValkeyStore) Load(ctx context.Context) (twilight.Cached, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.windowKey()).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return twilight.Cached{}, false, nil
		}
		return twilight.Cached{}, false, err
	}
	var cached twilight.Cached
	if err := json.Unmarshal([]byte(payload), &cached); err != nil {
		return twilight.Cached{}, false, fmt.Errorf("decode cached window: %w", err)
	}
	return cached, true, nil
}

// Save implements twilight.CacheStore.
func (s *ValkeyStore) Save(ctx context.Context, cached twilight.Cached) error {
	payload, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.windowKey()).Value(string(payload)).Ex(s.ttl).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) windowKey() string {
	return fmt.Sprintf("%s:window", s.prefix)
}

var _ twilight.CacheStore = (*ValkeyStore)(nil)
