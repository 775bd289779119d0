package twilightstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twilight-hud/internal/domain/twilight"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	_, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)

	end := time.Date(2024, 6, 21, 21, 32, 0, 0, time.UTC)
	cached := twilight.Cached{Window: twilight.Window{NauticalEnd: end}, FetchedAt: end.Add(-time.Hour)}
	require.NoError(t, store.Save(context.Background(), cached))

	got, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cached, got)
}

func TestValkeyStoreKey(t *testing.T) {
	require.Equal(t, "twilight:window", NewValkeyStore(nil, "").windowKey())
	require.Equal(t, "hud:window", NewValkeyStore(nil, "hud").windowKey())
}
