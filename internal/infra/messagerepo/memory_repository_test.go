package messagerepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twilight-hud/internal/domain/messaging"
)

func TestMemoryRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2024, 6, 21, 18, 0, 0, 0, time.UTC)

	first := messaging.Message{ID: "a", Body: "one", Status: messaging.StatusPending, SendAt: base.Add(time.Hour), CreatedAt: base}
	second := messaging.Message{ID: "b", Body: "two", Status: messaging.StatusPending, SendAt: base.Add(time.Minute), CreatedAt: base.Add(time.Second)}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	require.Error(t, repo.Save(ctx, first))

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, ids(pending))

	second.Status = messaging.StatusSent
	second.SID = "SM1"
	require.NoError(t, repo.Update(ctx, second))
	require.Error(t, repo.Update(ctx, messaging.Message{ID: "missing"}))

	pending, err = repo.ListPending(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, ids(pending))

	all, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ids(all))
	require.Equal(t, "SM1", all[0].SID)
}

func ids(msgs []messaging.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}
