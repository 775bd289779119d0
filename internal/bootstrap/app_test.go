package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twilight-hud/internal/domain/media"
	"github.com/yanqian/twilight-hud/internal/domain/messaging"
	"github.com/yanqian/twilight-hud/internal/domain/story"
	"github.com/yanqian/twilight-hud/internal/domain/twilight"
	"github.com/yanqian/twilight-hud/internal/infra/config"
	"github.com/yanqian/twilight-hud/internal/infra/messagerepo"
	"github.com/yanqian/twilight-hud/internal/infra/twilightstore"
	"github.com/yanqian/twilight-hud/internal/scheduler"
)

type countingSource struct {
	calls atomic.Int32
}

func (c *countingSource) Fetch(context.Context, twilight.Query) (twilight.Window, error) {
	c.calls.Add(1)
	base := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	return twilight.Window{
		CivilStart:    base.Add(4 * time.Hour),
		CivilEnd:      base.Add(21 * time.Hour),
		NauticalStart: base.Add(3 * time.Hour),
		NauticalEnd:   base.Add(22 * time.Hour),
	}, nil
}

func newTestApp(t *testing.T, src twilight.Source) *App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		HTTP: config.HTTPConfig{Address: "127.0.0.1:0"},
		Schedule: config.ScheduleConfig{
			ClockEvery: 10 * time.Millisecond,
			AlertEvery: 10 * time.Millisecond,
			StoryEvery: time.Minute,
		},
	}
	sched := scheduler.New(logger)
	twilightSvc := twilight.NewService(twilight.Config{
		Location: time.UTC,
		Retry:    twilight.RetryPolicy{Attempts: 1, Timeout: time.Second},
	}, src, twilightstore.NewMemoryStore(), nil, logger)
	mediaSvc := media.NewService(media.Config{}, nil, nil, nil, logger)
	messageSvc := messaging.NewService(messaging.Credentials{}, nil, messagerepo.NewMemoryRepository(), sched, logger)
	storySvc := story.NewService(story.Config{}, nil, nil, nil, nil, nil, logger)
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	return NewApp(cfg, logger, server, sched, twilightSvc, mediaSvc, messageSvc, storySvc)
}

func TestAppRunsJobsUntilCancelled(t *testing.T) {
	src := &countingSource{}
	app := newTestApp(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, nil) }()

	require.Eventually(t, func() bool {
		return app.twilight.Snapshot().Window != nil
	}, 2*time.Second, 10*time.Millisecond)
	require.GreaterOrEqual(t, src.calls.Load(), int32(1))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestAppStopsWhenTerminalUIExits(t *testing.T) {
	app := newTestApp(t, &countingSource{})
	uiErr := errors.New("terminal closed")

	var gotSource *twilight.Service
	err := app.Run(context.Background(), func(_ context.Context, source *twilight.Service, _ *media.Service) error {
		gotSource = source
		return uiErr
	})
	require.ErrorIs(t, err, uiErr)
	require.Same(t, app.twilight, gotSource)
}
