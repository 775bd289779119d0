package twilight

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *recordingSink) Notify(_ context.Context, a Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

func TestServiceTickPublishesSnapshot(t *testing.T) {
	now := time.Date(2024, 6, 21, 20, 19, 57, 0, time.UTC)
	cfg := testConfig()
	cfg.Location = time.UTC
	svc := NewService(cfg, &flakySource{window: sampleWindow()}, nil, nil, discardLogger()).
		WithClock(func() time.Time { return now })

	snap := svc.Tick(context.Background())
	require.Equal(t, "20:19:57", snap.Clock)
	require.Equal(t, "03:10 - 20:30", snap.Civil)
	require.Equal(t, "02:20 - 21:20", snap.Nautical)
	require.Equal(t, "01:00:03", snap.Countdown)
	require.False(t, snap.NauticalReached)
	require.False(t, snap.Stale)
	require.Equal(t, snap, svc.Snapshot())
}

func TestServiceTickWithoutDataReportsError(t *testing.T) {
	now := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	cfg := testConfig()
	cfg.Location = time.UTC
	src := &flakySource{failures: -1}
	svc := NewService(cfg, src, nil, nil, discardLogger()).
		WithClock(func() time.Time { return now })

	snap := svc.Tick(context.Background())
	require.Nil(t, snap.Window)
	require.Contains(t, snap.Error, "upstream down")
	require.Equal(t, 1, snap.Failures)

	// The next tick is throttled and must keep showing the failure.
	now = now.Add(time.Second)
	snap = svc.Tick(context.Background())
	require.Equal(t, 3, src.Calls())
	require.Nil(t, snap.Window)
	require.Contains(t, snap.Error, "upstream down")
	require.Equal(t, snap, svc.Snapshot())
}

func TestServiceErrorClearsAfterSuccessfulFetch(t *testing.T) {
	now := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	cfg := testConfig()
	cfg.Location = time.UTC
	src := &flakySource{failures: 3, window: sampleWindow()}
	svc := NewService(cfg, src, nil, nil, discardLogger()).
		WithClock(func() time.Time { return now })

	snap := svc.Tick(context.Background())
	require.NotEmpty(t, snap.Error)

	now = now.Add(2 * time.Minute)
	snap = svc.Tick(context.Background())
	require.NotNil(t, snap.Window)
	require.Empty(t, snap.Error)

	snap, outcome, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeFetched, outcome)
	require.Empty(t, snap.Error)
}

func TestServiceCheckAlertsNotifiesSinks(t *testing.T) {
	window := sampleWindow()
	now := window.NauticalEnd.Add(-10*time.Minute - 30*time.Second)
	sink := &recordingSink{}
	cfg := testConfig()
	cfg.Location = time.UTC
	svc := NewService(cfg, &flakySource{window: window}, nil, []AlertSink{sink}, discardLogger()).
		WithClock(func() time.Time { return now })

	_, ok := svc.CheckAlerts(context.Background())
	require.False(t, ok, "no window yet")

	svc.Tick(context.Background())
	alert, ok := svc.CheckAlerts(context.Background())
	require.True(t, ok)
	require.Equal(t, 10, alert.Minutes)
	require.Len(t, sink.alerts, 1)
	require.Equal(t, 10, svc.Snapshot().LastAlert.Minutes)

	_, ok = svc.CheckAlerts(context.Background())
	require.False(t, ok)
}

func TestServiceRefreshBypassesThrottle(t *testing.T) {
	src := &flakySource{window: sampleWindow()}
	cfg := testConfig()
	cfg.Location = time.UTC
	svc := NewService(cfg, src, nil, nil, discardLogger())

	svc.Tick(context.Background())
	svc.Tick(context.Background())
	require.Equal(t, 1, src.Calls())

	_, outcome, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeFetched, outcome)
	require.Equal(t, 2, src.Calls())
}

func TestServiceStartRestoresCache(t *testing.T) {
	store := &memoryCache{cached: Cached{Window: sampleWindow(), FetchedAt: time.Unix(0, 0).UTC()}, ok: true}
	cfg := testConfig()
	cfg.Location = time.UTC
	svc := NewService(cfg, &flakySource{failures: -1}, store, nil, discardLogger())

	svc.Start(context.Background())
	require.NotNil(t, svc.Snapshot().Window)

	snap := svc.Tick(context.Background())
	require.True(t, snap.Stale)
	require.Empty(t, snap.Error)
}
