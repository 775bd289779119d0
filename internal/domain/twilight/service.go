package twilight

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yanqian/twilight-hud/pkg/util"
)

// Service exposes twilight state to the scheduler, the control API and the HUD.
type Service struct {
	cfg     Config
	loc     *time.Location
	tracker *Tracker
	alerts  *AlertChecker
	sinks   []AlertSink
	logger  *slog.Logger
	now     util.Clock

	// tickMu serializes tracker access; mu guards the published snapshot so
	// readers never wait on a slow fetch.
	tickMu    sync.Mutex
	fetchErr  error
	mu        sync.RWMutex
	snapshot  Snapshot
	lastAlert *Alert
}

// NewService wires the tracker, alert checker and sinks.
func NewService(cfg Config, source Source, store CacheStore, sinks []AlertSink, logger *slog.Logger) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	cfg.Location = loc
	logger = logger.With("component", "twilight.service")
	return &Service{
		cfg:     cfg,
		loc:     loc,
		tracker: NewTracker(cfg, source, store, logger),
		alerts:  NewAlertChecker(cfg.Thresholds),
		sinks:   sinks,
		logger:  logger,
		now:     util.NowUTC,
	}
}

// WithClock overrides the time source, used by tests.
func (s *Service) WithClock(clock util.Clock) *Service {
	s.now = clock
	return s
}

// Start restores the persisted window and publishes an initial snapshot.
func (s *Service) Start(ctx context.Context) {
	s.tickMu.Lock()
	s.tracker.Restore(ctx)
	s.publish(s.now().In(s.loc))
	s.tickMu.Unlock()
}

// Tick refreshes the window when the throttle allows and republishes the
// display state.
func (s *Service) Tick(ctx context.Context) Snapshot {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	now := s.now().In(s.loc)
	outcome, err := s.tracker.Refresh(ctx, now, s.query(now))
	s.recordOutcome(outcome, err)
	return s.publish(now)
}

// Refresh bypasses the throttle and fetches immediately.
func (s *Service) Refresh(ctx context.Context) (Snapshot, Outcome, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	now := s.now().In(s.loc)
	s.tracker.Invalidate()
	outcome, err := s.tracker.Refresh(ctx, now, s.query(now))
	s.recordOutcome(outcome, err)
	return s.publish(now), outcome, err
}

// recordOutcome keeps the last fetch error until a fetch succeeds; throttled
// ticks leave it untouched. Callers hold tickMu.
func (s *Service) recordOutcome(outcome Outcome, err error) {
	switch {
	case err != nil:
		s.fetchErr = err
	case outcome == OutcomeFetched:
		s.fetchErr = nil
	}
}

// CheckAlerts evaluates the thresholds against the cached nautical end and
// notifies every sink when one fires.
func (s *Service) CheckAlerts(ctx context.Context) (Alert, bool) {
	s.tickMu.Lock()
	window, ok := s.tracker.Window()
	if !ok {
		s.tickMu.Unlock()
		return Alert{}, false
	}
	now := s.now().In(s.loc)
	alert, fired := s.alerts.Check(now, window.NauticalEnd)
	s.tickMu.Unlock()
	if !fired {
		return Alert{}, false
	}

	s.mu.Lock()
	s.lastAlert = &alert
	s.snapshot.LastAlert = &alert
	s.mu.Unlock()

	for _, sink := range s.sinks {
		sink.Notify(ctx, alert)
	}
	return alert, true
}

// Snapshot returns the last published display state.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Service) query(now time.Time) Query {
	return Query{
		Latitude:  s.cfg.Latitude,
		Longitude: s.cfg.Longitude,
		Date:      now.Format("2006-01-02"),
	}
}

func (s *Service) publish(now time.Time) Snapshot {
	snap := Snapshot{
		Clock:       now.Format("15:04:05"),
		Date:        now.Format("2006-01-02"),
		DayProgress: DayProgress(now),
		Failures:    s.tracker.Failures(),
	}
	if window, ok := s.tracker.Window(); ok {
		local := window.In(s.loc)
		snap.Window = &local
		snap.Civil = FormatRange(local.CivilStart, local.CivilEnd, s.loc)
		snap.Nautical = FormatRange(local.NauticalStart, local.NauticalEnd, s.loc)
		countdown := Countdown(now, local.NauticalEnd)
		snap.Countdown = countdown.String()
		snap.NauticalReached = countdown.Reached
		fetchedAt := s.tracker.FetchedAt()
		if !fetchedAt.IsZero() {
			snap.FetchedAt = &fetchedAt
		}
		snap.Stale = s.tracker.Failures() > 0
	} else if s.fetchErr != nil {
		snap.Error = s.fetchErr.Error()
	}
	if next := s.tracker.NextFetchIn(now); next > 0 {
		snap.NextFetchIn = next.Truncate(time.Second).String()
	}

	s.mu.Lock()
	snap.LastAlert = s.lastAlert
	s.snapshot = snap
	s.mu.Unlock()
	return snap
}
