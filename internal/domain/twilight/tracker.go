package twilight

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultMinInterval = 60 * time.Second
	defaultBackoffStep = 30 * time.Second
	defaultMaxInterval = 300 * time.Second
)

// Outcome describes what a Refresh call did.
type Outcome int

const (
	// OutcomeSkipped means the throttle interval had not elapsed.
	OutcomeSkipped Outcome = iota
	// OutcomeFetched means a fresh window replaced the cache.
	OutcomeFetched
	// OutcomeCached means the fetch failed and the previous window is served.
	OutcomeCached
	// OutcomeFailed means the fetch failed and there is nothing to serve.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFetched:
		return "fetched"
	case OutcomeCached:
		return "cached"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Tracker owns the cached window and the throttle/backoff policy wrapped
// around FetchWithRetries. It is not safe for concurrent use; Service
// serializes access.
type Tracker struct {
	source      Source
	store       CacheStore
	logger      *slog.Logger
	retry       RetryPolicy
	minInterval time.Duration
	backoffStep time.Duration
	maxInterval time.Duration

	window      *Window
	fetchedAt   time.Time
	lastAttempt time.Time
	interval    time.Duration
	failures    int
}

// NewTracker builds a tracker; zero durations fall back to 60s/30s/300s.
func NewTracker(cfg Config, source Source, store CacheStore, logger *slog.Logger) *Tracker {
	t := &Tracker{
		source:      source,
		store:       store,
		logger:      logger,
		retry:       cfg.Retry.normalized(),
		minInterval: cfg.MinInterval,
		backoffStep: cfg.BackoffStep,
		maxInterval: cfg.MaxInterval,
	}
	if t.minInterval <= 0 {
		t.minInterval = defaultMinInterval
	}
	if t.backoffStep < 0 {
		t.backoffStep = defaultBackoffStep
	}
	if t.maxInterval <= 0 {
		t.maxInterval = defaultMaxInterval
	}
	if t.maxInterval < t.minInterval {
		t.maxInterval = t.minInterval
	}
	t.interval = t.minInterval
	return t
}

// Restore loads the persisted window as a fallback. It never touches the
// throttle, so the first Refresh still fetches.
func (t *Tracker) Restore(ctx context.Context) {
	if t.store == nil {
		return
	}
	cached, ok, err := t.store.Load(ctx)
	if err != nil {
		t.logger.Warn("twilight cache load failed", "error", err)
		return
	}
	if !ok {
		return
	}
	w := cached.Window
	t.window = &w
	t.fetchedAt = cached.FetchedAt
	t.logger.Info("twilight cache restored", "fetched_at", cached.FetchedAt)
}

// Due reports whether the throttle interval has elapsed at now.
func (t *Tracker) Due(now time.Time) bool {
	return t.lastAttempt.IsZero() || now.Sub(t.lastAttempt) >= t.interval
}

// Invalidate forgets the last attempt so the next Refresh fetches.
func (t *Tracker) Invalidate() {
	t.lastAttempt = time.Time{}
}

// Refresh fetches when due and applies the cache policy. An error is only
// returned when the fetch failed and no cached window exists.
func (t *Tracker) Refresh(ctx context.Context, now time.Time, q Query) (Outcome, error) {
	if !t.Due(now) {
		return OutcomeSkipped, nil
	}
	t.lastAttempt = now

	policy := t.retry
	policy.Quiet = t.failures > 0
	window, err := FetchWithRetries(ctx, t.source, q, policy, t.logger)
	if err == nil {
		t.window = &window
		t.fetchedAt = now
		t.failures = 0
		t.interval = t.minInterval
		t.persist(ctx, Cached{Window: window, FetchedAt: now})
		return OutcomeFetched, nil
	}

	t.failures++
	t.interval = t.backoffInterval()
	if t.window != nil {
		t.logger.Warn("twilight api unavailable, serving cached window", "failures", t.failures, "next_fetch_in", t.interval.String())
		return OutcomeCached, nil
	}
	t.logger.Error("twilight fetch failed with no cached window", "failures", t.failures, "error", err)
	return OutcomeFailed, err
}

func (t *Tracker) backoffInterval() time.Duration {
	next := t.minInterval + time.Duration(t.failures)*t.backoffStep
	if next > t.maxInterval {
		return t.maxInterval
	}
	return next
}

func (t *Tracker) persist(ctx context.Context, cached Cached) {
	if t.store == nil {
		return
	}
	if err := t.store.Save(ctx, cached); err != nil {
		t.logger.Warn("twilight cache save failed", "error", err)
	}
}

// Window returns the cached window, if any.
func (t *Tracker) Window() (Window, bool) {
	if t.window == nil {
		return Window{}, false
	}
	return *t.window, true
}

// FetchedAt is the time of the last successful fetch.
func (t *Tracker) FetchedAt() time.Time { return t.fetchedAt }

// Failures is the consecutive failure counter.
func (t *Tracker) Failures() int { return t.failures }

// Interval is the current throttle interval.
func (t *Tracker) Interval() time.Duration { return t.interval }

// NextFetchIn is the time left before the throttle allows another attempt.
func (t *Tracker) NextFetchIn(now time.Time) time.Duration {
	if t.lastAttempt.IsZero() {
		return 0
	}
	left := t.interval - now.Sub(t.lastAttempt)
	if left < 0 {
		return 0
	}
	return left
}
