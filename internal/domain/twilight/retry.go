package twilight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/twilight-hud/pkg/errors"
)

const (
	defaultAttempts = 3
	defaultTimeout  = 8 * time.Second
)

// RetryPolicy bounds a single fetch.
type RetryPolicy struct {
	Attempts int
	Timeout  time.Duration
	// Quiet demotes per-attempt logs to debug, used once failures pile up.
	Quiet bool
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = defaultAttempts
	}
	if p.Timeout <= 0 {
		p.Timeout = defaultTimeout
	}
	return p
}

// FetchWithRetries calls src up to policy.Attempts times, each call bounded by
// policy.Timeout. The first success is returned and the remaining attempts are
// abandoned; when every attempt fails the last error is returned.
func FetchWithRetries(ctx context.Context, src Source, q Query, policy RetryPolicy, logger *slog.Logger) (Window, error) {
	if src == nil {
		return Window{}, apperrors.Wrap(apperrors.CodeConfig, "twilight source not configured", nil)
	}
	policy = policy.normalized()
	logAttempt := logger.Info
	logFailure := logger.Warn
	if policy.Quiet {
		logAttempt = logger.Debug
		logFailure = logger.Debug
	}

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		logAttempt("twilight fetch attempt", "attempt", attempt, "of", policy.Attempts)

		window, err := fetchOnce(ctx, src, q, policy.Timeout)
		if err == nil {
			return window, nil
		}
		lastErr = err
		logFailure("twilight fetch attempt failed", "attempt", attempt, "error", err)
	}
	return Window{}, apperrors.Wrap(apperrors.CodeTwilightUnavailable,
		fmt.Sprintf("twilight fetch failed after %d attempts", policy.Attempts), lastErr)
}

func fetchOnce(ctx context.Context, src Source, q Query, timeout time.Duration) (Window, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	window, err := src.Fetch(attemptCtx, q)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			return Window{}, fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return Window{}, err
	}
	return window, nil
}
