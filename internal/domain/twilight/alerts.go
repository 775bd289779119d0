package twilight

import (
	"context"
	"log/slog"
	"time"
)

// DefaultThresholds are the minutes-before-nautical-end that raise an alert.
var DefaultThresholds = []int{30, 20, 10}

// AlertChecker raises each threshold alert at most once per nautical end.
// Minutes are truncated, so a check that skips a whole minute drops that
// threshold rather than raising it late.
type AlertChecker struct {
	thresholds []int
	end        time.Time
	fired      map[int]bool
}

// NewAlertChecker uses DefaultThresholds when none are given.
func NewAlertChecker(thresholds []int) *AlertChecker {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	return &AlertChecker{
		thresholds: append([]int(nil), thresholds...),
		fired:      map[int]bool{},
	}
}

// Check returns an alert when the whole minutes left before end equal a
// threshold that has not fired yet for this end.
func (a *AlertChecker) Check(now, end time.Time) (Alert, bool) {
	if end.IsZero() {
		return Alert{}, false
	}
	if !end.Equal(a.end) {
		a.end = end
		a.fired = map[int]bool{}
	}
	minutes := int(end.Sub(now) / time.Minute)
	for _, threshold := range a.thresholds {
		if minutes != threshold || a.fired[threshold] {
			continue
		}
		a.fired[threshold] = true
		return Alert{Minutes: threshold, NauticalEnd: end, RaisedAt: now}, true
	}
	return Alert{}, false
}

// LogSink writes alerts to the structured log.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink builds a sink logging under the alerts component.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "twilight.alerts")}
}

// Notify implements AlertSink.
func (s *LogSink) Notify(_ context.Context, alert Alert) {
	s.logger.Warn("nautical twilight approaching", "minutes", alert.Minutes, "nautical_end", alert.NauticalEnd)
}
