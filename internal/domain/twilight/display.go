package twilight

import (
	"fmt"
	"time"

	"github.com/yanqian/twilight-hud/pkg/util"
)

// CountdownState is the time left before a target instant.
type CountdownState struct {
	Remaining time.Duration
	Reached   bool
}

// Countdown computes the remaining time from now to end, whole seconds only.
func Countdown(now, end time.Time) CountdownState {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return CountdownState{Reached: true}
	}
	return CountdownState{Remaining: remaining.Truncate(time.Second)}
}

// String renders HH:MM:SS, or "reached" once the target has passed.
func (c CountdownState) String() string {
	if c.Reached {
		return "reached"
	}
	total := int(c.Remaining / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// DayProgress is the integer percentage of the local day elapsed at t.
func DayProgress(t time.Time) int {
	return util.SecondsSinceMidnight(t) * 100 / 86400
}

// FormatRange renders "HH:MM - HH:MM" in loc.
func FormatRange(start, end time.Time, loc *time.Location) string {
	return start.In(loc).Format("15:04") + " - " + end.In(loc).Format("15:04")
}
