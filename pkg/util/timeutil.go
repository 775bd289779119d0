package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Clock returns the current time; services take one so tests can pin it.
type Clock func() time.Time

// SecondsSinceMidnight returns the wall-clock seconds elapsed in t's day.
func SecondsSinceMidnight(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
