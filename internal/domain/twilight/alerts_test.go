package twilight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAlertCheckerFiresEachThresholdOnce(t *testing.T) {
	end := time.Date(2024, 6, 21, 21, 20, 0, 0, time.UTC)
	checker := NewAlertChecker(nil)

	alert, ok := checker.Check(end.Add(-30*time.Minute-10*time.Second), end)
	require.True(t, ok)
	require.Equal(t, 30, alert.Minutes)

	_, ok = checker.Check(end.Add(-30*time.Minute-5*time.Second), end)
	require.False(t, ok)

	_, ok = checker.Check(end.Add(-25*time.Minute), end)
	require.False(t, ok)

	alert, ok = checker.Check(end.Add(-20*time.Minute-59*time.Second), end)
	require.True(t, ok)
	require.Equal(t, 20, alert.Minutes)
}

func TestAlertCheckerDropsSkippedMinute(t *testing.T) {
	end := time.Date(2024, 6, 21, 21, 20, 0, 0, time.UTC)
	checker := NewAlertChecker(nil)

	_, ok := checker.Check(end.Add(-11*time.Minute-30*time.Second), end)
	require.False(t, ok)
	_, ok = checker.Check(end.Add(-9*time.Minute-30*time.Second), end)
	require.False(t, ok)
}

func TestAlertCheckerResetsForNewEnd(t *testing.T) {
	end := time.Date(2024, 6, 21, 21, 20, 0, 0, time.UTC)
	checker := NewAlertChecker([]int{10})

	_, ok := checker.Check(end.Add(-10*time.Minute), end)
	require.True(t, ok)

	next := end.Add(24 * time.Hour)
	_, ok = checker.Check(next.Add(-10*time.Minute), next)
	require.True(t, ok)
}

func TestAlertCheckerIgnoresMissingWindow(t *testing.T) {
	_, ok := NewAlertChecker(nil).Check(time.Now(), time.Time{})
	require.False(t, ok)
}
