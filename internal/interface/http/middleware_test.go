package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twilight-hud/internal/infra/config"
)

func TestBucketLimiterRefills(t *testing.T) {
	now := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	limiter := newBucketLimiter(config.RateLimitConfig{RequestsPerMinute: 60, Burst: 1}, func() time.Time { return now })

	require.True(t, limiter.allow("ip:10.0.0.1"))
	require.False(t, limiter.allow("ip:10.0.0.1"))
	require.True(t, limiter.allow("ip:10.0.0.2"))

	now = now.Add(time.Second)
	require.True(t, limiter.allow("ip:10.0.0.1"))
}

func TestBucketLimiterSweepsIdleCallers(t *testing.T) {
	now := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	limiter := newBucketLimiter(config.RateLimitConfig{RequestsPerMinute: 1, Burst: 1}, func() time.Time { return now })

	require.True(t, limiter.allow("ip:10.0.0.1"))
	now = now.Add(10 * time.Minute)
	require.True(t, limiter.allow("sub:kiosk"))
	require.Len(t, limiter.buckets, 1)
}

func TestBucketLimiterBurstFloor(t *testing.T) {
	limiter := newBucketLimiter(config.RateLimitConfig{RequestsPerMinute: 1}, time.Now)
	require.InDelta(t, 1.0, limiter.burst, 1e-9)
}
