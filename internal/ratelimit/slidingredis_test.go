package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLimiterSlidingWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	limiter := Limiter{Client: client, Prefix: "test:", Now: func() time.Time { return now }}
	ctx := context.Background()
	window := time.Minute

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "key", window, 2)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, 1-i, d.Remaining)
		now = now.Add(10 * time.Second)
	}

	d, err := limiter.Allow(ctx, "key", window, 2)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Zero(t, d.Remaining)
	require.Equal(t, time.Date(2026, 4, 1, 10, 1, 0, 0, time.UTC), d.ResetAt.UTC())

	// The first attempt slides out of the window; the second and the rejected
	// third remain.
	now = now.Add(45 * time.Second)
	d, err = limiter.Allow(ctx, "key", window, 3)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Zero(t, d.Remaining)
}

func TestLimiterWithoutClientAllows(t *testing.T) {
	d, err := Limiter{}.Allow(context.Background(), "k", time.Second, 1)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}
