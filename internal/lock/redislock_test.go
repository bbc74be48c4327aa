package lock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/lock"
)

func newLocker(t *testing.T) (lock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.Locker{R: client}, mr
}

func TestTryWithLockRejectsSecondHolder(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()
	const key = "pricing:shop:warm:lock"

	inner := errors.New("unreached")
	err := locker.TryWithLock(ctx, key, time.Second, func(ctx context.Context) error {
		require.True(t, mr.Exists(key))
		require.Equal(t, time.Second, mr.TTL(key))
		inner = locker.TryWithLock(ctx, key, time.Second, func(context.Context) error { return nil })
		return nil
	})
	require.NoError(t, err)
	require.ErrorIs(t, inner, lock.ErrNotAcquired)
	require.False(t, mr.Exists(key))
}

func TestTryWithLockReturnsCallbackErrorAndReleases(t *testing.T) {
	locker, mr := newLocker(t)
	boom := errors.New("warm failed")

	err := locker.TryWithLock(context.Background(), "k", 0, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("k"))
}

func TestReleaseKeepsForeignLock(t *testing.T) {
	locker, mr := newLocker(t)

	err := locker.TryWithLock(context.Background(), "k", time.Second, func(context.Context) error {
		// The lock expired and another worker took it over.
		return mr.Set("k", "someone-else")
	})
	require.NoError(t, err)
	got, err := mr.Get("k")
	require.NoError(t, err)
	require.Equal(t, "someone-else", got)
}

func TestTryWithLockValidatesArguments(t *testing.T) {
	ctx := context.Background()
	require.Error(t, lock.Locker{}.TryWithLock(ctx, "k", time.Second, func(context.Context) error { return nil }))

	locker, _ := newLocker(t)
	require.Error(t, locker.TryWithLock(ctx, "k", time.Second, nil))
}

func TestTryWithLockSurfacesRedisErrors(t *testing.T) {
	locker, mr := newLocker(t)
	mr.SetError("ERR redis down")

	called := false
	err := locker.TryWithLock(context.Background(), "k", time.Second, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, lock.ErrNotAcquired)
	require.False(t, called)
}
