package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/pricing", MigrateURL("postgres://u:p@db:5432/pricing"))
	require.Equal(t, "pgx5://db/pricing?sslmode=disable", MigrateURL("postgresql://db/pricing?sslmode=disable"))
	require.Equal(t, "pgx5://db/pricing", MigrateURL("pgx5://db/pricing"))
}

func TestEmbeddedMigrationsOrdered(t *testing.T) {
	src, err := newMigrationSource()
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	first, err := src.First()
	require.NoError(t, err)
	require.Equal(t, uint(1), first)
	next, err := src.Next(first)
	require.NoError(t, err)
	require.Equal(t, uint(2), next)
}

func TestLimiterAgainstRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewLimiterStore(client)
	require.NoError(t, err)
	lim, err := NewLimiter(store, "2-M")
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		res, err := lim.Get(ctx, "203.0.113.7")
		require.NoError(t, err)
		require.False(t, res.Reached)
	}
	res, err := lim.Get(ctx, "203.0.113.7")
	require.NoError(t, err)
	require.True(t, res.Reached)
}

func TestNewLimiterRejectsBadRate(t *testing.T) {
	_, err := NewLimiter(nil, "lots")
	require.Error(t, err)
}

func TestAsynqRedisOpt(t *testing.T) {
	opt, err := AsynqRedisOpt("redis://localhost:6379/2")
	require.NoError(t, err)
	require.NotNil(t, opt)
}
