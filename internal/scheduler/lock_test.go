package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client), mr
}

func TestRedisLocker_AcquireIsExclusive(t *testing.T) {
	locker, _ := newRedisLocker(t)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "sweep:2025-01-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.Acquire(ctx, "sweep:2025-01-01", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = locker.Acquire(ctx, "sweep:2025-01-02", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ExpiresAndReleases(t *testing.T) {
	locker, mr := newRedisLocker(t)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, locker.Release(ctx, "k"))
	ok, err = locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ErrorWhenRedisDown(t *testing.T) {
	locker, mr := newRedisLocker(t)
	mr.Close()

	_, err := locker.Acquire(context.Background(), "k", time.Minute)
	assert.Error(t, err)
}

func TestLocalLocker(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	locker := NewLocalLocker()
	locker.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := locker.Acquire(ctx, "k", time.Hour)
	assert.True(t, ok)
	ok, _ = locker.Acquire(ctx, "k", time.Hour)
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	ok, _ = locker.Acquire(ctx, "k", time.Hour)
	assert.True(t, ok)

	require.NoError(t, locker.Release(ctx, "k"))
	ok, _ = locker.Acquire(ctx, "k", time.Hour)
	assert.True(t, ok)
}
