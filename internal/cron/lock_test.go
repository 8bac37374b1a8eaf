package cron

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/origen-putumayo/storefront/pkg/redis"
)

func newLockClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return mr, redis.Wrap(raw)
}

func TestRedisLockIsExclusive(t *testing.T) {
	mr, client := newLockClient(t)
	ctx := context.Background()

	first, err := NewRedisLock(client, "origen:maintenance:lock:test", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(client, "origen:maintenance:lock:test", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("origen:maintenance:lock:test"))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, second.Release(ctx))
	assert.True(t, mr.Exists("origen:maintenance:lock:test"), "non-owner must not release")

	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists("origen:maintenance:lock:test"))
}

func TestRedisLockLeavesTakenOverLease(t *testing.T) {
	mr, client := newLockClient(t)
	ctx := context.Background()

	lock, err := NewRedisLock(client, "origen:maintenance:lock:test", time.Minute)
	require.NoError(t, err)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, mr.Set("origen:maintenance:lock:test", "other-host/123"))
	require.NoError(t, lock.Release(ctx))

	value, err := mr.Get("origen:maintenance:lock:test")
	require.NoError(t, err)
	assert.Equal(t, "other-host/123", value)
}

func TestNewRedisLockValidates(t *testing.T) {
	_, client := newLockClient(t)
	_, err := NewRedisLock(client, "", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(nil, "k", time.Minute)
	assert.Error(t, err)
}
