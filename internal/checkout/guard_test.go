package checkout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/origen-putumayo/storefront/pkg/config"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
	"github.com/origen-putumayo/storefront/pkg/redis"
)

func newTestGuard(t *testing.T, cfg config.CheckoutConfig) (*miniredis.Miniredis, *SubmissionGuard) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return mr, NewSubmissionGuard(redis.Wrap(raw), cfg)
}

func guardConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		InFlightTTL: 30 * time.Second,
		PhoneLimit:  2,
		PhoneWindow: time.Hour,
		IPLimit:     3,
		IPWindow:    10 * time.Minute,
		PIIHashKey:  "test-key",
	}
}

func TestGuardRejectsConcurrentSubmission(t *testing.T) {
	_, guard := newTestGuard(t, guardConfig())
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "session-1")
	require.NoError(t, err)

	_, err = guard.Acquire(ctx, "session-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = guard.Acquire(ctx, "session-2")
	require.NoError(t, err, "other sessions are independent")

	release()
	again, err := guard.Acquire(ctx, "session-1")
	require.NoError(t, err)
	again()
}

func TestGuardInFlightKeyExpires(t *testing.T) {
	mr, guard := newTestGuard(t, guardConfig())
	ctx := context.Background()

	_, err := guard.Acquire(ctx, "session-1")
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)
	release, err := guard.Acquire(ctx, "session-1")
	require.NoError(t, err)
	release()
}

func TestGuardPhoneWindow(t *testing.T) {
	mr, guard := newTestGuard(t, guardConfig())
	ctx := context.Background()

	require.NoError(t, guard.Allow(ctx, "3101234567", "10.0.0.1"))
	require.NoError(t, guard.Allow(ctx, "3101234567", "10.0.0.2"))

	err := guard.Allow(ctx, "3101234567", "10.0.0.3")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeRateLimit, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ReasonTooManyOrders, details["reason"])

	for _, key := range mr.Keys() {
		assert.False(t, strings.Contains(key, "3101234567"), "raw phone leaked into key %s", key)
	}

	mr.FastForward(time.Hour + time.Second)
	require.NoError(t, guard.Allow(ctx, "3101234567", "10.0.0.4"))
}

func TestGuardIPWindow(t *testing.T) {
	_, guard := newTestGuard(t, guardConfig())
	ctx := context.Background()

	require.NoError(t, guard.Allow(ctx, "3100000001", "10.0.0.9"))
	require.NoError(t, guard.Allow(ctx, "3100000002", "10.0.0.9"))
	require.NoError(t, guard.Allow(ctx, "3100000003", "10.0.0.9"))

	err := guard.Allow(ctx, "3100000004", "10.0.0.9")
	require.Error(t, err)
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ReasonConnectionActivity, details["reason"])
}

func TestGuardRedisOutageIsDependencyError(t *testing.T) {
	mr, guard := newTestGuard(t, guardConfig())
	mr.Close()

	_, err := guard.Acquire(context.Background(), "session-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	err = guard.Allow(context.Background(), "3101234567", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestGuardDisabledWindows(t *testing.T) {
	_, guard := newTestGuard(t, config.CheckoutConfig{})
	for i := 0; i < 20; i++ {
		require.NoError(t, guard.Allow(context.Background(), "3101234567", "10.0.0.1"))
	}
}
