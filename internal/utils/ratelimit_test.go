package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, limit int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRateLimiter(rdb, "rl:login:", limit, time.Minute), mr
}

func TestRateLimiterAllow(t *testing.T) {
	l, mr := newLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted separately")

	assert.Equal(t, time.Minute, mr.TTL("rl:login:10.0.0.1"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "window expired")
}

func TestRateLimiterWindowIsNotExtended(t *testing.T) {
	l, mr := newLimiter(t, 5)
	ctx := context.Background()

	_, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	mr.FastForward(40 * time.Second)
	_, err = l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, mr.TTL("rl:login:ip"))
}

func TestRateLimiterRepairsCounterWithoutExpiry(t *testing.T) {
	l, mr := newLimiter(t, 1)
	require.NoError(t, mr.Set("rl:login:ip", "7")) // Left behind without a TTL

	ok, err := l.Allow(context.Background(), "ip")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("rl:login:ip"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = l.Allow(context.Background(), "ip")
	require.NoError(t, err)
	assert.True(t, ok, "the lockout ends with the window")
}

func TestRateLimiterReset(t *testing.T) {
	l, mr := newLimiter(t, 1)
	ctx := context.Background()

	_, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	require.NoError(t, l.Reset(ctx, "ip"))
	assert.False(t, mr.Exists("rl:login:ip"))

	ok, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiterRedisDown(t *testing.T) {
	l, mr := newLimiter(t, 1)
	mr.Close()
	_, err := l.Allow(context.Background(), "ip")
	assert.Error(t, err)
}
