package utils

import (
	"context" // Context for Redis operations
	"time"    // Window durations

	"github.com/redis/go-redis/v9" // Redis client
)

// RateLimiter counts attempts per key in fixed windows stored in Redis
type RateLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewRateLimiter allows limit attempts per window for each key
func NewRateLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: int64(limit), window: window, prefix: prefix}
}

// Allow records one attempt for key and reports whether it is within the limit.
// The counter and its expiry are set in one MULTI block; EXPIRE NX only starts
// the window on a key that has no TTL yet, so later attempts do not extend it.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k) // Count this attempt
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= l.limit, nil
}

// Reset clears the counter for key
func (l *RateLimiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, l.prefix+key).Err() // Delete key from Redis
}
