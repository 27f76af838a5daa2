package rediskv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const limiterPrefix = "login-attempts-"

// LoginLimiter counts consecutive failed logins per key (email plus client
// address) in a fixed redis window. Exhausting the budget extends the key's
// TTL to the block duration; a successful login clears it.
type LoginLimiter struct {
	rdb      redis.Cmdable
	max      int
	window   time.Duration
	blockFor time.Duration
}

func NewLoginLimiter(rdb redis.Cmdable, max int, window time.Duration, blockFor time.Duration) *LoginLimiter {
	return &LoginLimiter{rdb: rdb, max: max, window: window, blockFor: blockFor}
}

func limiterKey(key string) string {
	return limiterPrefix + key
}

// Allow reports whether another login attempt may proceed
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	val, err := l.rdb.Get(ctx, limiterKey(key)).Result()

	switch {
	case errors.Is(err, redis.Nil):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("limiter get error: %w", err)
	}

	attempts, err := strconv.Atoi(val)
	if err != nil {
		return false, fmt.Errorf("limiter corrupt counter: %w", err)
	}

	return attempts < l.max, nil
}

// Fail records a failed attempt and starts the block once the budget is spent
func (l *LoginLimiter) Fail(ctx context.Context, key string) error {
	attempts, err := l.rdb.Incr(ctx, limiterKey(key)).Result()
	if err != nil {
		return fmt.Errorf("limiter incr error: %w", err)
	}

	ttl := l.window
	if int(attempts) >= l.max {
		ttl = l.blockFor
	}
	if err := l.rdb.Expire(ctx, limiterKey(key), ttl).Err(); err != nil {
		return fmt.Errorf("limiter expire error: %w", err)
	}

	return nil
}

// Reset clears the counter after a successful login
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	err := l.rdb.Del(ctx, limiterKey(key)).Err()
	if err != nil {
		return fmt.Errorf("limiter del error: %w", err)
	}
	return nil
}
