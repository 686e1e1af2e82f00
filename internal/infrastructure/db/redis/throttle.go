package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed sign-ins per canonical username.
// Key format: login_failures:<normalized_username>
type LoginThrottle struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
}

const (
	defaultMaxFailures = 5
	defaultLockout     = 15 * time.Minute
)

// NewLoginThrottle creates a LoginThrottle that locks a username out after
// maxFailures failures within window. Non-positive values fall back to
// 5 failures in 15 minutes.
func NewLoginThrottle(client *redis.Client, maxFailures int, window time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if window <= 0 {
		window = defaultLockout
	}
	return &LoginThrottle{client: client, maxFailures: int64(maxFailures), window: window}
}

// Locked reports whether the username has reached the failure limit.
func (t *LoginThrottle) Locked(ctx context.Context, normalizedUsername string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(normalizedUsername)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n >= t.maxFailures, nil
}

// RecordFailure increments the counter; the window starts at the first failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, normalizedUsername string) error {
	key := t.key(normalizedUsername)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful sign-in.
func (t *LoginThrottle) Reset(ctx context.Context, normalizedUsername string) error {
	if err := t.client.Del(ctx, t.key(normalizedUsername)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(normalizedUsername string) string {
	return fmt.Sprintf("login_failures:%s", normalizedUsername)
}
