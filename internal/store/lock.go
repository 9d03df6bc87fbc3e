package store

import (
	"context"
	"fmt"
	"time"
)

func lockKey(name string) string {
	return "lock:" + name
}

// AcquireLock attempts an atomic set-if-absent on the named lock with the
// given time-to-live. It returns true only for the caller that won the
// lock; losers must treat the guarded operation as already in progress.
func (c *Client) AcquireLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockKey(name), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// ReleaseLock deletes the named lock. Safe to call whether or not the lock
// is still held; the TTL bounds the lifetime either way.
func (c *Client) ReleaseLock(ctx context.Context, name string) error {
	if err := c.rdb.Del(ctx, lockKey(name)).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}
