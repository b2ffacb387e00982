// Package redislock provides a best-effort distributed lock on Redis keys.
// The worker takes a lock per job id before processing so a second worker
// that somehow sees the same job skips it instead of double-spending
// provider calls. The database status flip remains the source of truth.
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker acquires and releases per-key locks.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Locker. ttl bounds how long a crashed holder can block a key.
func New(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Locker{client: client, ttl: ttl}
}

// Acquire takes the lock for key. It returns false when another holder owns
// it. Redis being unreachable is treated as acquired so a cache outage does
// not stall the queue.
func (l *Locker) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.name(key), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return true, err
	}
	return ok, nil
}

// Release frees the lock for key.
func (l *Locker) Release(ctx context.Context, key string) {
	l.client.Del(ctx, l.name(key))
}

func (l *Locker) name(key string) string {
	return fmt.Sprintf("lock:job:%s", key)
}
