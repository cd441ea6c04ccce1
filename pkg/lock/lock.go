// Package lock serializes work on a shared key across service instances.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when the key stays held by someone else for the whole
// retry window.
var ErrLocked = errors.New("resource is locked")

type Locker interface {
	// Acquire blocks until key is held or the retry window closes. The returned
	// release func is always safe to call.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type redisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &redisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
	}
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lk, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return func() {}, fmt.Errorf("%w: %s", ErrLocked, key)
	}
	if err != nil {
		return func() {}, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	return func() {
		// the request context may already be cancelled here
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = lk.Release(ctx)
	}, nil
}

type noopLocker struct{}

// NewNoopLocker is used when Redis is not configured; the settlement SQL is
// conditional on its own so correctness does not depend on the lock.
func NewNoopLocker() Locker {
	return noopLocker{}
}

func (noopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
