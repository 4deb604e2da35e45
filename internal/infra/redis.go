package infra

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// NewLocker wraps the Redis client for distributed locks. Retention jobs use
// it as the single-flight guard: no two archival runs for the same job kind
// may overlap across instances.
func NewLocker(rdb *redis.Client) *redislock.Client {
	return redislock.New(rdb)
}

// JobLock holds an acquired single-flight lock.
type JobLock struct {
	lock *redislock.Lock
}

// AcquireJobLock tries to take the lock for one job kind without retrying —
// a held lock means another run is in flight and this one must be skipped.
func AcquireJobLock(ctx context.Context, locker *redislock.Client, jobKind string, ttl time.Duration) (*JobLock, error) {
	lock, err := locker.Obtain(ctx, "lock:jobs:"+jobKind, ttl, nil)
	if err != nil {
		return nil, err
	}
	return &JobLock{lock: lock}, nil
}

// Release frees the lock; safe to call after TTL expiry.
func (l *JobLock) Release(ctx context.Context) {
	_ = l.lock.Release(ctx)
}

// ErrLockHeld reports whether err means the lock is already taken.
func ErrLockHeld(err error) bool { return err == redislock.ErrNotObtained }
