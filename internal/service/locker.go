package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/table-reservation/internal/model"
)

const (
	defaultLockTTL   = 10 * time.Second
	lockRetryBackoff = 25 * time.Millisecond
)

// ErrLockTimeout is returned when the allocation lock could not be taken
// before the context or the lock TTL ran out.
var ErrLockTimeout = errors.New("allocation lock timeout")

// Locker serialises the read-free-tables-then-write sequence for one
// date and sitting.  The returned unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// LockKey names the allocation pool of a date and sitting.  The day is
// taken in UTC, the same calendar day the store matches on.
func LockKey(date time.Time, service string) string {
	return "alloc:" + date.UTC().Format(model.DateLayout) + ":" + service
}

// LocalLocker is an in-process keyed mutex.  It is used when Redis is not
// available; it only protects a single API instance.  A key's entry is
// dropped once no holder or waiter references it.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &localLock{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
		return func() {
			<-entry.ch
			l.release(key, entry)
		}, nil
	case <-ctx.Done():
		l.release(key, entry)
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
	}
}

func (l *LocalLocker) release(key string, entry *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

// releaseScript deletes the key only while it still holds our owner token.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisLocker implements Locker using Redis SETNX + TTL so that several API
// instances share one allocation lock per date and sitting.
type RedisLocker struct {
	client redisLockClient
	ttl    time.Duration
}

// redisLockClient is the subset of *redis.Client the locker uses.
type redisLockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// NewRedisLocker constructs a Redis-backed locker.  A non-positive ttl falls
// back to ten seconds.
func NewRedisLocker(client redisLockClient, ttl time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}, nil
}

// Lock polls SETNX until it owns the key, the context ends or one TTL has
// elapsed.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	owner := uuid.NewString()
	deadline := time.Now().Add(l.ttl)
	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("setnx: %w", err)
		}
		if ok {
			return func() {
				// released even when ctx is already cancelled
				_ = releaseScript.Run(context.Background(), l.client, []string{key}, owner).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-time.After(lockRetryBackoff):
		}
	}
}
