package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mergington-be/internal/domain"
	"mergington-be/pkg/redis"
)

// LocalLocker serializes callers per key within one process
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyedLock)}
}

// Acquire blocks until key is free or ctx is done
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, lock)
		return nil, fmt.Errorf("%w: %s", domain.ErrLockTimeout, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.ch
			l.release(key, lock)
		})
	}, nil
}

func (l *LocalLocker) release(key string, lock *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, key)
	}
}

// size reports how many keys are tracked
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

const (
	redisLockMinBackoff = 5 * time.Millisecond
	redisLockMaxBackoff = 100 * time.Millisecond
	redisUnlockTimeout  = 2 * time.Second
)

// RedisLocker serializes callers per key across instances sharing a Redis
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

// Acquire polls SET NX PX with backoff until the key is taken or ctx is done.
// The lock expires after ttl even if the holder never releases it.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := l.client.KeyBuilder.KeySignupLock(key)
	token := uuid.NewString()
	backoff := redisLockMinBackoff

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", domain.ErrLockTimeout, key)
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %s", domain.ErrLockTimeout, key)
		}
		if backoff *= 2; backoff > redisLockMaxBackoff {
			backoff = redisLockMaxBackoff
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), redisUnlockTimeout)
			defer cancel()

			released, err := l.client.DeleteIfEquals(ctx, redisKey, token)
			if err != nil {
				l.logger.Error("Failed to release signup lock", zap.String("activity", key), zap.Error(err))
				return
			}
			if !released {
				l.logger.Warn("Signup lock expired before release", zap.String("activity", key), zap.Duration("ttl", l.ttl))
			}
		})
	}, nil
}
