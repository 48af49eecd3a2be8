package cache

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL   = 30 * time.Second
	defaultLockRetry = 50 * time.Millisecond
)

// releaseScript deletes the lock only while it still holds our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// RedisLocker serializes work per key across processes with SET NX PX.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	token  func() string
}

type LockerOption func(*RedisLocker)

func WithLockTTL(ttl time.Duration) LockerOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func WithLockRetry(interval time.Duration) LockerOption {
	return func(l *RedisLocker) {
		if interval > 0 {
			l.retry = interval
		}
	}
}

func NewRedisLocker(client *redis.Client, opts ...LockerOption) *RedisLocker {
	l := &RedisLocker{
		client: client,
		ttl:    defaultLockTTL,
		retry:  defaultLockRetry,
		token:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	key = lockKey(key)
	token := l.token()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		// the caller's context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			log.Printf("[lock] release %s: %v", key, err)
		}
	}, nil
}

func lockKey(key string) string {
	return "lock:" + key
}

var _ availability.Locker = (*RedisLocker)(nil)
