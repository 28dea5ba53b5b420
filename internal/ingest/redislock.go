package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "ingest:source:"

// releaseScript deletes the lease only when the holder token still matches,
// so an expired lease taken over by another instance is never released here.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLock is a SourceLocker backed by a Redis SET NX lease, for deployments
// where more than one instance may ingest the same source key.
type RedisLock struct {
	client        redis.UniversalClient
	ttl           time.Duration
	retryInterval time.Duration
}

// NewRedisLock initializes a Redis-backed locker with sane defaults.
func NewRedisLock(client redis.UniversalClient) *RedisLock {
	return &RedisLock{
		client:        client,
		ttl:           2 * time.Minute,
		retryInterval: 250 * time.Millisecond,
	}
}

// WithTTL overrides the lease TTL. The TTL bounds how long a crashed holder
// can block other ingestions of the same source key.
func (l *RedisLock) WithTTL(ttl time.Duration) *RedisLock {
	if ttl > 0 {
		l.ttl = ttl
	}
	return l
}

// WithRetryInterval overrides the polling interval while waiting for a lease.
func (l *RedisLock) WithRetryInterval(interval time.Duration) *RedisLock {
	if interval > 0 {
		l.retryInterval = interval
	}
	return l
}

func (l *RedisLock) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("ingest: acquire source lease: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-time.After(l.retryInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
	}
	return release, nil
}
