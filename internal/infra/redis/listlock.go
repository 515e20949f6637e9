package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/innovast/followup/internal/lock"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL  = 10 * time.Second
	acquireStep     = 10 * time.Millisecond
	acquireStepMax  = 50 * time.Millisecond
	lockKeyTemplate = "listlock:%s"
)

// Owner-checked release so an expired lock reacquired by another writer is
// never deleted by the original holder.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ lock.Locker = (*ListLocker)(nil)

// ListLocker serializes distribution list mutations per list id across
// processes using a Redis SET NX mutex.
type ListLocker struct {
	client *goredis.Client
	ttl    time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	script *goredis.Script
}

func NewListLocker(client *goredis.Client) (*ListLocker, error) {
	return newListLocker(client, defaultLockTTL, sleepWithContext)
}

func newListLocker(
	client *goredis.Client,
	ttl time.Duration,
	sleepFn func(ctx context.Context, d time.Duration) error,
) (*ListLocker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if sleepFn == nil {
		sleepFn = sleepWithContext
	}

	return &ListLocker{
		client: client,
		ttl:    ttl,
		sleep:  sleepFn,
		script: releaseScript,
	}, nil
}

func (l *ListLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if l == nil || l.client == nil {
		return nil, fmt.Errorf("list locker is not initialized")
	}

	normalizedKey := strings.TrimSpace(key)
	if normalizedKey == "" {
		return nil, fmt.Errorf("lock key is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	redisKey := fmt.Sprintf(lockKeyTemplate, normalizedKey)
	token := uuid.NewString()

	backoff := acquireStep
	for {
		acquired, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire list lock: %w", err)
		}
		if acquired {
			break
		}

		if err := l.sleep(ctx, backoff); err != nil {
			return nil, err
		}

		backoff += acquireStep
		if backoff > acquireStepMax {
			backoff = acquireStepMax
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_, _ = l.script.Run(releaseCtx, l.client, []string{redisKey}, token).Result()
		})
	}
	return release, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
