package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CheckLock is a per-route mutex backed by Redis SET NX with a TTL, so a
// crashed holder cannot block a route forever.
// Key format: lock:route:<route_id>, value: the holder's token.
type CheckLock struct {
	client *redis.Client
}

// NewCheckLock creates a CheckLock wrapping the given Redis client.
func NewCheckLock(client *redis.Client) *CheckLock {
	return &CheckLock{client: client}
}

// TryAcquire reports whether the lock was free and is now held by the caller.
func (l *CheckLock) TryAcquire(ctx context.Context, routeID int64, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(routeID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("check lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock early if token still holds it. A hold that already
// expired and was taken by someone else is left alone.
func (l *CheckLock) Release(ctx context.Context, routeID int64, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(routeID)}, token).Err(); err != nil {
		return fmt.Errorf("check lock release: %w", err)
	}
	return nil
}

func (l *CheckLock) key(routeID int64) string {
	return fmt.Sprintf("lock:route:%d", routeID)
}

type localHold struct {
	token   string
	expires time.Time
}

// LocalLock is the in-process CheckLock used when no Redis is configured.
type LocalLock struct {
	mu   sync.Mutex
	held map[int64]localHold
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[int64]localHold)}
}

func (l *LocalLock) TryAcquire(_ context.Context, routeID int64, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if h, ok := l.held[routeID]; ok && now.Before(h.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[routeID] = localHold{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (l *LocalLock) Release(_ context.Context, routeID int64, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.held[routeID]; ok && h.token == token {
		delete(l.held, routeID)
	}
	return nil
}
