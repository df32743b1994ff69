package redis

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it still carries our token, so an expired lock
// re-acquired by another worker is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock implements usecase.RunLock with SET NX and an owner token per key.
type RunLock struct {
	client *redis.Client
	prefix string

	mu     sync.Mutex
	tokens map[string]string
}

// NewRunLock creates a new RunLock.
func NewRunLock(client *redis.Client) *RunLock {
	return &RunLock{
		client: client,
		prefix: "banky:lock:",
		tokens: make(map[string]string),
	}
}

// Acquire takes key for ttl. It returns false when the key is held by someone else.
func (l *RunLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := ulid.Make().String()

	ok, err := l.client.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil || !ok {
		return false, err
	}

	l.mu.Lock()
	l.tokens[key] = token
	l.mu.Unlock()
	return true, nil
}

// Release frees key if this instance still owns it.
func (l *RunLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()

	if !ok {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{l.prefix + key}, token).Err()
}
