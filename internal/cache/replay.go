package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayCache stores serialized generation responses keyed by a
// caller-supplied idempotency key, so a retried request replays the finished
// job instead of submitting a new one upstream. A nil cache is a no-op.
type ReplayCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReplayCache(client *redis.Client, ttl time.Duration) *ReplayCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ReplayCache{client: client, ttl: ttl}
}

func (c *ReplayCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil || key == "" {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.prefixed(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *ReplayCache) Store(ctx context.Context, key string, value []byte) {
	if c == nil || c.client == nil || key == "" || len(value) == 0 {
		return
	}
	c.client.Set(ctx, c.prefixed(key), value, c.ttl)
}

func (c *ReplayCache) prefixed(key string) string {
	return "relay:replay:" + key
}
