package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache adapts a Redis client to the Cache interface. It is the
// shared-cache backend: every application instance pointed at the same
// Redis sees the same entries, so one instance's fetch serves them all.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a cached value. Backend errors are reported as misses;
// the gateway treats a degraded cache as a miss and fetches upstream.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return value, true
}

// Set stores a value with the given TTL. TTL<=0 means no caching.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a cached value. Idempotent - no error on miss.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Ensure RedisCache implements Cache
var _ Cache = (*RedisCache)(nil)
