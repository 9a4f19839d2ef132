package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a Redis-backed response cache for read-only query endpoints.
// Every key carries a dataset generation counter, so an import invalidates
// all cached responses at once without scanning keys.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client with a response TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

const generationKey = "analytics:dataset:generation"

func (c *Cache) generation(ctx context.Context) int64 {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		return 0
	}
	return gen
}

// Key builds a cache key from the request path and query, bound to the
// current dataset generation.
func (c *Cache) Key(ctx context.Context, pathAndQuery string) string {
	return fmt.Sprintf("analytics:resp:%d:%s", c.generation(ctx), pathAndQuery)
}

// Get returns the cached response body for a key, or false on a miss. Redis
// errors degrade to a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a response body under a key. Failures are ignored; the cache
// is an optimization, never a dependency.
func (c *Cache) Set(ctx context.Context, key string, body []byte) {
	c.client.Set(ctx, key, body, c.ttl)
}

// Invalidate bumps the dataset generation, orphaning all cached responses.
// The orphans expire on their own TTL.
func (c *Cache) Invalidate(ctx context.Context) {
	c.client.Incr(ctx, generationKey)
}
