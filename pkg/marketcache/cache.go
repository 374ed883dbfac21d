package marketcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const opTimeout = 3 * time.Second

// Cache keeps market projections (news, stock snapshots) in Redis with a
// short TTL. Misses and Redis failures both read as "not cached"; the
// caller falls through to the analysis service either way.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a Redis-backed market cache.
func New(addr, password string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

// Get loads a cached value into out. Returns false on miss, decode
// failure, or Redis error.
func (c *Cache) Get(key string, out any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// Set stores a value with the cache TTL. Failures are ignored; a cold
// cache only costs an extra provider call.
func (c *Cache) Set(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
}

// NewsKey and StockKey namespace cache entries by company.
func NewsKey(company string) string  { return "market:news:" + company }
func StockKey(company string) string { return "market:stock:" + company }
