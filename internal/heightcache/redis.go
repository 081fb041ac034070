package heightcache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "explorerwatch:block_height:"

// RedisCache stores heights in Redis with the freshness window as key
// TTL, so the 180s window is shared across processes the way the legacy
// transient store shared it.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache wraps an existing Redis client. A ttl of 0 uses
// DefaultTTL.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get implements Store. Redis errors degrade to a direct fetch; a failed
// fetch resolves to 0 and leaves no key behind.
func (c *RedisCache) Get(ctx context.Context, currency string, fetch FetchFunc) int64 {
	key := redisKeyPrefix + currency

	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if height, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil && height > 0 {
			return height
		}
	}

	height, err := fetch(ctx)
	if err != nil || height <= 0 {
		return 0
	}

	c.rdb.Set(ctx, key, strconv.FormatInt(height, 10), c.ttl)
	return height
}

// Invalidate implements Store.
func (c *RedisCache) Invalidate(ctx context.Context, currency string) {
	c.rdb.Del(ctx, redisKeyPrefix+currency)
}
