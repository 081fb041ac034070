// Package heightcache caches the current chain height per currency to
// avoid redundant explorer queries while polling address batches.
package heightcache

import (
	"context"
	"sync"
	"time"

	"github.com/mkrogh/explorerwatch/internal/core/domain"
)

// DefaultTTL is the freshness window for a cached height.
const DefaultTTL = 180 * time.Second

// FetchFunc issues a provider-specific height query.
type FetchFunc func(ctx context.Context) (int64, error)

// Store is a per-currency height cache with a freshness window. 0 means
// unknown and is never cached.
type Store interface {
	Get(ctx context.Context, currency string, fetch FetchFunc) int64
	Invalidate(ctx context.Context, currency string)
}

// Cache keeps one ChainHeight per currency inside a freshness window.
// Failed or non-integer fetches resolve to 0 (unknown) and are not
// cached, so the next call retries upstream.
type Cache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]domain.ChainHeight

	nowFunc func() time.Time
}

// New creates a cache with the given TTL. A ttl of 0 uses DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]domain.ChainHeight),
		nowFunc: time.Now,
	}
}

// Get returns the cached height for a currency if fetched within the TTL,
// otherwise calls fetch. The returned height is 0 when unknown; callers
// must not derive confirmations from it.
func (c *Cache) Get(ctx context.Context, currency string, fetch FetchFunc) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	if entry, ok := c.entries[currency]; ok && now.Sub(entry.FetchedAt) < c.ttl {
		return entry.Height
	}

	height, err := fetch(ctx)
	if err != nil || height <= 0 {
		return 0
	}

	c.entries[currency] = domain.ChainHeight{
		Currency:  currency,
		Height:    height,
		FetchedAt: now,
	}
	return height
}

// Invalidate drops the cached height for a currency.
func (c *Cache) Invalidate(_ context.Context, currency string) {
	c.mu.Lock()
	delete(c.entries, currency)
	c.mu.Unlock()
}
