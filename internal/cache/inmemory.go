package cache

import (
	"context"
	"strings"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration is the default freshness window for cache entries
const DefaultExpiration = 30 * time.Minute

// DefaultCleanupInterval is how often expired items are removed from the cache
const DefaultCleanupInterval = 10 * time.Minute

// InMemoryCache implements the Cache interface using github.com/patrickmn/go-cache
type InMemoryCache struct {
	cache          *goCache.Cache
	enabled        bool
	staleRetention time.Duration
	now            func() time.Time
}

// NewInMemoryCache creates a new InMemoryCache instance
func NewInMemoryCache(cfg *config.Configuration) *InMemoryCache {
	return &InMemoryCache{
		cache:          goCache.New(DefaultExpiration, DefaultCleanupInterval),
		enabled:        cfg.Cache.Enabled,
		staleRetention: cfg.Cache.StaleRetention,
		now:            time.Now,
	}
}

// Get retrieves a value from the cache
func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool, bool) {
	if !c.enabled {
		return nil, false, false
	}
	raw, ok := c.cache.Get(key)
	if !ok {
		return nil, false, false
	}
	e, ok := raw.(entry)
	if !ok {
		return nil, false, false
	}
	return e.Value, e.fresh(c.now()), true
}

// Set adds a value to the cache with the specified freshness
func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.enabled {
		return
	}
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	c.cache.Set(key, entry{Value: value, ExpiresAt: c.now().Add(ttl)}, ttl+c.staleRetention)
}

// Delete removes a key from the cache
func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

// DeleteByPrefix removes all keys with the given prefix
func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

// Flush removes all items from the cache
func (c *InMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}
