package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	redisClient "github.com/Wizard254-ux/example-driver-portal-sub000/internal/redis"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

const (
	// ScanCount determines how many keys to scan at once when using SCAN
	ScanCount = 100

	deleteBatchSize = 500
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// redisEntry keeps the value as raw JSON so it can be decoded into the caller's type
type redisEntry struct {
	Value     jsoniter.RawMessage `json:"value"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// RedisCache implements the Cache interface using Redis.
// Values are stored as JSON; Get returns them as Encoded and GetOrLoad decodes them.
type RedisCache struct {
	client         *redis.Client
	log            *logger.Logger
	enabled        bool
	staleRetention time.Duration
	now            func() time.Time
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(client *redisClient.Client, log *logger.Logger, cfg *config.Configuration) *RedisCache {
	return &RedisCache{
		client:         client.GetClient(),
		log:            log,
		enabled:        cfg.Cache.Enabled,
		staleRetention: cfg.Cache.StaleRetention,
		now:            time.Now,
	}
}

// Get retrieves a value from the cache
func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool, bool) {
	if !c.enabled {
		return nil, false, false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Errorw("redis GET error", "key", key, "error", err)
		}
		return nil, false, false
	}

	var e redisEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.Warnw("dropping undecodable cache entry", "key", key, "error", err)
		c.Delete(ctx, key)
		return nil, false, false
	}

	return Encoded(e.Value), c.now().Before(e.ExpiresAt), true
}

// Set adds a value to the cache with the specified freshness
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.enabled {
		return
	}
	if ttl <= 0 {
		ttl = DefaultExpiration
	}

	var payload []byte
	switch v := value.(type) {
	case Encoded:
		payload = []byte(v)
	default:
		b, err := json.Marshal(value)
		if err != nil {
			c.log.Errorw("failed to marshal cache value", "key", key, "error", err)
			return
		}
		payload = b
	}

	body, err := json.Marshal(redisEntry{Value: payload, ExpiresAt: c.now().Add(ttl)})
	if err != nil {
		c.log.Errorw("failed to marshal cache entry", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, key, body, ttl+c.staleRetention).Err(); err != nil {
		c.log.Errorw("redis SET error", "key", key, "error", err)
	}
}

// Delete removes a key from the cache
func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Errorw("redis DEL error", "key", key, "error", err)
	}
}

// DeleteByPrefix removes all keys with the given prefix
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", ScanCount).Iterator()

	var keysToDelete []string
	for iter.Next(ctx) {
		keysToDelete = append(keysToDelete, iter.Val())
		if len(keysToDelete) >= deleteBatchSize {
			if err := c.client.Del(ctx, keysToDelete...).Err(); err != nil {
				c.log.Errorw("redis DEL batch error", "prefix", prefix, "error", err)
			}
			keysToDelete = keysToDelete[:0]
		}
	}

	if len(keysToDelete) > 0 {
		if err := c.client.Del(ctx, keysToDelete...).Err(); err != nil {
			c.log.Errorw("redis DEL batch error", "prefix", prefix, "error", err)
		}
	}

	if err := iter.Err(); err != nil {
		c.log.Errorw("redis SCAN error", "prefix", prefix, "error", err)
	}
}

// Flush removes all items from the cache
func (c *RedisCache) Flush(ctx context.Context) {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		c.log.Errorw("redis FLUSHDB error", "error", err)
	}
}
