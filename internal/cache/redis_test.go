package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	redisClient "github.com/Wizard254-ux/example-driver-portal-sub000/internal/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPlan struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
}

func newTestRedisCache(t *testing.T, clock *fakeClock) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.GetDefaultConfig()
	cfg.Cache.Type = "redis"
	cfg.Cache.StaleRetention = time.Hour

	c := NewRedisCache(redisClient.NewClientFromRedis(rdb, logger.NewNopLogger()), logger.NewNopLogger(), cfg)
	c.now = clock.Now
	return c, mr
}

func TestRedisCache_StoresEnvelopeWithRetention(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	c, mr := newTestRedisCache(t, clock)

	c.Set(ctx, "plans:v1:all", []cachedPlan{{ID: "basic", Amount: 100}}, 10*time.Minute)

	assert.Equal(t, 70*time.Minute, mr.TTL("plans:v1:all"))

	v, fresh, found := c.Get(ctx, "plans:v1:all")
	require.True(t, found)
	assert.True(t, fresh)
	assert.JSONEq(t, `[{"id":"basic","amount":100}]`, string(v.(Encoded)))

	clock.Advance(11 * time.Minute)
	_, fresh, found = c.Get(ctx, "plans:v1:all")
	assert.True(t, found)
	assert.False(t, fresh)
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t, &fakeClock{t: time.Now()})

	for _, key := range []string{"subscription:v1:org_1", "subscription:v1:org_2", "limits:v1:org_1"} {
		c.Set(ctx, key, cachedPlan{ID: key}, time.Minute)
	}

	c.DeleteByPrefix(ctx, "subscription:v1:org_1")
	assert.False(t, mr.Exists("subscription:v1:org_1"))
	assert.True(t, mr.Exists("subscription:v1:org_2"))

	c.Delete(ctx, "limits:v1:org_1")
	assert.False(t, mr.Exists("limits:v1:org_1"))

	c.Flush(ctx)
	assert.Empty(t, mr.Keys())
}

func TestRedisCache_DropsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t, &fakeClock{t: time.Now()})

	require.NoError(t, mr.Set("plans:v1:all", "not json"))
	_, _, found := c.Get(ctx, "plans:v1:all")
	assert.False(t, found)
	assert.False(t, mr.Exists("plans:v1:all"))
}
