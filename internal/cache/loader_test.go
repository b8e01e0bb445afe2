package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrLoad(t *testing.T) {
	errBackend := errors.New("billing api down")

	backends := map[string]func(t *testing.T, clock *fakeClock) Cache{
		"inmemory": func(t *testing.T, clock *fakeClock) Cache { return newTestInMemoryCache(t, clock) },
		"redis": func(t *testing.T, clock *fakeClock) Cache {
			c, _ := newTestRedisCache(t, clock)
			return c
		},
	}

	for name, newCache := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := &fakeClock{t: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
			c := newCache(t, clock)
			key := GenerateKey(PrefixPlans, "all")

			calls := 0
			load := func(context.Context) ([]cachedPlan, error) {
				calls++
				return []cachedPlan{{ID: "basic", Amount: 100 * calls}}, nil
			}

			got, fresh, err := GetOrLoad(ctx, c, key, time.Minute, load)
			require.NoError(t, err)
			assert.True(t, fresh)
			assert.Equal(t, 100, got[0].Amount)

			got, fresh, err = GetOrLoad(ctx, c, key, time.Minute, load)
			require.NoError(t, err)
			assert.True(t, fresh)
			assert.Equal(t, 100, got[0].Amount)
			assert.Equal(t, 1, calls)

			// expired entries are reloaded
			clock.Advance(2 * time.Minute)
			got, fresh, err = GetOrLoad(ctx, c, key, time.Minute, load)
			require.NoError(t, err)
			assert.True(t, fresh)
			assert.Equal(t, 200, got[0].Amount)

			// stale entries are served when the source fails
			clock.Advance(2 * time.Minute)
			got, fresh, err = GetOrLoad(ctx, c, key, time.Minute, func(context.Context) ([]cachedPlan, error) {
				return nil, errBackend
			})
			require.NoError(t, err)
			assert.False(t, fresh)
			assert.Equal(t, 200, got[0].Amount)

			// no entry and a failing source surface the error
			_, _, err = GetOrLoad(ctx, c, GenerateKey(PrefixPlans, "other"), time.Minute, func(context.Context) ([]cachedPlan, error) {
				return nil, errBackend
			})
			assert.ErrorIs(t, err, errBackend)
		})
	}
}

func TestGetOrLoad_NilCacheAlwaysLoads(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		v, fresh, err := GetOrLoad(context.Background(), nil, "k", time.Minute, func(context.Context) (int, error) {
			calls++
			return 7, nil
		})
		require.NoError(t, err)
		assert.True(t, fresh)
		assert.Equal(t, 7, v)
	}
	assert.Equal(t, 2, calls)
}

func TestGetOrLoad_WrongTypeReloads(t *testing.T) {
	ctx := context.Background()
	c := newTestInMemoryCache(t, &fakeClock{t: time.Now()})
	c.Set(ctx, "k", "not an int", time.Minute)

	v, fresh, err := GetOrLoad(ctx, c, "k", time.Minute, func(context.Context) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, 3, v)
}
