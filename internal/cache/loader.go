package cache

import (
	"context"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/metrics"
)

// LoadFunc fetches a value from its source of truth
type LoadFunc[T any] func(ctx context.Context) (T, error)

// GetOrLoad returns the cached value for key when it is fresh, otherwise calls load and caches the result.
// If load fails while a stale entry exists, the stale entry is returned with fresh=false and no error.
// A nil cache always loads.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load LoadFunc[T]) (value T, fresh bool, err error) {
	if c == nil {
		value, err = load(ctx)
		return value, err == nil, err
	}

	prefix := keyPrefix(key)
	span := StartCacheSpan(ctx, prefix, "get_or_load", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	var (
		stale    T
		hasStale bool
	)

	if raw, isFresh, found := c.Get(ctx, key); found {
		if decoded, ok := decode[T](raw); ok {
			if isFresh {
				metrics.CacheLookupsTotal.WithLabelValues(prefix, metrics.CacheResultFresh).Inc()
				SetSpanSuccess(span)
				return decoded, true, nil
			}
			stale, hasStale = decoded, true
			metrics.CacheLookupsTotal.WithLabelValues(prefix, metrics.CacheResultStale).Inc()
		} else {
			logger.GetLogger().WithContext(ctx).Warnw("cache entry has unexpected type, reloading", "key", key)
			c.Delete(ctx, key)
		}
	} else {
		metrics.CacheLookupsTotal.WithLabelValues(prefix, metrics.CacheResultMiss).Inc()
	}

	value, err = load(ctx)
	if err != nil {
		if hasStale {
			logger.GetLogger().WithContext(ctx).Warnw("serving stale cache entry after load failure",
				"key", key,
				"error", err,
			)
			metrics.CacheLookupsTotal.WithLabelValues(prefix, metrics.CacheResultStaleServed).Inc()
			SetSpanSuccess(span)
			return stale, false, nil
		}
		SetSpanError(span, err)
		return value, false, err
	}

	c.Set(ctx, key, value, ttl)
	SetSpanSuccess(span)
	return value, true, nil
}

func decode[T any](raw interface{}) (T, bool) {
	var zero T
	switch v := raw.(type) {
	case T:
		return v, true
	case Encoded:
		var out T
		if err := json.Unmarshal(v, &out); err != nil {
			return zero, false
		}
		return out, true
	default:
		return zero, false
	}
}
