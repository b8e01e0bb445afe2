package cache

import (
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	redisClient "github.com/Wizard254-ux/example-driver-portal-sub000/internal/redis"
)

// NewCache selects the backend configured under cache.type.
// A nil redis client falls back to the in-memory backend.
func NewCache(cfg *config.Configuration, log *logger.Logger, client *redisClient.Client) Cache {
	if !cfg.Cache.Enabled {
		log.Info("cache disabled, every read goes to the billing api")
		return NewInMemoryCache(cfg)
	}

	if cfg.Cache.Type == "redis" {
		if client != nil {
			log.Infow("using redis cache", "address", cfg.Redis.GetAddress())
			return NewRedisCache(client, log, cfg)
		}
		log.Warn("redis cache requested without a redis client, using in-memory cache")
	}

	log.Infow("using in-memory cache", "stale_retention", cfg.Cache.StaleRetention)
	return NewInMemoryCache(cfg)
}
