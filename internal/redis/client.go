package redis

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const (
	connectMaxRetries  = 4
	connectInitialWait = 250 * time.Millisecond
)

// Client wraps Redis client functionality
type Client struct {
	rdb *redis.Client
	log *logger.Logger
}

// NewClientFromConfig connects only when the redis cache backend is selected and returns nil otherwise
func NewClientFromConfig(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	if !cfg.Cache.Enabled || cfg.Cache.Type != "redis" {
		return nil, nil
	}
	return NewClient(context.Background(), cfg.Redis, log)
}

// NewClient creates a Redis client and waits for the server with exponential backoff
func NewClient(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*Client, error) {
	opts := &redis.Options{
		Addr:         cfg.GetAddress(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		PoolSize:     cfg.PoolSize,
	}

	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = connectInitialWait
	policy := backoff.WithContext(backoff.WithMaxRetries(b, connectMaxRetries), ctx)

	err := backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warnw("redis not reachable yet", "address", opts.Addr, "error", err)
			return err
		}
		return nil
	}, policy)
	if err != nil {
		_ = rdb.Close()
		return nil, ierr.WithError(err).
			WithHintf("failed to connect to redis at %s", opts.Addr).
			Mark(ierr.ErrUnavailable)
	}

	log.Infow("connected to redis", "address", opts.Addr, "db", cfg.DB)

	return &Client{rdb: rdb, log: log}, nil
}

// NewClientFromRedis wraps an existing go-redis client, used by tests
func NewClientFromRedis(rdb *redis.Client, log *logger.Logger) *Client {
	return &Client{rdb: rdb, log: log}
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis client connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the Redis connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
