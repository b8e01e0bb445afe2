package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	BillingAPI BillingAPIConfig `mapstructure:"billing_api" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Proration  ProrationConfig  `mapstructure:"proration"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

// BillingAPIConfig points at the authoritative billing backend
type BillingAPIConfig struct {
	BaseURL    string        `mapstructure:"base_url" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit  float64       `mapstructure:"rate_limit" validate:"gte=0"` // requests per second, 0 disables
	RateBurst  int           `mapstructure:"rate_burst" validate:"gte=0"`
}

type CacheConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Type           string        `mapstructure:"type" validate:"omitempty,oneof=inmemory redis"`
	StaleRetention time.Duration `mapstructure:"stale_retention"`
	SnapshotTTL    time.Duration `mapstructure:"snapshot_ttl"`
	PlansTTL       time.Duration `mapstructure:"plans_ttl"`
	TaxTTL         time.Duration `mapstructure:"tax_ttl"`
	LimitsTTL      time.Duration `mapstructure:"limits_ttl"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	UseTLS   bool          `mapstructure:"use_tls"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type ProrationConfig struct {
	// ServerPreviewTimeout bounds the wait for the authoritative preview before the local one is used
	ServerPreviewTimeout time.Duration `mapstructure:"server_preview_timeout"`
	DefaultStateCode     string        `mapstructure:"default_state_code"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/driverportal")

	v.SetEnvPrefix("DRIVERPORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override keys absent from the file
func setDefaults(v *viper.Viper) {
	defaults := GetDefaultConfig()
	v.SetDefault("deployment.mode", defaults.Deployment.Mode)
	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("billing_api.base_url", defaults.BillingAPI.BaseURL)
	v.SetDefault("billing_api.timeout", defaults.BillingAPI.Timeout)
	v.SetDefault("billing_api.max_retries", defaults.BillingAPI.MaxRetries)
	v.SetDefault("billing_api.rate_limit", defaults.BillingAPI.RateLimit)
	v.SetDefault("billing_api.rate_burst", defaults.BillingAPI.RateBurst)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.type", defaults.Cache.Type)
	v.SetDefault("cache.stale_retention", defaults.Cache.StaleRetention)
	v.SetDefault("cache.snapshot_ttl", defaults.Cache.SnapshotTTL)
	v.SetDefault("cache.plans_ttl", defaults.Cache.PlansTTL)
	v.SetDefault("cache.tax_ttl", defaults.Cache.TaxTTL)
	v.SetDefault("cache.limits_ttl", defaults.Cache.LimitsTTL)
	v.SetDefault("redis.host", defaults.Redis.Host)
	v.SetDefault("redis.port", defaults.Redis.Port)
	v.SetDefault("redis.password", defaults.Redis.Password)
	v.SetDefault("redis.db", defaults.Redis.DB)
	v.SetDefault("redis.use_tls", defaults.Redis.UseTLS)
	v.SetDefault("redis.pool_size", defaults.Redis.PoolSize)
	v.SetDefault("redis.timeout", defaults.Redis.Timeout)
	v.SetDefault("proration.server_preview_timeout", defaults.Proration.ServerPreviewTimeout)
	v.SetDefault("proration.default_state_code", defaults.Proration.DefaultStateCode)
	v.SetDefault("sentry.enabled", defaults.Sentry.Enabled)
	v.SetDefault("sentry.dsn", defaults.Sentry.DSN)
	v.SetDefault("sentry.environment", defaults.Sentry.Environment)
	v.SetDefault("sentry.sample_rate", defaults.Sentry.SampleRate)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running the CLI, tests, or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		BillingAPI: BillingAPIConfig{
			BaseURL:    "http://localhost:8000/api",
			Timeout:    10 * time.Second,
			MaxRetries: 2,
			RateLimit:  20,
			RateBurst:  40,
		},
		Cache: CacheConfig{
			Enabled:        true,
			Type:           "inmemory",
			StaleRetention: 30 * time.Minute,
			SnapshotTTL:    2 * time.Minute,
			PlansTTL:       30 * time.Minute,
			TaxTTL:         10 * time.Minute,
			LimitsTTL:      time.Minute,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			PoolSize: 10,
			Timeout:  5 * time.Second,
		},
		Proration: ProrationConfig{
			ServerPreviewTimeout: 3 * time.Second,
			DefaultStateCode:     "CA",
		},
		Sentry: SentryConfig{
			Environment: "local",
			SampleRate:  0.1,
		},
	}
}

// GetAddress returns the host:port pair of the redis server
func (c RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
