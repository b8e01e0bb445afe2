package config

import (
	"testing"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, types.ModeLocal, cfg.Deployment.Mode)
	assert.Equal(t, "localhost:6379", cfg.Redis.GetAddress())
}

func TestValidateRejectsBadBillingAPI(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.BillingAPI.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.BillingAPI.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.Cache.Type = "memcached"
	assert.Error(t, cfg.Validate())
}

func TestNewConfigReadsEnvironment(t *testing.T) {
	t.Setenv("DRIVERPORTAL_BILLING_API_BASE_URL", "https://billing.example.com/api")
	t.Setenv("DRIVERPORTAL_CACHE_PLANS_TTL", "45m")
	t.Setenv("DRIVERPORTAL_DEPLOYMENT_MODE", "api")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://billing.example.com/api", cfg.BillingAPI.BaseURL)
	assert.Equal(t, 45*time.Minute, cfg.Cache.PlansTTL)
	assert.Equal(t, types.ModeAPI, cfg.Deployment.Mode)
}
