package service

import (
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/billing"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/cache"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/proration"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Cache  cache.Cache

	// Billing is the authoritative Billing API
	Billing billing.Client

	ProrationCalculator proration.Calculator
	DowngradePolicy     proration.DowngradePolicy

	// Clock defaults to time.Now
	Clock func() time.Time
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	cache cache.Cache,
	billingClient billing.Client,
) ServiceParams {
	return ServiceParams{
		Logger:              logger,
		Config:              config,
		Cache:               cache,
		Billing:             billingClient,
		ProrationCalculator: proration.NewCalculator(),
		DowngradePolicy:     proration.NewDowngradePolicy(),
		Clock:               time.Now,
	}
}

func (p ServiceParams) now() time.Time {
	if p.Clock == nil {
		return time.Now().UTC()
	}
	return p.Clock().UTC()
}
