package testutil

import (
	"context"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/cache"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/changelimit"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/plan"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	logger  *logger.Logger
	config  *config.Configuration
	cache   *cache.InMemoryCache
	billing *FakeBillingClient
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.config.Logging.Level = types.LogLevelInfo
	s.config.Proration.ServerPreviewTimeout = 100 * time.Millisecond
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.now = time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC)
	s.cache = cache.NewInMemoryCache(s.config)
	s.billing = NewFakeBillingClient()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.cache.Flush(s.ctx)
}

// SeedOrganization registers a subscription that started ageDays before GetNow and its limits
func (s *BaseServiceTestSuite) SeedOrganization(organizationID, planID string, amountPaid, taxPaid int64, ageDays int, limits *changelimit.State) *subscription.Snapshot {
	snapshot := &subscription.Snapshot{
		OrganizationID: organizationID,
		PlanID:         planID,
		Status:         "active",
		AmountPaid:     lo.ToPtr(decimal.NewFromInt(amountPaid)),
		TaxPaid:        lo.ToPtr(decimal.NewFromInt(taxPaid)),
		StartDate:      s.now.Add(-time.Duration(ageDays) * 24 * time.Hour),
		DurationMonths: 1,
	}
	s.billing.Snapshots[organizationID] = snapshot
	if limits != nil {
		s.billing.Limits[organizationID] = limits
	}
	return snapshot
}

// SeedPlans registers the default catalog
func (s *BaseServiceTestSuite) SeedPlans() plan.Catalog {
	s.billing.Plans = plan.Catalog{
		{ID: "plan_starter", Name: "Starter", Amount: lo.ToPtr(decimal.NewFromInt(100)), MaxDrivers: 10, DurationMonths: 1},
		{ID: "plan_growth", Name: "Growth", Amount: lo.ToPtr(decimal.NewFromInt(300)), MaxDrivers: 50, DurationMonths: 1},
		{ID: "plan_fleet", Name: "Fleet", Amount: lo.ToPtr(decimal.NewFromInt(500)), MaxDrivers: 200, DurationMonths: 1},
	}
	return s.billing.Plans
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetCache returns the per test cache
func (s *BaseServiceTestSuite) GetCache() *cache.InMemoryCache {
	return s.cache
}

// GetBilling returns the fake Billing API
func (s *BaseServiceTestSuite) GetBilling() *FakeBillingClient {
	return s.billing
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// Clock returns a clock frozen at GetNow
func (s *BaseServiceTestSuite) Clock() func() time.Time {
	return func() time.Time { return s.now }
}
