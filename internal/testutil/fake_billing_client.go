package testutil

import (
	"context"
	"sync"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/billing"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/changelimit"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/plan"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/proration"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/tax"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/shopspring/decimal"
)

// FakeBillingClient is an in-memory billing.Client.
// Set the exported fields to shape answers; the *Err fields force failures.
type FakeBillingClient struct {
	mu sync.Mutex

	Snapshots map[string]*subscription.Snapshot
	Plans     plan.Catalog
	Limits    map[string]*changelimit.State
	// TaxRatePercent is applied by CalculateTax
	TaxRatePercent decimal.Decimal
	Preview        *proration.ProrationResult
	ChangeResult   *billing.ChangeResponse

	SnapshotErr error
	PlansErr    error
	LimitsErr   error
	TaxErr      error
	PreviewErr  error
	ChangeErr   error

	// Block makes GetProrationPreview wait for ctx to end
	BlockPreview bool

	calls          map[string]int
	ChangeRequests []billing.ChangeRequest
}

func NewFakeBillingClient() *FakeBillingClient {
	return &FakeBillingClient{
		Snapshots:      map[string]*subscription.Snapshot{},
		Limits:         map[string]*changelimit.State{},
		TaxRatePercent: decimal.NewFromInt(8),
		calls:          map[string]int{},
	}
}

func (f *FakeBillingClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

// Calls returns how many times the named endpoint was called
func (f *FakeBillingClient) Calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

func (f *FakeBillingClient) GetSubscriptionStatus(_ context.Context, organizationID string) (*subscription.Snapshot, error) {
	f.record(billing.EndpointSubscriptionStatus)
	if f.SnapshotErr != nil {
		return nil, f.SnapshotErr
	}
	s, ok := f.Snapshots[organizationID]
	if !ok {
		return nil, ierr.NewError("subscription not found").Mark(ierr.ErrNotFound)
	}
	return s, nil
}

func (f *FakeBillingClient) ListPlans(context.Context) (plan.Catalog, error) {
	f.record(billing.EndpointPlans)
	if f.PlansErr != nil {
		return nil, f.PlansErr
	}
	return f.Plans, nil
}

func (f *FakeBillingClient) CalculateTax(_ context.Context, req billing.TaxRequest) (*tax.Quote, error) {
	f.record(billing.EndpointCalculateTax)
	if f.TaxErr != nil {
		return nil, f.TaxErr
	}
	return tax.NewPercentageQuote(req.Amount, f.TaxRatePercent, req.StateCode)
}

func (f *FakeBillingClient) GetProrationPreview(ctx context.Context, _ billing.PreviewRequest) (*proration.ProrationResult, error) {
	f.record(billing.EndpointProrationPreview)
	if f.BlockPreview {
		<-ctx.Done()
		return nil, ierr.WithError(ctx.Err()).Mark(ierr.ErrUnavailable)
	}
	if f.PreviewErr != nil {
		return nil, f.PreviewErr
	}
	return f.Preview, nil
}

func (f *FakeBillingClient) GetSubscriptionLimits(_ context.Context, organizationID string) (*changelimit.State, error) {
	f.record(billing.EndpointSubscriptionLimits)
	if f.LimitsErr != nil {
		return nil, f.LimitsErr
	}
	l, ok := f.Limits[organizationID]
	if !ok {
		return nil, ierr.NewError("limits not found").Mark(ierr.ErrNotFound)
	}
	return l, nil
}

func (f *FakeBillingClient) ChangeSubscription(_ context.Context, req billing.ChangeRequest) (*billing.ChangeResponse, error) {
	f.record(billing.EndpointChangeSubscription)
	f.mu.Lock()
	f.ChangeRequests = append(f.ChangeRequests, req)
	f.mu.Unlock()
	if f.ChangeErr != nil {
		return nil, f.ChangeErr
	}
	if f.ChangeResult != nil {
		return f.ChangeResult, nil
	}
	return &billing.ChangeResponse{Status: "completed", PlanID: req.PlanID}, nil
}
