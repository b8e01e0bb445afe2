package plan

import (
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CancellationPlanID identifies the synthetic zero priced target used for cancellations
const CancellationPlanID = "cancel"

// TargetPlan is one entry of the Billing API plan catalog
type TargetPlan struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Amount         *decimal.Decimal `json:"amount"` // subtotal price, before tax
	MaxDrivers     int              `json:"max_drivers"`
	DurationMonths int              `json:"duration_months"`
}

// CancellationTarget models a cancellation as a move to a plan that costs nothing,
// so all remaining credit flows to the wallet.
func CancellationTarget() *TargetPlan {
	return &TargetPlan{
		ID:     CancellationPlanID,
		Name:   "Cancellation",
		Amount: lo.ToPtr(decimal.Zero),
	}
}

func (p *TargetPlan) Validate() error {
	if p == nil {
		return ierr.NewError("target plan is required").
			WithHint("Please select a plan").
			Mark(ierr.ErrValidation)
	}
	if p.Amount == nil {
		return ierr.NewError("target plan amount is required").
			WithHint("The selected plan has no price").
			WithReportableDetails(map[string]any{
				"plan_id": p.ID,
			}).
			Mark(ierr.ErrValidation)
	}
	if p.Amount.IsNegative() {
		return ierr.NewError("target plan amount must not be negative").
			WithHint("The selected plan has an invalid price").
			WithReportableDetails(map[string]any{
				"plan_id": p.ID,
				"amount":  p.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if p.DurationMonths < 0 {
		return ierr.NewError("target plan duration must not be negative").
			WithHint("The selected plan has an invalid duration").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetAmount returns the plan subtotal, zero when absent
func (p *TargetPlan) GetAmount() decimal.Decimal {
	return lo.FromPtr(p.Amount)
}

// Catalog is the list of plans offered by the Billing API
type Catalog []*TargetPlan

// Find returns the plan with the given id
func (c Catalog) Find(planID string) (*TargetPlan, error) {
	p, ok := lo.Find(c, func(p *TargetPlan) bool {
		return p != nil && p.ID == planID
	})
	if !ok {
		return nil, ierr.NewErrorf("plan %s not found", planID).
			WithHint("The selected plan is no longer available").
			WithReportableDetails(map[string]any{
				"plan_id": planID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}
