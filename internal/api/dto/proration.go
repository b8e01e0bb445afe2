package dto

import (
	"strings"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/plan"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/proration"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/validator"
	"github.com/shopspring/decimal"
)

// CalculateProrationRequest runs the local calculator on data supplied by the caller
type CalculateProrationRequest struct {
	AmountPaid     *decimal.Decimal `json:"amount_paid" validate:"required"`
	TaxPaid        *decimal.Decimal `json:"tax_paid,omitempty"`
	StartDate      time.Time        `json:"start_date" validate:"required"`
	DurationMonths int              `json:"duration_months" validate:"required,gte=1"`

	TargetAmount *decimal.Decimal `json:"target_amount" validate:"required"`

	// TaxRate is a percentage applied to the target amount. Omit to skip tax.
	TaxRate   *decimal.Decimal `json:"tax_rate,omitempty"`
	StateCode string           `json:"state_code,omitempty" validate:"omitempty,len=2,alpha"`

	// Now overrides the calculation time, defaults to the server clock
	Now *time.Time `json:"now,omitempty"`
}

func (r *CalculateProrationRequest) Validate() error {
	r.StateCode = strings.ToUpper(strings.TrimSpace(r.StateCode))
	return validator.ValidateRequest(r)
}

func (r *CalculateProrationRequest) ToSnapshot() *subscription.Snapshot {
	return &subscription.Snapshot{
		AmountPaid:     r.AmountPaid,
		TaxPaid:        r.TaxPaid,
		StartDate:      r.StartDate,
		DurationMonths: r.DurationMonths,
	}
}

func (r *CalculateProrationRequest) ToTargetPlan() *plan.TargetPlan {
	return &plan.TargetPlan{
		Amount: r.TargetAmount,
	}
}

// CalculateProrationResponse wraps a local calculation with the cooldown verdict for the same instant
type CalculateProrationResponse struct {
	Proration   *proration.ProrationResult   `json:"proration"`
	Downgrade   *proration.DowngradeDecision `json:"downgrade"`
	Approximate bool                         `json:"approximate"`
}
