package subscription

import (
	"time"

	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DaysPerMonth approximates every billing month as 30 days.
// Billing periods are therefore not calendar exact; the Billing API owns the exact computation.
const DaysPerMonth = 30

// Snapshot is the read-only view of an organization's current subscription,
// fetched from the Billing API when a plan change is initiated.
type Snapshot struct {
	OrganizationID string `json:"organization_id,omitempty"`
	PlanID         string `json:"plan_id,omitempty"`
	PlanName       string `json:"plan_name,omitempty"`
	MaxDrivers     int    `json:"max_drivers,omitempty"`
	Status         string `json:"status,omitempty"`

	// AmountPaid is the subtotal originally paid for the current plan, before tax
	AmountPaid *decimal.Decimal `json:"amount_paid"`
	// TaxPaid is the tax collected with AmountPaid. Absent means no tax was collected.
	TaxPaid        *decimal.Decimal `json:"tax_paid,omitempty"`
	StartDate      time.Time        `json:"start_date"`
	DurationMonths int              `json:"duration_months"`
}

// Validate checks the fields every calculation depends on
func (s *Snapshot) Validate() error {
	if s == nil {
		return ierr.NewError("subscription snapshot is required").
			WithHint("Current subscription details are missing").
			Mark(ierr.ErrValidation)
	}
	if s.AmountPaid == nil {
		return ierr.NewError("amount_paid is required").
			WithHint("Current subscription amount is missing").
			Mark(ierr.ErrValidation)
	}
	if s.AmountPaid.IsNegative() {
		return ierr.NewError("amount_paid must not be negative").
			WithHint("Current subscription amount is invalid").
			WithReportableDetails(map[string]any{
				"amount_paid": s.AmountPaid.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if s.TaxPaid != nil && s.TaxPaid.IsNegative() {
		return ierr.NewError("tax_paid must not be negative").
			WithHint("Current subscription tax is invalid").
			WithReportableDetails(map[string]any{
				"tax_paid": s.TaxPaid.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if s.StartDate.IsZero() {
		return ierr.NewError("start_date is required").
			WithHint("Current subscription start date is missing").
			Mark(ierr.ErrValidation)
	}
	if s.DurationMonths < 1 {
		return ierr.NewError("duration_months must be at least 1").
			WithHint("Current subscription duration is invalid").
			WithReportableDetails(map[string]any{
				"duration_months": s.DurationMonths,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetAmountPaid returns the paid subtotal, zero when absent
func (s *Snapshot) GetAmountPaid() decimal.Decimal {
	return lo.FromPtr(s.AmountPaid)
}

// GetTaxPaid returns the paid tax, zero when absent
func (s *Snapshot) GetTaxPaid() decimal.Decimal {
	return lo.FromPtr(s.TaxPaid)
}

// TotalDays is the length of the billing period using the 30 day month approximation
func (s *Snapshot) TotalDays() int {
	return s.DurationMonths * DaysPerMonth
}

// AgeInDays returns the number of whole days elapsed since StartDate.
// A snapshot starting after now (clock skew, bad data) yields zero and stale=true.
func (s *Snapshot) AgeInDays(now time.Time) (age int, stale bool) {
	elapsed := now.Sub(s.StartDate)
	if elapsed < 0 {
		return 0, true
	}
	return int(elapsed / (24 * time.Hour)), false
}
