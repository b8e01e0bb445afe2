package proration

import (
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/plan"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/tax"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/shopspring/decimal"
)

const (
	// EarlyWindowDays is the age below which everything paid is credited
	EarlyWindowDays = 5
	// CooldownEndDays is the age from which the term counts as consumed.
	// Downgrades are blocked between EarlyWindowDays and CooldownEndDays.
	CooldownEndDays = 25
)

// ProrationParams holds the inputs of a proration calculation
type ProrationParams struct {
	Snapshot   *subscription.Snapshot
	TargetPlan *plan.TargetPlan
	Now        time.Time
	// Tax is the quote for the target plan amount. Nil means tax is not part of the preview.
	Tax *tax.Quote
}

// ProrationResult is the credit and charge breakdown of a plan change
type ProrationResult struct {
	Scenario        types.ProrationScenario `json:"scenario"`
	SubscriptionAge int                     `json:"subscription_age"`
	TotalDays       int                     `json:"total_days"`
	DailyRate       decimal.Decimal         `json:"daily_rate"`
	UsedAmount      decimal.Decimal         `json:"used_amount"`

	CreditApplied decimal.Decimal `json:"credit_applied"`
	// FinalAmount is what is still owed for the target plan, before tax
	FinalAmount decimal.Decimal `json:"final_amount"`

	TaxRate               decimal.Decimal `json:"tax_rate"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	TaxCoveredByCredit    decimal.Decimal `json:"tax_covered_by_credit"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	WalletCreditRemaining decimal.Decimal `json:"wallet_credit_remaining"`

	Warnings []types.ProrationWarning `json:"warnings,omitempty"`
}

// HasWarning reports whether the result carries the given soft warning
func (r *ProrationResult) HasWarning(w types.ProrationWarning) bool {
	for _, existing := range r.Warnings {
		if existing == w {
			return true
		}
	}
	return false
}

// DowngradeDecision is the outcome of the downgrade cooldown policy
type DowngradeDecision struct {
	Allowed          bool `json:"allowed"`
	DaysUntilAllowed int  `json:"days_until_allowed"`
	SubscriptionAge  int  `json:"subscription_age"`
	Stale            bool `json:"stale,omitempty"`
}
