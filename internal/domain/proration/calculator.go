package proration

import (
	"context"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/plan"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/shopspring/decimal"
)

// NewCalculator creates the day based proration calculator.
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

// ComputeProration is a convenience wrapper computing a preview without tax
func ComputeProration(snapshot *subscription.Snapshot, target *plan.TargetPlan, now time.Time) (*ProrationResult, error) {
	return NewCalculator().Calculate(context.Background(), ProrationParams{
		Snapshot:   snapshot,
		TargetPlan: target,
		Now:        now,
	})
}

// dayBasedCalculator credits by whole days elapsed, with 30 day months.
type dayBasedCalculator struct{}

func (c *dayBasedCalculator) Calculate(_ context.Context, params ProrationParams) (*ProrationResult, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	snapshot := params.Snapshot
	amountPaid := snapshot.GetAmountPaid()
	taxPaid := snapshot.GetTaxPaid()
	targetAmount := params.TargetPlan.GetAmount()

	age, stale := snapshot.AgeInDays(params.Now)
	totalDays := snapshot.TotalDays()
	decimalTotalDays := decimal.NewFromInt(int64(totalDays))

	result := &ProrationResult{
		SubscriptionAge:       age,
		TotalDays:             totalDays,
		DailyRate:             amountPaid.Div(decimalTotalDays),
		UsedAmount:            decimal.Zero,
		TaxRate:               decimal.Zero,
		TaxAmount:             decimal.Zero,
		TaxCoveredByCredit:    decimal.Zero,
		WalletCreditRemaining: decimal.Zero,
	}
	if stale {
		result.Warnings = append(result.Warnings, types.ProrationWarningStaleSnapshot)
	}

	switch {
	case age < EarlyWindowDays:
		result.Scenario = types.ProrationScenarioEarly
		result.CreditApplied = amountPaid.Add(taxPaid)
	case age < CooldownEndDays:
		result.Scenario = types.ProrationScenarioPartial
		// multiply before dividing so exact day fractions stay exact
		used := amountPaid.Mul(decimal.NewFromInt(int64(age))).Div(decimalTotalDays)
		result.UsedAmount = used
		result.CreditApplied = clamp(amountPaid.Sub(used), decimal.Zero, amountPaid)
	default:
		result.Scenario = types.ProrationScenarioFull
		result.UsedAmount = amountPaid
		result.CreditApplied = decimal.Zero
	}

	// amounts are held to cents before they are combined
	result.DailyRate = cents(result.DailyRate)
	result.UsedAmount = cents(result.UsedAmount)
	result.CreditApplied = cents(result.CreditApplied)
	result.FinalAmount = decimal.Max(decimal.Zero, cents(targetAmount).Sub(result.CreditApplied))

	// credit left after the subtotal offsets tax first, then goes to the wallet
	remainingCredit := decimal.Max(decimal.Zero, result.CreditApplied.Sub(cents(targetAmount)))
	if params.Tax != nil {
		result.TaxRate = params.Tax.Rate()
		// tax is levied on the full target price. The credit already refunds the
		// tax paid on the old plan, and a finalAmount base would leave no tax for
		// remaining credit to offset.
		result.TaxAmount = cents(params.Tax.AmountFor(targetAmount))
		result.TaxCoveredByCredit = decimal.Min(remainingCredit, result.TaxAmount)
	}
	result.WalletCreditRemaining = remainingCredit.Sub(result.TaxCoveredByCredit)
	result.TotalAmount = decimal.Max(decimal.Zero,
		result.FinalAmount.Add(result.TaxAmount).Sub(result.TaxCoveredByCredit))

	return result, nil
}

// cents rounds a money amount half away from zero to two decimal places.
func cents(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

func validateParams(params ProrationParams) error {
	if err := params.Snapshot.Validate(); err != nil {
		return err
	}
	if err := params.TargetPlan.Validate(); err != nil {
		return err
	}
	if params.Now.IsZero() {
		return ierr.NewError("calculation time is required").
			WithHint("Unable to compute a preview without the current time").
			Mark(ierr.ErrValidation)
	}
	if params.Tax != nil && (params.Tax.TaxAmount.IsNegative() || params.Tax.TaxRate.IsNegative()) {
		return ierr.NewError("tax quote must not be negative").
			WithHint("The tax quote is invalid").
			WithReportableDetails(map[string]any{
				"tax_amount": params.Tax.TaxAmount.String(),
				"tax_rate":   params.Tax.TaxRate.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func clamp(v, lower, upper decimal.Decimal) decimal.Decimal {
	return decimal.Min(upper, decimal.Max(lower, v))
}
