package tax

import (
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/shopspring/decimal"
)

// Quote is a tax computation for a base amount in a given state,
// as returned by the Billing API calculate-tax endpoint.
type Quote struct {
	BaseAmount  decimal.Decimal `json:"base_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // percentage, 8.25 means 8.25%
	TotalAmount decimal.Decimal `json:"total_amount"`
	StateCode   string          `json:"state_code,omitempty"`
	StateName   string          `json:"state_name,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// NewPercentageQuote quotes tax locally from a known percentage rate.
// Amounts are rounded to cents.
func NewPercentageQuote(base, ratePercent decimal.Decimal, stateCode string) (*Quote, error) {
	if base.IsNegative() {
		return nil, ierr.NewError("tax base must not be negative").
			WithHint("Invalid amount for tax calculation").
			Mark(ierr.ErrValidation)
	}
	if ratePercent.IsNegative() {
		return nil, ierr.NewError("tax rate must not be negative").
			WithHint("Invalid tax rate").
			Mark(ierr.ErrValidation)
	}
	taxAmount := base.Mul(ratePercent).Div(hundred).Round(2)
	return &Quote{
		BaseAmount:  base,
		TaxAmount:   taxAmount,
		TaxRate:     ratePercent,
		TotalAmount: base.Add(taxAmount),
		StateCode:   stateCode,
	}, nil
}

// AmountFor returns the tax owed on base. The quoted amount is reused when the base matches,
// otherwise the quoted rate is applied.
func (q *Quote) AmountFor(base decimal.Decimal) decimal.Decimal {
	if q == nil {
		return decimal.Zero
	}
	if base.Equal(q.BaseAmount) {
		return q.TaxAmount
	}
	return base.Mul(q.TaxRate).Div(hundred).Round(2)
}

// Rate returns the quoted percentage, zero for a nil quote
func (q *Quote) Rate() decimal.Decimal {
	if q == nil {
		return decimal.Zero
	}
	return q.TaxRate
}
