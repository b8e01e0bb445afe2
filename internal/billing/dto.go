package billing

import (
	"strings"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/changelimit"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/plan"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/proration"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/tax"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Date accepts both YYYY-MM-DD and RFC 3339 timestamps
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return ierr.NewErrorf("unsupported date %q", s).
		WithHint("The billing service returned an invalid date").
		Mark(ierr.ErrHTTPClient)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.UTC().Format(time.RFC3339) + `"`), nil
}

// SubscriptionStatusResponse is the GET /subscription-status payload
type SubscriptionStatusResponse struct {
	OrganizationID string           `json:"organization_id"`
	PlanID         string           `json:"plan_id"`
	PlanName       string           `json:"plan_name"`
	MaxDrivers     int              `json:"max_drivers"`
	Status         string           `json:"status"`
	AmountPaid     *decimal.Decimal `json:"amount_paid"`
	TaxPaid        *decimal.Decimal `json:"tax_paid"`
	StartDate      Date             `json:"start_date"`
	DurationMonths int              `json:"duration_months"`
}

func (r *SubscriptionStatusResponse) ToSnapshot() *subscription.Snapshot {
	return &subscription.Snapshot{
		OrganizationID: r.OrganizationID,
		PlanID:         r.PlanID,
		PlanName:       r.PlanName,
		MaxDrivers:     r.MaxDrivers,
		Status:         r.Status,
		AmountPaid:     r.AmountPaid,
		TaxPaid:        r.TaxPaid,
		StartDate:      r.StartDate.Time,
		DurationMonths: r.DurationMonths,
	}
}

// PlanResponse is one entry of GET /plans
type PlanResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Amount         *decimal.Decimal `json:"amount"`
	MaxDrivers     int              `json:"max_drivers"`
	DurationMonths int              `json:"duration_months"`
}

func (r *PlanResponse) ToTargetPlan() *plan.TargetPlan {
	return &plan.TargetPlan{
		ID:             r.ID,
		Name:           r.Name,
		Amount:         r.Amount,
		MaxDrivers:     r.MaxDrivers,
		DurationMonths: r.DurationMonths,
	}
}

// ListPlansResponse accepts the enveloped form of GET /plans
type ListPlansResponse struct {
	Plans []*PlanResponse `json:"plans"`
}

// TaxRequest is the POST /calculate-tax body
type TaxRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	StateCode string          `json:"state_code"`
}

// TaxResponse is the POST /calculate-tax payload
type TaxResponse struct {
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	StateName   string          `json:"state_name"`
}

func (r *TaxResponse) ToQuote(req TaxRequest) *tax.Quote {
	return &tax.Quote{
		BaseAmount:  req.Amount,
		TaxAmount:   r.TaxAmount,
		TaxRate:     r.TaxRate,
		TotalAmount: r.TotalAmount,
		StateCode:   req.StateCode,
		StateName:   r.StateName,
	}
}

// PreviewRequest is the POST /proration-preview body
type PreviewRequest struct {
	OrganizationID string           `json:"organization_id"`
	PlanID         string           `json:"plan_id"`
	ChangeType     types.ChangeType `json:"change_type"`
	StateCode      string           `json:"state_code"`
}

// PreviewResponse is the authoritative POST /proration-preview payload
type PreviewResponse struct {
	Scenario              string           `json:"scenario"`
	SubscriptionAge       int              `json:"subscription_age"`
	CreditApplied         decimal.Decimal  `json:"credit_applied"`
	FinalAmount           decimal.Decimal  `json:"final_amount"`
	TaxAmount             decimal.Decimal  `json:"tax_amount"`
	TaxRate               decimal.Decimal  `json:"tax_rate"`
	TaxCoveredByCredit    *decimal.Decimal `json:"tax_covered_by_credit"`
	TotalAmount           decimal.Decimal  `json:"total_amount"`
	WalletCreditRemaining decimal.Decimal  `json:"wallet_credit_remaining"`
}

// ToResult maps the server preview, rejecting scenarios it does not know
func (r *PreviewResponse) ToResult() (*proration.ProrationResult, error) {
	scenario := types.ProrationScenario(strings.ToLower(r.Scenario))
	if err := scenario.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The billing service returned an unknown proration scenario").
			Mark(ierr.ErrHTTPClient)
	}
	return &proration.ProrationResult{
		Scenario:              scenario,
		SubscriptionAge:       r.SubscriptionAge,
		CreditApplied:         r.CreditApplied,
		FinalAmount:           r.FinalAmount,
		TaxRate:               r.TaxRate,
		TaxAmount:             r.TaxAmount,
		TaxCoveredByCredit:    lo.FromPtr(r.TaxCoveredByCredit),
		TotalAmount:           r.TotalAmount,
		WalletCreditRemaining: r.WalletCreditRemaining,
	}, nil
}

// SubscriptionLimitsResponse is the GET /subscription-limits payload
type SubscriptionLimitsResponse struct {
	Month         string `json:"month"`
	Limit         int    `json:"limit"`
	UpgradeUsed   int    `json:"upgrade_used"`
	DowngradeUsed int    `json:"downgrade_used"`
	CancelUsed    int    `json:"cancel_used"`
}

func (r *SubscriptionLimitsResponse) ToState() *changelimit.State {
	return &changelimit.State{
		Month:         r.Month,
		Limit:         r.Limit,
		UpgradeUsed:   r.UpgradeUsed,
		DowngradeUsed: r.DowngradeUsed,
		CancelUsed:    r.CancelUsed,
	}
}

// ChangeRequest is the POST /change-subscription body
type ChangeRequest struct {
	OrganizationID string           `json:"organization_id"`
	PlanID         string           `json:"plan_id"`
	ChangeType     types.ChangeType `json:"change_type"`
	StateCode      string           `json:"state_code"`
	// IdempotencyKey is also sent as the Idempotency-Key header
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// ChangeResponse is the POST /change-subscription payload
type ChangeResponse struct {
	Status                string          `json:"status"`
	Message               string          `json:"message,omitempty"`
	PlanID                string          `json:"plan_id,omitempty"`
	AmountCharged         decimal.Decimal `json:"amount_charged"`
	WalletCreditRemaining decimal.Decimal `json:"wallet_credit_remaining"`
	EffectiveDate         Date            `json:"effective_date"`
	PaymentURL            string          `json:"payment_url,omitempty"`
}

// upstreamError is the error body the Billing API returns
type upstreamError struct {
	Detail  string `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e upstreamError) text() string {
	text, _ := lo.Coalesce(e.Detail, e.Message, e.Error)
	return text
}
