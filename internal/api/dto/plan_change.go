package dto

import (
	"strings"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/changelimit"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/proration"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/validator"
	"github.com/shopspring/decimal"
)

// PreviewPlanChangeRequest asks what moving an organization to another plan would cost
type PreviewPlanChangeRequest struct {
	// OrganizationID is taken from the path
	OrganizationID string `json:"-" validate:"required"`

	// PlanID is the target plan. Ignored for cancellations.
	PlanID string `json:"plan_id" validate:"required_unless=ChangeType cancel"`

	// ChangeType is derived from the prices; an explicit upgrade or downgrade must agree with them
	ChangeType types.ChangeType `json:"change_type,omitempty"`

	// StateCode selects the tax jurisdiction, defaults to the configured state
	StateCode string `json:"state_code,omitempty" validate:"omitempty,len=2,alpha"`
}

func (r *PreviewPlanChangeRequest) Validate() error {
	r.StateCode = strings.ToUpper(strings.TrimSpace(r.StateCode))
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.ChangeType != "" {
		if err := r.ChangeType.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Eligibility tells the portal whether the change may be confirmed
type Eligibility struct {
	Allowed bool `json:"allowed"`

	WithinChangeLimit bool `json:"within_change_limit"`
	ChangesRemaining  int  `json:"changes_remaining"`

	// DowngradeBlocked is set while the mid cycle cooldown applies
	DowngradeBlocked bool `json:"downgrade_blocked"`
	DaysUntilAllowed int  `json:"days_until_allowed"`

	Reasons []string `json:"reasons,omitempty"`
}

// PlanChangePreviewResponse is the preview shown in the upgrade, downgrade and cancel dialogs
type PlanChangePreviewResponse struct {
	PreviewID      string           `json:"preview_id"`
	OrganizationID string           `json:"organization_id"`
	CurrentPlanID  string           `json:"current_plan_id,omitempty"`
	TargetPlanID   string           `json:"target_plan_id"`
	ChangeType     types.ChangeType `json:"change_type"`
	StateCode      string           `json:"state_code"`

	// Available is false when no trustworthy number exists; the portal waits for the server
	Available         bool                `json:"available"`
	Source            types.PreviewSource `json:"source"`
	Approximate       bool                `json:"approximate"`
	UnavailableReason string              `json:"unavailable_reason,omitempty"`

	Proration   *proration.ProrationResult `json:"proration,omitempty"`
	Eligibility Eligibility                `json:"eligibility"`

	// StaleData is set when a cached Billing API read older than its ttl was used
	StaleData bool `json:"stale_data,omitempty"`
}

// ApplyPlanChangeRequest confirms a plan change
type ApplyPlanChangeRequest struct {
	OrganizationID string           `json:"-" validate:"required"`
	PlanID         string           `json:"plan_id" validate:"required_unless=ChangeType cancel"`
	ChangeType     types.ChangeType `json:"change_type" validate:"required"`
	StateCode      string           `json:"state_code,omitempty" validate:"omitempty,len=2,alpha"`
}

func (r *ApplyPlanChangeRequest) Validate() error {
	r.StateCode = strings.ToUpper(strings.TrimSpace(r.StateCode))
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.ChangeType.Validate()
}

// ApplyPlanChangeResponse is the Billing API outcome of a confirmed change
type ApplyPlanChangeResponse struct {
	ChangeID              string           `json:"change_id"`
	OrganizationID        string           `json:"organization_id"`
	PlanID                string           `json:"plan_id"`
	ChangeType            types.ChangeType `json:"change_type"`
	Status                string           `json:"status"`
	Message               string           `json:"message,omitempty"`
	AmountCharged         decimal.Decimal  `json:"amount_charged"`
	WalletCreditRemaining decimal.Decimal  `json:"wallet_credit_remaining"`
	PaymentURL            string           `json:"payment_url,omitempty"`
}

// DowngradeEligibilityResponse reports the mid cycle cooldown
type DowngradeEligibilityResponse struct {
	OrganizationID string `json:"organization_id"`
	proration.DowngradeDecision
}

// ChangeAllowanceResponse reports this month's change counters
type ChangeAllowanceResponse struct {
	OrganizationID string                  `json:"organization_id"`
	Month          string                  `json:"month,omitempty"`
	Allowances     []changelimit.Allowance `json:"allowances"`
}
