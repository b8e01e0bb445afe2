package types

import (
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/samber/lo"
)

// ProrationScenario identifies which credit rule applied to a plan change.
type ProrationScenario string

const (
	// ProrationScenarioEarly applies when the subscription is younger than the early window:
	// everything paid (subtotal and tax) is credited.
	ProrationScenarioEarly ProrationScenario = "early"
	// ProrationScenarioPartial credits the unused days of the subtotal.
	ProrationScenarioPartial ProrationScenario = "partial"
	// ProrationScenarioFull assumes the term is consumed and credits nothing.
	ProrationScenarioFull ProrationScenario = "full"
)

var ProrationScenarioValues = []ProrationScenario{
	ProrationScenarioEarly,
	ProrationScenarioPartial,
	ProrationScenarioFull,
}

func (s ProrationScenario) Validate() error {
	if !lo.Contains(ProrationScenarioValues, s) {
		return ierr.NewError("invalid proration scenario").
			WithHint("Proration scenario must be early, partial, or full").
			WithReportableDetails(map[string]any{
				"allowed_values": ProrationScenarioValues,
				"provided_value": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (s ProrationScenario) String() string {
	return string(s)
}

// ChangeType is the kind of subscription change an organization requests.
type ChangeType string

const (
	ChangeTypeUpgrade   ChangeType = "upgrade"
	ChangeTypeDowngrade ChangeType = "downgrade"
	ChangeTypeCancel    ChangeType = "cancel"
)

var ChangeTypeValues = []ChangeType{
	ChangeTypeUpgrade,
	ChangeTypeDowngrade,
	ChangeTypeCancel,
}

func (c ChangeType) Validate() error {
	if !lo.Contains(ChangeTypeValues, c) {
		return ierr.NewError("invalid change type").
			WithHint("Change type must be upgrade, downgrade, or cancel").
			WithReportableDetails(map[string]any{
				"allowed_values": ChangeTypeValues,
				"provided_value": c,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (c ChangeType) String() string {
	return string(c)
}

// ProrationWarning is a soft condition detected while computing a preview.
// Warnings never fail the calculation.
type ProrationWarning string

const (
	// ProrationWarningStaleSnapshot is raised when the snapshot starts in the future
	// (clock skew or bad data). The subscription age is clamped to zero.
	ProrationWarningStaleSnapshot ProrationWarning = "stale_snapshot"
)

// PreviewSource tells the portal where the numbers of a preview came from.
type PreviewSource string

const (
	// PreviewSourceServer is the authoritative Billing API computation.
	PreviewSourceServer PreviewSource = "server"
	// PreviewSourceLocal is the local approximation used while the server is unreachable.
	PreviewSourceLocal PreviewSource = "local"
	// PreviewSourceNone means no preview could be produced; the portal waits for the server.
	PreviewSourceNone PreviewSource = "none"
)
