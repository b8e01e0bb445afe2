package changelimit

import (
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
)

// State holds an organization's plan change counters for one calendar month.
// Counters and Limit come from the Billing API and are never computed locally.
type State struct {
	Month         string `json:"month,omitempty"` // YYYY-MM
	Limit         int    `json:"limit"`
	UpgradeUsed   int    `json:"upgrade_used"`
	DowngradeUsed int    `json:"downgrade_used"`
	CancelUsed    int    `json:"cancel_used"`
}

// Used returns the counter for a change type. ok is false for unknown types.
func (s *State) Used(changeType types.ChangeType) (used int, ok bool) {
	switch changeType {
	case types.ChangeTypeUpgrade:
		return s.UpgradeUsed, true
	case types.ChangeTypeDowngrade:
		return s.DowngradeUsed, true
	case types.ChangeTypeCancel:
		return s.CancelUsed, true
	default:
		return 0, false
	}
}
