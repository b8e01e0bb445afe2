package changelimit

import (
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
)

// CanChange reports whether another change of the given type fits in this month's limit.
// Unknown change types and a missing state are denied.
func CanChange(state *State, changeType types.ChangeType) bool {
	if state == nil {
		return false
	}
	used, ok := state.Used(changeType)
	if !ok {
		return false
	}
	return used < state.Limit
}

// Remaining returns how many changes of the given type are left this month
func Remaining(state *State, changeType types.ChangeType) int {
	if state == nil {
		return 0
	}
	used, ok := state.Used(changeType)
	if !ok {
		return 0
	}
	return max(0, state.Limit-used)
}

// Allowance is the per change type view of a State
type Allowance struct {
	ChangeType types.ChangeType `json:"change_type"`
	Used       int              `json:"used"`
	Limit      int              `json:"limit"`
	Remaining  int              `json:"remaining"`
	Allowed    bool             `json:"allowed"`
}

// Allowances expands a State into one Allowance per known change type
func Allowances(state *State) []Allowance {
	out := make([]Allowance, 0, len(types.ChangeTypeValues))
	for _, ct := range types.ChangeTypeValues {
		a := Allowance{ChangeType: ct}
		if state != nil {
			a.Used, _ = state.Used(ct)
			a.Limit = state.Limit
		}
		a.Remaining = Remaining(state, ct)
		a.Allowed = CanChange(state, ct)
		out = append(out, a)
	}
	return out
}
