// Package proration holds the plan change rules: the credit calculation and the downgrade cooldown.
// Everything here is a pure function of its inputs.
package proration

import (
	"context"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
)

// Calculator performs proration calculations.
// It's kept separate from the callers to allow a different strategy in tests.
type Calculator interface {
	// Calculate returns the breakdown for moving params.Snapshot to params.TargetPlan at params.Now.
	Calculate(ctx context.Context, params ProrationParams) (*ProrationResult, error)
}

// DowngradePolicy decides whether a downgrade is currently blocked
type DowngradePolicy interface {
	Check(snapshot *subscription.Snapshot, now time.Time) (*DowngradeDecision, error)
}
