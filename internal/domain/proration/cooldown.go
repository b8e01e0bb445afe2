package proration

import (
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
)

// NewDowngradePolicy returns the mid cycle downgrade cooldown
func NewDowngradePolicy() DowngradePolicy {
	return &cooldownPolicy{}
}

// IsDowngradeAllowed blocks downgrades while the subscription is in the partial window
func IsDowngradeAllowed(snapshot *subscription.Snapshot, now time.Time) (*DowngradeDecision, error) {
	return NewDowngradePolicy().Check(snapshot, now)
}

type cooldownPolicy struct{}

// Check only needs the start date; amounts are not read.
func (p *cooldownPolicy) Check(snapshot *subscription.Snapshot, now time.Time) (*DowngradeDecision, error) {
	if snapshot == nil || snapshot.StartDate.IsZero() {
		return nil, ierr.NewError("subscription start date is required").
			WithHint("Current subscription details are missing").
			Mark(ierr.ErrValidation)
	}

	age, stale := snapshot.AgeInDays(now)
	decision := &DowngradeDecision{
		Allowed:         true,
		SubscriptionAge: age,
		Stale:           stale,
	}
	if age >= EarlyWindowDays && age < CooldownEndDays {
		decision.Allowed = false
		decision.DaysUntilAllowed = CooldownEndDays - age
	}
	return decision, nil
}
