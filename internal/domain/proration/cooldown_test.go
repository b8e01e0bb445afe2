package proration

import (
	"testing"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDowngradeAllowed(t *testing.T) {
	snapshot := newSnapshot("100", "8", 1)

	tests := []struct {
		name        string
		age         int
		wantAllowed bool
		wantDays    int
	}{
		{"fresh_subscription", 0, true, 0},
		{"last_early_day", 4, true, 0},
		{"first_blocked_day", 5, false, 20},
		{"mid_cycle", 10, false, 15},
		{"last_blocked_day", 24, false, 1},
		{"term_consumed", 25, true, 0},
		{"long_after", 60, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := IsDowngradeAllowed(snapshot, daysAfterStart(tt.age))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, decision.Allowed)
			assert.Equal(t, tt.wantDays, decision.DaysUntilAllowed)
			assert.Equal(t, tt.age, decision.SubscriptionAge)
		})
	}
}

func TestIsDowngradeAllowed_BlockedIffPartialWindow(t *testing.T) {
	snapshot := newSnapshot("100", "", 1)
	for age := 0; age < 60; age++ {
		decision, err := IsDowngradeAllowed(snapshot, daysAfterStart(age))
		require.NoError(t, err)
		blocked := age >= EarlyWindowDays && age < CooldownEndDays
		assert.Equal(t, !blocked, decision.Allowed, "age %d", age)
		if decision.Allowed {
			assert.Zero(t, decision.DaysUntilAllowed)
		}
	}
}

func TestIsDowngradeAllowed_Edges(t *testing.T) {
	decision, err := IsDowngradeAllowed(newSnapshot("100", "", 1), start.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.True(t, decision.Stale)

	_, err = IsDowngradeAllowed(&subscription.Snapshot{}, start)
	assert.True(t, ierr.IsValidation(err))

	_, err = IsDowngradeAllowed(nil, start)
	assert.True(t, ierr.IsValidation(err))
}
