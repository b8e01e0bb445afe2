package main

import (
	"bytes"
	"testing"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/proration"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalcCmd(t *testing.T) {
	out, err := run(t, "calc",
		"--amount-paid", "300",
		"--tax-paid", "24",
		"--start-date", "2024-03-01",
		"--now", "2024-03-11T00:00:00Z",
		"--target-amount", "500",
	)
	require.NoError(t, err)

	var result proration.ProrationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, types.ProrationScenarioPartial, result.Scenario)
	assert.Equal(t, 10, result.SubscriptionAge)
	assert.Equal(t, "200", result.CreditApplied.String())
	assert.Equal(t, "300", result.FinalAmount.String())
	assert.True(t, result.TaxAmount.IsZero())
}

func TestCalcCmd_WithTax(t *testing.T) {
	out, err := run(t, "calc",
		"--amount-paid", "300",
		"--tax-paid", "24",
		"--start-date", "2024-03-01",
		"--now", "2024-03-03T00:00:00Z",
		"--target-amount", "500",
		"--tax-rate", "8",
		"--state", "CA",
	)
	require.NoError(t, err)

	var result proration.ProrationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, types.ProrationScenarioEarly, result.Scenario)
	assert.Equal(t, "40", result.TaxAmount.String())
	assert.Equal(t, "216", result.TotalAmount.String())
}

func TestCalcCmd_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "bad amount",
			args: []string{"calc", "--amount-paid", "abc", "--start-date", "2024-03-01", "--target-amount", "1"},
		},
		{
			name: "bad date",
			args: []string{"calc", "--amount-paid", "1", "--start-date", "03/01/2024", "--target-amount", "1"},
		},
		{
			name: "negative target",
			args: []string{"calc", "--amount-paid", "1", "--start-date", "2024-03-01", "--target-amount", "-5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}

func TestCalcCmd_MissingFlags(t *testing.T) {
	_, err := run(t, "calc", "--start-date", "2024-03-01")
	assert.Error(t, err)
}

func TestDowngradeCmd(t *testing.T) {
	tests := []struct {
		now      string
		allowed  bool
		daysLeft int
	}{
		{now: "2024-03-04T00:00:00Z", allowed: true},
		{now: "2024-03-11T00:00:00Z", allowed: false, daysLeft: 15},
		{now: "2024-03-26T00:00:00Z", allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			out, err := run(t, "downgrade", "--start-date", "2024-03-01", "--now", tt.now)
			require.NoError(t, err)

			var decision proration.DowngradeDecision
			require.NoError(t, json.Unmarshal([]byte(out), &decision))
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.daysLeft, decision.DaysUntilAllowed)
		})
	}
}
