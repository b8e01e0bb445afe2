package plan

import (
	"testing"

	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Find(t *testing.T) {
	catalog := Catalog{
		{ID: "plan_basic", Amount: lo.ToPtr(decimal.NewFromInt(100)), MaxDrivers: 10, DurationMonths: 1},
		nil,
		{ID: "plan_pro", Amount: lo.ToPtr(decimal.NewFromInt(250)), MaxDrivers: 50, DurationMonths: 1},
	}

	p, err := catalog.Find("plan_pro")
	require.NoError(t, err)
	assert.Equal(t, 50, p.MaxDrivers)

	_, err = catalog.Find("plan_enterprise")
	assert.True(t, ierr.IsNotFound(err))
}

func TestTargetPlan_Validate(t *testing.T) {
	assert.NoError(t, CancellationTarget().Validate())
	assert.True(t, CancellationTarget().GetAmount().IsZero())

	assert.True(t, ierr.IsValidation((&TargetPlan{ID: "p"}).Validate()))
	assert.True(t, ierr.IsValidation((&TargetPlan{ID: "p", Amount: lo.ToPtr(decimal.NewFromInt(-5))}).Validate()))

	var missing *TargetPlan
	assert.True(t, ierr.IsValidation(missing.Validate()))
}
