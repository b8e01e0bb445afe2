package subscription

import (
	"testing"
	"time"

	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSnapshot_AgeInDays(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := &Snapshot{StartDate: start}

	tests := []struct {
		name      string
		now       time.Time
		wantAge   int
		wantStale bool
	}{
		{"same_instant", start, 0, false},
		{"just_under_a_day", start.Add(23*time.Hour + 59*time.Minute), 0, false},
		{"exactly_one_day", start.Add(24 * time.Hour), 1, false},
		{"fifteen_and_a_half_days", start.Add(15*24*time.Hour + 12*time.Hour), 15, false},
		{"start_in_future", start.Add(-2 * time.Hour), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			age, stale := s.AgeInDays(tt.now)
			assert.Equal(t, tt.wantAge, age)
			assert.Equal(t, tt.wantStale, stale)
		})
	}
}

func TestSnapshot_Validate(t *testing.T) {
	valid := func() *Snapshot {
		return &Snapshot{
			AmountPaid:     lo.ToPtr(decimal.NewFromInt(100)),
			TaxPaid:        lo.ToPtr(decimal.NewFromInt(8)),
			StartDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			DurationMonths: 1,
		}
	}

	assert.NoError(t, valid().Validate())

	noTax := valid()
	noTax.TaxPaid = nil
	assert.NoError(t, noTax.Validate())
	assert.True(t, noTax.GetTaxPaid().IsZero())

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"missing_amount", func(s *Snapshot) { s.AmountPaid = nil }},
		{"negative_amount", func(s *Snapshot) { s.AmountPaid = lo.ToPtr(decimal.NewFromInt(-1)) }},
		{"negative_tax", func(s *Snapshot) { s.TaxPaid = lo.ToPtr(decimal.NewFromInt(-1)) }},
		{"missing_start", func(s *Snapshot) { s.StartDate = time.Time{} }},
		{"zero_duration", func(s *Snapshot) { s.DurationMonths = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := s.Validate()
			assert.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}

	var nilSnapshot *Snapshot
	assert.True(t, ierr.IsValidation(nilSnapshot.Validate()))
}

func TestSnapshot_TotalDays(t *testing.T) {
	assert.Equal(t, 30, (&Snapshot{DurationMonths: 1}).TotalDays())
	assert.Equal(t, 360, (&Snapshot{DurationMonths: 12}).TotalDays())
}
