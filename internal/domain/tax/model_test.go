package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPercentageQuote(t *testing.T) {
	q, err := NewPercentageQuote(decimal.NewFromInt(150), decimal.NewFromFloat(8.25), "CA")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.38").Equal(q.TaxAmount), q.TaxAmount.String())
	assert.True(t, decimal.RequireFromString("162.38").Equal(q.TotalAmount))

	_, err = NewPercentageQuote(decimal.NewFromInt(-1), decimal.NewFromInt(8), "CA")
	assert.Error(t, err)
	_, err = NewPercentageQuote(decimal.NewFromInt(1), decimal.NewFromInt(-8), "CA")
	assert.Error(t, err)
}

func TestQuote_AmountFor(t *testing.T) {
	q := &Quote{
		BaseAmount: decimal.NewFromInt(100),
		TaxAmount:  decimal.NewFromInt(8),
		TaxRate:    decimal.NewFromInt(8),
	}

	assert.True(t, decimal.NewFromInt(8).Equal(q.AmountFor(decimal.NewFromInt(100))))
	assert.True(t, decimal.NewFromInt(20).Equal(q.AmountFor(decimal.NewFromInt(250))))

	var none *Quote
	assert.True(t, none.AmountFor(decimal.NewFromInt(100)).IsZero())
	assert.True(t, none.Rate().IsZero())
}
