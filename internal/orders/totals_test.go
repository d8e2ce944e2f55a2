package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestLineTotal(t *testing.T) {
	t.Parallel()

	assert.True(t, LineTotal(money("10.50"), 2).Equal(money("21.00")))
	assert.True(t, LineTotal(money("4.50"), 1).Equal(money("4.50")))
	assert.True(t, LineTotal(money("0.33"), 3).Equal(money("0.99")))
}

func TestComputeTotals_SumsLines(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(
		[]decimal.Decimal{money("21.00"), money("4.50")},
		decimal.Zero, decimal.Zero,
	)

	assert.True(t, totals.Subtotal.Equal(money("25.50")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.Total.Equal(money("25.50")), "total = %s", totals.Total)
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Freight.IsZero())
}

func TestComputeTotals_DiscountAndFreight(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(
		[]decimal.Decimal{money("100.00")},
		money("15.00"), money("7.50"),
	)

	assert.True(t, totals.Total.Equal(money("92.50")), "total = %s", totals.Total)
}

func TestComputeTotals_ClampsNegativeTotal(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(
		[]decimal.Decimal{money("10.00")},
		money("50.00"), decimal.Zero,
	)

	assert.True(t, totals.Total.IsZero(), "total = %s", totals.Total)
	assert.True(t, totals.Subtotal.Equal(money("10.00")))
}

func TestComputeTotals_EmptyOrder(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(nil, decimal.Zero, decimal.Zero)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}
