package orders

import "github.com/shopspring/decimal"

// Totals aggregates the monetary fields frozen onto an order at creation.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Freight  decimal.Decimal
	Total    decimal.Decimal
}

// LineTotal multiplies a unit price by a quantity, rounded to cents.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// ComputeTotals sums the line totals and applies order-level discount and
// freight. The grand total clamps at zero so an oversized discount cannot
// produce a negative amount owed.
func ComputeTotals(lineTotals []decimal.Decimal, discount, freight decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, lineTotal := range lineTotals {
		subtotal = subtotal.Add(lineTotal)
	}

	total := subtotal.Sub(discount).Add(freight)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal.Round(2),
		Discount: discount.Round(2),
		Freight:  freight.Round(2),
		Total:    total.Round(2),
	}
}
