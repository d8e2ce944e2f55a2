package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

var (
	hundred = decimal.NewFromInt(100)
)

// Lookups carries the pre-fetched pricing rows relevant to one product for
// one customer. Any field may be nil when the corresponding agreement does
// not exist.
type Lookups struct {
	Override *models.CustomerProductPrice
	List     *models.PriceList
	ListItem *models.PriceListItem
}

// Resolve walks the price cascade for a single product and returns the unit
// price together with the rule that produced it:
//
//  1. customer product price override
//  2. special price pinned in the customer's active price list
//  3. the active price list's blanket discount over the base price
//  4. the product's base price
//
// An inactive price list is skipped entirely, including its pinned items.
func Resolve(product models.Product, lookups Lookups) (decimal.Decimal, enums.PriceSource) {
	if lookups.Override != nil {
		return lookups.Override.Price.Round(2), enums.PriceSourceCustomerOverride
	}

	if lookups.List != nil && lookups.List.IsActive {
		if lookups.ListItem != nil && lookups.ListItem.SpecialPrice != nil {
			return lookups.ListItem.SpecialPrice.Round(2), enums.PriceSourcePriceListSpecial
		}
		return applyDiscount(product.BasePrice, lookups.List), enums.PriceSourcePriceListDiscount
	}

	return product.BasePrice.Round(2), enums.PriceSourceBase
}

// applyDiscount computes the blanket list discount. Fixed discounts larger
// than the base price clamp to zero rather than going negative.
func applyDiscount(base decimal.Decimal, list *models.PriceList) decimal.Decimal {
	switch list.DiscountType {
	case enums.DiscountTypeFixedAmount:
		discounted := base.Sub(list.DiscountValue)
		if discounted.IsNegative() {
			return decimal.Zero
		}
		return discounted.Round(2)
	default:
		factor := hundred.Sub(list.DiscountValue).Div(hundred)
		discounted := base.Mul(factor)
		if discounted.IsNegative() {
			return decimal.Zero
		}
		return discounted.Round(2)
	}
}
