package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func baseProduct(price string) models.Product {
	return models.Product{BasePrice: money(price)}
}

func activeList(discountType enums.DiscountType, value string) *models.PriceList {
	return &models.PriceList{
		DiscountType:  discountType,
		DiscountValue: money(value),
		IsActive:      true,
	}
}

func TestResolve_BasePriceWhenNoAgreements(t *testing.T) {
	t.Parallel()

	price, source := Resolve(baseProduct("100.00"), Lookups{})

	assert.True(t, price.Equal(money("100.00")), "price = %s", price)
	assert.Equal(t, enums.PriceSourceBase, source)
}

func TestResolve_CustomerOverrideBeatsEverything(t *testing.T) {
	t.Parallel()

	special := money("80.00")
	price, source := Resolve(baseProduct("100.00"), Lookups{
		Override: &models.CustomerProductPrice{Price: money("72.50")},
		List:     activeList(enums.DiscountTypePercentage, "50"),
		ListItem: &models.PriceListItem{SpecialPrice: &special},
	})

	assert.True(t, price.Equal(money("72.50")), "price = %s", price)
	assert.Equal(t, enums.PriceSourceCustomerOverride, source)
}

func TestResolve_SpecialPriceBeatsBlanketDiscount(t *testing.T) {
	t.Parallel()

	special := money("85.00")
	price, source := Resolve(baseProduct("100.00"), Lookups{
		List:     activeList(enums.DiscountTypePercentage, "10"),
		ListItem: &models.PriceListItem{SpecialPrice: &special},
	})

	assert.True(t, price.Equal(money("85.00")), "price = %s", price)
	assert.Equal(t, enums.PriceSourcePriceListSpecial, source)
}

func TestResolve_ListItemWithoutSpecialPriceFallsToDiscount(t *testing.T) {
	t.Parallel()

	price, source := Resolve(baseProduct("100.00"), Lookups{
		List:     activeList(enums.DiscountTypePercentage, "10"),
		ListItem: &models.PriceListItem{SpecialPrice: nil},
	})

	assert.True(t, price.Equal(money("90.00")), "price = %s", price)
	assert.Equal(t, enums.PriceSourcePriceListDiscount, source)
}

func TestResolve_PercentageDiscount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		base     string
		discount string
		want     string
	}{
		{name: "ten percent", base: "100.00", discount: "10", want: "90.00"},
		{name: "rounds half up", base: "33.33", discount: "15", want: "28.33"},
		{name: "zero percent", base: "45.10", discount: "0", want: "45.10"},
		{name: "full discount", base: "45.10", discount: "100", want: "0.00"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			price, source := Resolve(baseProduct(tc.base), Lookups{
				List: activeList(enums.DiscountTypePercentage, tc.discount),
			})

			assert.True(t, price.Equal(money(tc.want)), "price = %s, want %s", price, tc.want)
			assert.Equal(t, enums.PriceSourcePriceListDiscount, source)
		})
	}
}

func TestResolve_FixedDiscountClampsAtZero(t *testing.T) {
	t.Parallel()

	price, source := Resolve(baseProduct("8.00"), Lookups{
		List: activeList(enums.DiscountTypeFixedAmount, "10.00"),
	})

	assert.True(t, price.IsZero(), "price = %s", price)
	assert.Equal(t, enums.PriceSourcePriceListDiscount, source)
}

func TestResolve_FixedDiscountSubtracts(t *testing.T) {
	t.Parallel()

	price, source := Resolve(baseProduct("100.00"), Lookups{
		List: activeList(enums.DiscountTypeFixedAmount, "12.75"),
	})

	assert.True(t, price.Equal(money("87.25")), "price = %s", price)
	assert.Equal(t, enums.PriceSourcePriceListDiscount, source)
}

func TestResolve_InactiveListIgnoredEntirely(t *testing.T) {
	t.Parallel()

	special := money("50.00")
	list := activeList(enums.DiscountTypePercentage, "40")
	list.IsActive = false

	price, source := Resolve(baseProduct("100.00"), Lookups{
		List:     list,
		ListItem: &models.PriceListItem{SpecialPrice: &special},
	})

	assert.True(t, price.Equal(money("100.00")), "price = %s", price)
	assert.Equal(t, enums.PriceSourceBase, source)
}

func TestResolve_InactiveListDoesNotBlockOverride(t *testing.T) {
	t.Parallel()

	list := activeList(enums.DiscountTypePercentage, "40")
	list.IsActive = false

	price, source := Resolve(baseProduct("100.00"), Lookups{
		Override: &models.CustomerProductPrice{Price: money("61.00")},
		List:     list,
	})

	assert.True(t, price.Equal(money("61.00")), "price = %s", price)
	assert.Equal(t, enums.PriceSourceCustomerOverride, source)
}
