package enums

// PriceSource tags which rule of the price cascade produced a unit price.
type PriceSource string

const (
	PriceSourceBase              PriceSource = "base"
	PriceSourceCustomerOverride  PriceSource = "customer_override"
	PriceSourcePriceListSpecial  PriceSource = "price_list_special"
	PriceSourcePriceListDiscount PriceSource = "price_list_discount"
)

var validPriceSources = []PriceSource{
	PriceSourceBase,
	PriceSourceCustomerOverride,
	PriceSourcePriceListSpecial,
	PriceSourcePriceListDiscount,
}

// String implements fmt.Stringer.
func (p PriceSource) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceSource.
func (p PriceSource) IsValid() bool {
	for _, candidate := range validPriceSources {
		if candidate == p {
			return true
		}
	}
	return false
}
