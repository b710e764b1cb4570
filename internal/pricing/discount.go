package pricing

import "math"

// CalculateDiscountPrice subtracts a flat discount from price, capping the
// effective discount at maxDiscountPercent of the price. The result is
// rounded half-up to the nearest currency unit.
//
// Non-positive or non-finite prices return the price unchanged, and a
// discount that would drive the result negative is clamped back to the
// original price. The caller decides whether a discount applies at all,
// see ResolveShowDiscount.
func CalculateDiscountPrice(price, discountAmount, maxDiscountPercent float64) float64 {
	if !isPositive(price) {
		return price
	}

	discounted := price - discountAmount
	percentOff := discountAmount / price * 100

	var result float64
	if percentOff > maxDiscountPercent {
		result = math.Round(price - price*maxDiscountPercent/100)
	} else {
		result = math.Round(discounted)
	}

	if result < 0 {
		return price
	}
	return result
}

// ResolveShowDiscount decides whether the item displays a discounted
// price. Precedence, first match wins:
//
//  1. table discounts active and the row has an opinion → the row wins;
//  2. table discounts active but the row is silent → global toggle;
//  3. otherwise → global toggle.
//
// Table discounts are active only while the global design type is the
// "table" sentinel and the import carried a discount column.
func ResolveShowDiscount(item Item, s Settings) bool {
	if s.HasTableDiscounts && s.DesignType == DesignTypeTable && item.HasDiscount != nil {
		return *item.HasDiscount
	}
	return s.Design
}

// DiscountPriceFor combines applicability and calculation: the displayed
// discount price, or the base price when no discount applies.
func DiscountPriceFor(item Item, s Settings) float64 {
	if !ResolveShowDiscount(item, s) {
		return item.Price
	}
	return CalculateDiscountPrice(item.Price, s.DiscountAmount, s.MaxDiscountPercent)
}
