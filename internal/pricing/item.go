package pricing

import "math"

// Item is a single product row as produced by import or manual entry.
// Label is displayed verbatim, even when the source cell was numeric.
type Item struct {
	ID            int64   `json:"id"`
	Label         string  `json:"label"`
	Price         float64 `json:"price"`
	DiscountPrice float64 `json:"discountPrice"`

	// DesignType carries the per-row theme key from a "Дизайн" column.
	// Empty means the row has no opinion and the global setting applies.
	DesignType string `json:"designType,omitempty"`

	// HasDiscount is the per-row override from a "Скидка" column.
	// nil means the row has no opinion and the global toggle applies.
	HasDiscount *bool `json:"hasDiscount,omitempty"`

	PriceFor2  float64 `json:"priceFor2,omitempty"`
	PriceFrom3 float64 `json:"priceFrom3,omitempty"`
}

// HasMultiTier reports whether the item shows the three-tier price block.
// Both tier prices must be positive finite numbers; one without the other
// is silently ignored.
func HasMultiTier(item Item) bool {
	return isPositive(item.PriceFor2) && isPositive(item.PriceFrom3)
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
