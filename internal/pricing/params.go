package pricing

import (
	"math"
	"strconv"
	"strings"
)

// TierPrices holds the formatted three-tier price block.
type TierPrices struct {
	For1  string `json:"for1"`
	For2  string `json:"for2"`
	From3 string `json:"from3"`
}

// RenderParams is the single descriptor every renderer consumes. Renderers
// map it to markup or pixels and never re-derive business rules from the
// item or the settings.
type RenderParams struct {
	DisplayLabel  string      `json:"displayLabel"`
	BasePrice     string      `json:"basePrice"`
	ShowDiscount  bool        `json:"showDiscount"`
	DiscountPrice string      `json:"discountPrice,omitempty"`
	IsMultiTier   bool        `json:"isMultiTier"`
	Tiers         *TierPrices `json:"tiers,omitempty"`
	DesignType    string      `json:"designType"`
	Theme         Theme       `json:"theme"`
	NeedsBorder   bool        `json:"needsBorder"`
	BorderColor   string      `json:"borderColor"`
	ShowLabel     bool        `json:"showLabel"`
	LabelText     string      `json:"labelText,omitempty"`
	CutLineColor  string      `json:"cutLineColor"`
	DiscountLines []string    `json:"discountLines,omitempty"`
}

// BuildRenderParams assembles the render descriptor for one item from the
// item itself, the theme catalog and the session settings.
func BuildRenderParams(item Item, themes ThemeSet, s Settings) RenderParams {
	design := DesignOf(ResolveDesignType(item, themes, s), themes)

	p := RenderParams{
		DisplayLabel: item.Label,
		BasePrice:    FormatPrice(item.Price),
		IsMultiTier:  HasMultiTier(item),
		DesignType:   design.Key,
		Theme:        design.Theme,
		NeedsBorder:  design.NeedsBorder,
		BorderColor:  design.BorderColor,
		ShowLabel:    design.ShowLabel(s),
		CutLineColor: design.CutLineColor(s),
	}
	if p.ShowLabel {
		p.LabelText = design.LabelText()
	}

	if p.IsMultiTier {
		p.Tiers = &TierPrices{
			For1:  FormatPrice(item.Price),
			For2:  FormatPrice(item.PriceFor2),
			From3: FormatPrice(item.PriceFrom3),
		}
		return p
	}

	if ResolveShowDiscount(item, s) {
		p.ShowDiscount = true
		p.DiscountPrice = FormatPrice(DiscountPriceFor(item, s))
		p.DiscountLines = discountLines(s.DiscountText)
	}
	return p
}

// BuildAll assembles descriptors for a whole item list in order.
func BuildAll(items []Item, themes ThemeSet, s Settings) []RenderParams {
	params := make([]RenderParams, 0, len(items))
	for _, item := range items {
		params = append(params, BuildRenderParams(item, themes, s))
	}
	return params
}

// FormatPrice renders a price with digits grouped in threes separated by
// spaces: 12000 → "12 000". Display-only, never applied before arithmetic.
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// discountLines splits the free-form discount text into at most two
// non-empty lines.
func discountLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 2 {
			break
		}
	}
	return lines
}
