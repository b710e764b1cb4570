package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pricetag-studio/internal/pricing"
)

// Result is what an import produces: parsed items, the table flags the
// session needs, and a report of rows that could not be used.
type Result struct {
	Items             []pricing.Item
	HasTableDesigns   bool
	HasTableDiscounts bool
	Skipped           []RowError
}

// RowError records one rejected source row. Rejected rows never abort the
// import; the caller shows them to the user.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// columnLayout maps the detected header columns to their indexes.
// -1 means the column is absent.
type columnLayout struct {
	name       int
	price      int
	design     int
	discount   int
	priceFor2  int
	priceFrom3 int
}

// headerAliases are matched case-insensitively against header cells.
var (
	nameHeaders  = []string{"название", "наименование", "товар", "name"}
	priceHeaders = []string{"цена", "price"}
)

const (
	designHeader     = "дизайн"
	discountHeader   = "скидка"
	priceFor2Header  = "цена за 2"
	priceFrom3Header = "цена от 3"
)

// ParseRows turns raw sheet rows into items. The first row is treated as a
// header when it names a price column; otherwise all rows are data with
// the name in the first column and the price in the second.
func ParseRows(rows [][]string) *Result {
	res := &Result{Items: []pricing.Item{}}
	if len(rows) == 0 {
		return res
	}

	layout, hasHeader := detectLayout(rows[0])
	res.HasTableDesigns = layout.design >= 0
	res.HasTableDiscounts = layout.discount >= 0

	start := 0
	if hasHeader {
		start = 1
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		label := strings.TrimSpace(cell(row, layout.name))
		if label == "" {
			res.Skipped = append(res.Skipped, RowError{Row: i + 1, Reason: "пустое название"})
			continue
		}

		price, err := parsePrice(cell(row, layout.price))
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{
				Row:    i + 1,
				Reason: fmt.Sprintf("некорректная цена %q", cell(row, layout.price)),
			})
			continue
		}

		item := pricing.Item{Label: label, Price: price}
		if layout.design >= 0 {
			item.DesignType = strings.ToLower(strings.TrimSpace(cell(row, layout.design)))
		}
		if layout.discount >= 0 {
			item.HasDiscount = ParseDiscountFlag(cell(row, layout.discount))
		}
		if layout.priceFor2 >= 0 {
			if v, err := parsePrice(cell(row, layout.priceFor2)); err == nil {
				item.PriceFor2 = v
			}
		}
		if layout.priceFrom3 >= 0 {
			if v, err := parsePrice(cell(row, layout.priceFrom3)); err == nil {
				item.PriceFrom3 = v
			}
		}

		res.Items = append(res.Items, item)
	}
	return res
}

func detectLayout(header []string) (columnLayout, bool) {
	layout := columnLayout{
		name: 0, price: 1,
		design: -1, discount: -1, priceFor2: -1, priceFrom3: -1,
	}

	hasHeader := false
	for i, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case matchesAny(h, nameHeaders):
			layout.name = i
		case h == priceFor2Header:
			layout.priceFor2 = i
			hasHeader = true
		case h == priceFrom3Header:
			layout.priceFrom3 = i
			hasHeader = true
		case matchesAny(h, priceHeaders):
			layout.price = i
			hasHeader = true
		case h == designHeader:
			layout.design = i
			hasHeader = true
		case h == discountHeader:
			layout.discount = i
			hasHeader = true
		}
	}
	return layout, hasHeader
}

func matchesAny(h string, aliases []string) bool {
	for _, a := range aliases {
		if h == a {
			return true
		}
	}
	return false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parsePrice accepts "1 299", "1299,50" and plain numbers; the result must
// be a positive finite number. ParseFloat also accepts "inf" and "nan",
// which must never reach the items.
func parsePrice(raw string) (float64, error) {
	cleaned := strings.NewReplacer(" ", "", " ", "", ",", ".", "₽", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, fmt.Errorf("empty price")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price: %w", err)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("price must be finite")
	}
	if v <= 0 {
		return 0, fmt.Errorf("price must be positive")
	}
	return v, nil
}
