package pricing

const (
	// DesignTypeTable is the sentinel theme key meaning "use the theme
	// from the imported table row when the row carries one".
	DesignTypeTable = "table"

	// CutLineAuto is the sentinel cut-line color meaning "pick black or
	// white automatically from the resolved theme's lightness".
	CutLineAuto = "#cccccc"
)

// Settings are the session-wide controls for discount and design.
type Settings struct {
	Design             bool    `json:"design"`
	DesignType         string  `json:"designType"`
	DiscountAmount     float64 `json:"discountAmount"`
	MaxDiscountPercent float64 `json:"maxDiscountPercent"`
	HasTableDesigns    bool    `json:"hasTableDesigns"`
	HasTableDiscounts  bool    `json:"hasTableDiscounts"`
	ShowThemeLabels    bool    `json:"showThemeLabels"`
	DiscountText       string  `json:"discountText"`
	CuttingLineColor   string  `json:"cuttingLineColor"`
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() Settings {
	return Settings{
		Design:             false,
		DesignType:         DesignTypeDefault,
		DiscountAmount:     500,
		MaxDiscountPercent: 5,
		ShowThemeLabels:    true,
		CuttingLineColor:   CutLineAuto,
	}
}
