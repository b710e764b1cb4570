package pricing

// Theme is a gradient fill plus the text color drawn on top of it.
// Monochrome themes have Start == End.
type Theme struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	TextColor string `json:"textColor"`
}

// ThemeSet maps design-type keys to themes. A valid set always contains
// the default, new and sale keys; the resolver falls back to default.
type ThemeSet map[string]Theme

const (
	DesignTypeDefault = "default"
	DesignTypeNew     = "new"
	DesignTypeSale    = "sale"
)

const (
	lightBorderColor = "#d1d5db"
	darkBorderColor  = "#333333"
)

// DefaultThemes returns the built-in theme catalog: the three behavioral
// keys plus the pure color themes.
func DefaultThemes() ThemeSet {
	return ThemeSet{
		DesignTypeDefault: {Start: "#3b82f6", End: "#1e40af", TextColor: "#ffffff"},
		DesignTypeNew:     {Start: "#10b981", End: "#047857", TextColor: "#ffffff"},
		DesignTypeSale:    {Start: "#ef4444", End: "#b91c1c", TextColor: "#ffffff"},

		"white":  {Start: "#ffffff", End: "#ffffff", TextColor: "#000000"},
		"black":  {Start: "#000000", End: "#000000", TextColor: "#ffffff"},
		"red":    {Start: "#dc2626", End: "#dc2626", TextColor: "#ffffff"},
		"orange": {Start: "#ea580c", End: "#ea580c", TextColor: "#ffffff"},
		"yellow": {Start: "#facc15", End: "#facc15", TextColor: "#000000"},
		"green":  {Start: "#16a34a", End: "#16a34a", TextColor: "#ffffff"},
		"mint":   {Start: "#a7f3d0", End: "#a7f3d0", TextColor: "#000000"},
		"teal":   {Start: "#0d9488", End: "#0d9488", TextColor: "#ffffff"},
		"blue":   {Start: "#2563eb", End: "#2563eb", TextColor: "#ffffff"},
		"indigo": {Start: "#4f46e5", End: "#4f46e5", TextColor: "#ffffff"},
		"purple": {Start: "#9333ea", End: "#9333ea", TextColor: "#ffffff"},
		"pink":   {Start: "#ec4899", End: "#ec4899", TextColor: "#ffffff"},
		"brown":  {Start: "#92400e", End: "#92400e", TextColor: "#ffffff"},
		"gray":   {Start: "#6b7280", End: "#6b7280", TextColor: "#ffffff"},
	}
}

// ResolveDesignType picks the theme key for an item. When table designs
// are active and the row carries a known key, the row wins; otherwise the
// global setting applies. Unknown keys (including the "table" sentinel
// itself) fall back to default, never error.
func ResolveDesignType(item Item, themes ThemeSet, s Settings) string {
	if s.HasTableDesigns && s.DesignType == DesignTypeTable && item.DesignType != "" {
		if _, ok := themes[item.DesignType]; ok {
			return item.DesignType
		}
	}
	if _, ok := themes[s.DesignType]; ok {
		return s.DesignType
	}
	return DesignTypeDefault
}

// Design is the visual parameter set derived from a resolved theme key.
type Design struct {
	Key         string
	Theme       Theme
	NeedsBorder bool
	BorderColor string
	IsLight     bool
}

// DesignOf derives the visual parameters for a resolved key. The key must
// come from ResolveDesignType, so it is always present in the set.
func DesignOf(key string, themes ThemeSet) Design {
	theme, ok := themes[key]
	if !ok {
		key = DesignTypeDefault
		theme = themes[DesignTypeDefault]
	}

	d := Design{
		Key:   key,
		Theme: theme,
		// Monochrome fills disappear against a white page without a border.
		NeedsBorder: key == "white" || key == "black" || theme.Start == theme.End,
		// Light themes are the ones that use dark text.
		IsLight: theme.TextColor != "#ffffff",
	}
	if key == "white" {
		d.BorderColor = lightBorderColor
	} else {
		d.BorderColor = darkBorderColor
	}
	return d
}

// CutLineColor returns the effective cut-line color: an explicit setting
// wins, the auto sentinel picks black on light themes and white on dark.
func (d Design) CutLineColor(s Settings) string {
	if s.CuttingLineColor != "" && s.CuttingLineColor != CutLineAuto {
		return s.CuttingLineColor
	}
	if d.IsLight {
		return "#000000"
	}
	return "#ffffff"
}

// ShowLabel reports whether the NEW/SALE banner renders for this design.
func (d Design) ShowLabel(s Settings) bool {
	return s.ShowThemeLabels && (d.Key == DesignTypeNew || d.Key == DesignTypeSale)
}

// LabelText returns the banner text for the design, or "" when none.
func (d Design) LabelText() string {
	switch d.Key {
	case DesignTypeNew:
		return "NEW"
	case DesignTypeSale:
		return "SALE"
	}
	return ""
}
