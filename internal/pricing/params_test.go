package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		0:       "0",
		999:     "999",
		1000:    "1 000",
		12000:   "12 000",
		1299:    "1 299",
		1234567: "1 234 567",
		949.5:   "950",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatPrice(in), "FormatPrice(%v)", in)
	}
}

func TestHasMultiTierRequiresBothTiers(t *testing.T) {
	assert.False(t, HasMultiTier(Item{Price: 700, PriceFor2: 500}))
	assert.False(t, HasMultiTier(Item{Price: 700, PriceFrom3: 400}))
	assert.False(t, HasMultiTier(Item{Price: 700, PriceFor2: -1, PriceFrom3: 400}))
	assert.True(t, HasMultiTier(Item{Price: 700, PriceFor2: 500, PriceFrom3: 400}))
}

func TestBuildRenderParamsSinglePriceWithDiscount(t *testing.T) {
	themes := DefaultThemes()
	s := DefaultSettings()
	s.Design = true
	s.DiscountAmount = 500
	s.MaxDiscountPercent = 5
	s.DiscountText = "со скидочной картой\nтолько до конца недели\nтретья строка не влезает"

	p := BuildRenderParams(Item{ID: 1, Label: "Молоко 3.2%", Price: 1299}, themes, s)

	assert.Equal(t, "Молоко 3.2%", p.DisplayLabel)
	assert.Equal(t, "1 299", p.BasePrice)
	assert.True(t, p.ShowDiscount)
	assert.Equal(t, "1 234", p.DiscountPrice)
	assert.False(t, p.IsMultiTier)
	assert.Nil(t, p.Tiers)
	require.Len(t, p.DiscountLines, 2)
	assert.Equal(t, "со скидочной картой", p.DiscountLines[0])
}

func TestBuildRenderParamsMultiTierSkipsDiscount(t *testing.T) {
	themes := DefaultThemes()
	s := DefaultSettings()
	s.Design = true

	item := Item{ID: 1, Label: "Носки", Price: 700, PriceFor2: 1200, PriceFrom3: 500}
	p := BuildRenderParams(item, themes, s)

	assert.True(t, p.IsMultiTier)
	require.NotNil(t, p.Tiers)
	assert.Equal(t, "700", p.Tiers.For1)
	assert.Equal(t, "1 200", p.Tiers.For2)
	assert.Equal(t, "500", p.Tiers.From3)
	assert.False(t, p.ShowDiscount)
	assert.Empty(t, p.DiscountPrice)
}

func TestBuildRenderParamsDesignFields(t *testing.T) {
	themes := DefaultThemes()
	s := DefaultSettings()
	s.DesignType = "sale"
	s.ShowThemeLabels = true

	p := BuildRenderParams(Item{ID: 1, Label: "Чай", Price: 100}, themes, s)

	assert.Equal(t, "sale", p.DesignType)
	assert.Equal(t, themes["sale"], p.Theme)
	assert.True(t, p.ShowLabel)
	assert.Equal(t, "SALE", p.LabelText)
	assert.Equal(t, "#ffffff", p.CutLineColor, "dark theme, auto cut line")
}

func TestBuildAllKeepsOrder(t *testing.T) {
	themes := DefaultThemes()
	s := DefaultSettings()
	items := []Item{
		{ID: 1, Label: "a", Price: 10},
		{ID: 2, Label: "b", Price: 20},
	}

	params := BuildAll(items, themes, s)
	require.Len(t, params, 2)
	assert.Equal(t, "a", params[0].DisplayLabel)
	assert.Equal(t, "b", params[1].DisplayLabel)
}
