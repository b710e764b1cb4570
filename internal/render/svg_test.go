package render

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricetag-studio/internal/pricing"
)

func discountParams() pricing.RenderParams {
	return pricing.RenderParams{
		DisplayLabel:  "Молоко <3.2%>",
		BasePrice:     "1 299",
		ShowDiscount:  true,
		DiscountPrice: "1 234",
		DesignType:    "sale",
		Theme:         pricing.Theme{Start: "#ef4444", End: "#b91c1c", TextColor: "#ffffff"},
		ShowLabel:     true,
		LabelText:     "SALE",
		CutLineColor:  "#ffffff",
		DiscountLines: []string{"со скидочной картой"},
	}
}

func TestTagSVGDiscountLayout(t *testing.T) {
	svg := TagSVG(discountParams())

	assert.Contains(t, svg, "Молоко &lt;3.2%&gt;", "label must be escaped")
	assert.Contains(t, svg, "1 299")
	assert.Contains(t, svg, "1 234")
	assert.Contains(t, svg, "line-through")
	assert.Contains(t, svg, "SALE")
	assert.Contains(t, svg, "со скидочной картой")
	assert.NotContains(t, svg, "stroke-width", "gradient theme renders without border")
}

func TestTagSVGBorderedMonochrome(t *testing.T) {
	p := pricing.RenderParams{
		DisplayLabel: "Чай",
		BasePrice:    "100",
		DesignType:   "white",
		Theme:        pricing.Theme{Start: "#ffffff", End: "#ffffff", TextColor: "#000000"},
		NeedsBorder:  true,
		BorderColor:  "#d1d5db",
		CutLineColor: "#000000",
	}

	svg := TagSVG(p)
	assert.Contains(t, svg, `stroke="#d1d5db"`)
	assert.Contains(t, svg, "100 ₽")
}

func TestTagSVGMultiTier(t *testing.T) {
	p := pricing.RenderParams{
		DisplayLabel: "Носки",
		BasePrice:    "700",
		IsMultiTier:  true,
		Tiers:        &pricing.TierPrices{For1: "700", For2: "1 200", From3: "500"},
		Theme:        pricing.Theme{Start: "#2563eb", End: "#2563eb", TextColor: "#ffffff"},
		CutLineColor: "#ffffff",
	}

	svg := TagSVG(p)
	assert.Contains(t, svg, "от 3 шт")
	assert.Contains(t, svg, "1 200")
	assert.Equal(t, 1, strings.Count(svg, "</svg>"))
}

func TestPrintHTMLPaginates(t *testing.T) {
	var params []pricing.RenderParams
	for i := 0; i < tagsPerPage+1; i++ {
		params = append(params, discountParams())
	}

	html, err := PrintHTML(params)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(html, `class="page"`))
	assert.Contains(t, html, "dashed #ffffff")
}

func TestPrintHTMLPerTagCutLines(t *testing.T) {
	light := discountParams()
	light.CutLineColor = "#ffffff"
	dark := pricing.RenderParams{
		DisplayLabel: "Чай",
		BasePrice:    "100",
		Theme:        pricing.Theme{Start: "#ffffff", End: "#ffffff", TextColor: "#000000"},
		CutLineColor: "#000000",
	}

	html, err := PrintHTML([]pricing.RenderParams{light, dark})
	require.NoError(t, err)
	assert.Contains(t, html, "dashed #ffffff")
	assert.Contains(t, html, "dashed #000000")
}

func TestPreviewURLRoundTrip(t *testing.T) {
	p := discountParams()
	raw := PreviewURL("http://localhost:8080/", p)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/preview/tag", u.Path)

	got := ParamsFromQuery(u.Query())
	assert.Equal(t, p.DisplayLabel, got.DisplayLabel)
	assert.Equal(t, p.BasePrice, got.BasePrice)
	assert.Equal(t, p.DiscountPrice, got.DiscountPrice)
	assert.True(t, got.ShowDiscount)
	assert.Equal(t, p.Theme, got.Theme)
	assert.Equal(t, p.LabelText, got.LabelText)
	assert.Equal(t, p.DiscountLines, got.DiscountLines)
}

func TestPreviewURLMultiTierRoundTrip(t *testing.T) {
	p := pricing.RenderParams{
		DisplayLabel: "Носки",
		BasePrice:    "700",
		IsMultiTier:  true,
		Tiers:        &pricing.TierPrices{For1: "700", For2: "1 200", From3: "500"},
		Theme:        pricing.Theme{Start: "#2563eb", End: "#2563eb", TextColor: "#ffffff"},
		CutLineColor: "#ffffff",
	}

	u, err := url.Parse(PreviewURL("http://localhost:8080", p))
	require.NoError(t, err)

	got := ParamsFromQuery(u.Query())
	assert.True(t, got.IsMultiTier)
	require.NotNil(t, got.Tiers)
	assert.Equal(t, "1 200", got.Tiers.For2)
	assert.Equal(t, "500", got.Tiers.From3)
}
