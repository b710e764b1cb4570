package render

import (
	"net/url"
	"strings"

	"pricetag-studio/internal/pricing"
)

// PreviewURL encodes a render descriptor as query parameters on the
// single-tag preview endpoint, so a chat client can show a tag by URL
// alone. ParamsFromQuery is the inverse; the pair must stay in sync.
func PreviewURL(baseURL string, p pricing.RenderParams) string {
	q := url.Values{}
	q.Set("label", p.DisplayLabel)
	q.Set("price", p.BasePrice)
	q.Set("design", p.DesignType)
	q.Set("start", p.Theme.Start)
	q.Set("end", p.Theme.End)
	q.Set("text", p.Theme.TextColor)
	q.Set("cut", p.CutLineColor)
	if p.ShowDiscount {
		q.Set("discount", p.DiscountPrice)
		if len(p.DiscountLines) > 0 {
			q.Set("lines", strings.Join(p.DiscountLines, "\n"))
		}
	}
	if p.IsMultiTier && p.Tiers != nil {
		q.Set("for2", p.Tiers.For2)
		q.Set("from3", p.Tiers.From3)
	}
	if p.NeedsBorder {
		q.Set("border", p.BorderColor)
	}
	if p.ShowLabel {
		q.Set("banner", p.LabelText)
	}
	return strings.TrimRight(baseURL, "/") + "/preview/tag?" + q.Encode()
}

// ParamsFromQuery rebuilds a descriptor from preview query parameters.
// Values are trusted as display strings only; nothing is recalculated.
func ParamsFromQuery(q url.Values) pricing.RenderParams {
	p := pricing.RenderParams{
		DisplayLabel: q.Get("label"),
		BasePrice:    q.Get("price"),
		DesignType:   q.Get("design"),
		Theme: pricing.Theme{
			Start:     orDefault(q.Get("start"), "#3b82f6"),
			End:       orDefault(q.Get("end"), "#1e40af"),
			TextColor: orDefault(q.Get("text"), "#ffffff"),
		},
		CutLineColor: orDefault(q.Get("cut"), "#000000"),
	}
	if v := q.Get("discount"); v != "" {
		p.ShowDiscount = true
		p.DiscountPrice = v
		if lines := q.Get("lines"); lines != "" {
			p.DiscountLines = strings.SplitN(lines, "\n", 2)
		}
	}
	if for2, from3 := q.Get("for2"), q.Get("from3"); for2 != "" && from3 != "" {
		p.IsMultiTier = true
		p.ShowDiscount = false
		p.Tiers = &pricing.TierPrices{For1: p.BasePrice, For2: for2, From3: from3}
	}
	if border := q.Get("border"); border != "" {
		p.NeedsBorder = true
		p.BorderColor = border
	}
	if banner := q.Get("banner"); banner != "" {
		p.ShowLabel = true
		p.LabelText = banner
	}
	return p
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
