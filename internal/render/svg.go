package render

import (
	"fmt"
	"html"
	"strings"

	"pricetag-studio/internal/pricing"
)

// Tag dimensions in pixels, a 90×55mm label at ~96 DPI.
const (
	TagWidth  = 340
	TagHeight = 208
)

// TagSVG renders one price tag as a standalone SVG document. It consumes
// the descriptor as-is and derives nothing on its own.
func TagSVG(p pricing.RenderParams) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		TagWidth, TagHeight, TagWidth, TagHeight)

	fmt.Fprintf(&b,
		`<defs><linearGradient id="bg" x1="0" y1="0" x2="1" y2="1">`+
			`<stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/>`+
			`</linearGradient></defs>`,
		p.Theme.Start, p.Theme.End)

	if p.NeedsBorder {
		fmt.Fprintf(&b,
			`<rect x="1" y="1" width="%d" height="%d" rx="8" fill="url(#bg)" stroke="%s" stroke-width="2"/>`,
			TagWidth-2, TagHeight-2, p.BorderColor)
	} else {
		fmt.Fprintf(&b,
			`<rect x="0" y="0" width="%d" height="%d" rx="8" fill="url(#bg)"/>`,
			TagWidth, TagHeight)
	}

	if p.ShowLabel && p.LabelText != "" {
		fmt.Fprintf(&b,
			`<g transform="translate(%d,0)"><path d="M0 0h84l-14 32H0z" fill="#ffffff" opacity="0.92"/>`+
				`<text x="34" y="21" font-family="Arial, sans-serif" font-size="15" font-weight="bold" `+
				`fill="%s" text-anchor="middle">%s</text></g>`,
			TagWidth-84, p.Theme.Start, html.EscapeString(p.LabelText))
	}

	fmt.Fprintf(&b,
		`<text x="16" y="40" font-family="Arial, sans-serif" font-size="18" fill="%s">%s</text>`,
		p.Theme.TextColor, html.EscapeString(p.DisplayLabel))

	switch {
	case p.IsMultiTier && p.Tiers != nil:
		writeTierBlock(&b, p)
	case p.ShowDiscount:
		writeDiscountBlock(&b, p)
	default:
		fmt.Fprintf(&b,
			`<text x="16" y="140" font-family="Arial, sans-serif" font-size="56" font-weight="bold" fill="%s">%s ₽</text>`,
			p.Theme.TextColor, p.BasePrice)
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func writeTierBlock(b *strings.Builder, p pricing.RenderParams) {
	rows := []struct{ qty, price string }{
		{"1 шт", p.Tiers.For1},
		{"2 шт", p.Tiers.For2},
		{"от 3 шт", p.Tiers.From3},
	}
	y := 90
	for _, row := range rows {
		fmt.Fprintf(b,
			`<text x="16" y="%d" font-family="Arial, sans-serif" font-size="22" fill="%s">%s</text>`,
			y, p.Theme.TextColor, html.EscapeString(row.qty))
		fmt.Fprintf(b,
			`<text x="%d" y="%d" font-family="Arial, sans-serif" font-size="26" font-weight="bold" fill="%s" text-anchor="end">%s ₽</text>`,
			TagWidth-16, y, p.Theme.TextColor, row.price)
		y += 38
	}
}

func writeDiscountBlock(b *strings.Builder, p pricing.RenderParams) {
	// Old price struck through above the big discount price.
	fmt.Fprintf(b,
		`<text x="16" y="82" font-family="Arial, sans-serif" font-size="24" fill="%s" opacity="0.7" text-decoration="line-through">%s ₽</text>`,
		p.Theme.TextColor, p.BasePrice)
	fmt.Fprintf(b,
		`<text x="16" y="146" font-family="Arial, sans-serif" font-size="52" font-weight="bold" fill="%s">%s ₽</text>`,
		p.Theme.TextColor, p.DiscountPrice)

	y := 172
	for _, line := range p.DiscountLines {
		fmt.Fprintf(b,
			`<text x="16" y="%d" font-family="Arial, sans-serif" font-size="14" fill="%s" opacity="0.85">%s</text>`,
			y, p.Theme.TextColor, html.EscapeString(line))
		y += 18
	}
}
