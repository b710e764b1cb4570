package render

import (
	"bytes"
	"fmt"
	"html/template"

	"pricetag-studio/internal/pricing"
)

const tagsPerPage = 8 // 2×4 grid on A4

var pageTmpl = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>Ценники</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { background: #ffffff; font-family: Arial, sans-serif; }
  .page {
    width: 210mm; min-height: 297mm; padding: 8mm;
    display: grid; grid-template-columns: repeat(2, 1fr);
    grid-auto-rows: min-content; gap: 4mm;
    page-break-after: always;
  }
  .tag { line-height: 0; }
  svg { width: 100%; height: auto; }
</style>
</head>
<body>
{{range .Pages}}<div class="page">
{{range .}}<div class="tag" style="outline: 1px dashed {{.CutLineColor}}">{{.SVG}}</div>
{{end}}</div>
{{end}}</body>
</html>
`))

type pageTag struct {
	SVG          template.HTML
	CutLineColor template.CSS
}

type pageData struct {
	Pages [][]pageTag
}

// PrintHTML renders the full print page: every tag as inline SVG, paged
// for A4. Each tag carries its own dashed cut line; with table designs
// and the auto cut-line sentinel, tags on one page can legitimately
// disagree on the color.
func PrintHTML(params []pricing.RenderParams) (string, error) {
	var data pageData

	var page []pageTag
	for _, p := range params {
		page = append(page, pageTag{
			SVG:          template.HTML(TagSVG(p)),
			CutLineColor: template.CSS(p.CutLineColor),
		})
		if len(page) == tagsPerPage {
			data.Pages = append(data.Pages, page)
			page = nil
		}
	}
	if len(page) > 0 {
		data.Pages = append(data.Pages, page)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute print template: %w", err)
	}
	return buf.String(), nil
}
