package charts

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"
)

// Hexbin plot margins in pixels; the right margin holds the colour bar
const (
	hexMarginLeft   = 80
	hexMarginRight  = 110
	hexMarginTop    = 50
	hexMarginBottom = 70
	hexTicks        = 5
	colorBarWidth   = 16
)

type plotArea struct {
	left, top, width, height float64
	x0, x1, y0, y1           float64
}

func (p plotArea) px(x float64) float64 {
	return p.left + (x-p.x0)/(p.x1-p.x0)*p.width
}

func (p plotArea) py(y float64) float64 {
	return p.top + p.height - (y-p.y0)/(p.y1-p.y0)*p.height
}

// renderHexbin writes the hexbin chart as SVG. Every cell carries a
// "Count: n" tooltip.
func renderHexbin(w io.Writer, c *Chart) error {
	area := plotArea{
		left:   hexMarginLeft,
		top:    hexMarginTop,
		width:  float64(c.Width - hexMarginLeft - hexMarginRight),
		height: float64(c.Height - hexMarginTop - hexMarginBottom),
		x0:     math.Inf(1),
		x1:     math.Inf(-1),
		y0:     math.Inf(1),
		y1:     math.Inf(-1),
	}
	if area.width <= 0 || area.height <= 0 {
		return fmt.Errorf("chart size %dx%d is too small", c.Width, c.Height)
	}
	for _, h := range c.Hexes {
		area.x0 = math.Min(area.x0, h.X-h.Width/2)
		area.x1 = math.Max(area.x1, h.X+h.Width/2)
		area.y0 = math.Min(area.y0, h.Y-h.Height/2)
		area.y1 = math.Max(area.y1, h.Y+h.Height/2)
	}
	peak := MaxCount(c.Hexes)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		c.Width, c.Height, c.Width, c.Height)
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>`)
	fmt.Fprintf(&b, `<text x="%d" y="28" text-anchor="middle" font-size="16">%s</text>`, c.Width/2, html.EscapeString(c.Title))

	b.WriteString(`<g class="hexes" stroke="#ffffff" stroke-width="0.5">`)
	for _, h := range c.Hexes {
		var pts []string
		for _, v := range h.Vertices() {
			pts = append(pts, fmt.Sprintf("%.2f,%.2f", area.px(v[0]), area.py(v[1])))
		}
		fmt.Fprintf(&b, `<polygon points="%s" fill="%s"><title>Count: %d</title></polygon>`,
			strings.Join(pts, " "), hexColor(Reds(float64(h.Count)/float64(peak))), h.Count)
	}
	b.WriteString(`</g>`)

	writeAxes(&b, area, c.XLabel, c.YLabel)
	writeColorBar(&b, area, peak)

	b.WriteString(`</svg>`)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeAxes(b *strings.Builder, a plotArea, xLabel, yLabel string) {
	bottom := a.top + a.height
	right := a.left + a.width
	b.WriteString(`<g class="axes" stroke="#333333" font-size="11">`)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`, a.left, bottom, right, bottom)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`, a.left, a.top, a.left, bottom)

	for i := 0; i < hexTicks; i++ {
		f := float64(i) / float64(hexTicks-1)

		xv := a.x0 + f*(a.x1-a.x0)
		x := a.px(xv)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`, x, bottom, x, bottom+5)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" stroke="none" text-anchor="end" transform="rotate(-45 %.2f %.2f)">%s</text>`,
			x, bottom+16, x, bottom+16, formatNumber(xv))

		yv := a.y0 + f*(a.y1-a.y0)
		y := a.py(yv)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`, a.left-5, y, a.left, y)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" stroke="none" text-anchor="end" dominant-baseline="middle">%s</text>`,
			a.left-8, y, formatNumber(yv))
	}
	b.WriteString(`</g>`)

	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" text-anchor="middle" font-size="13">%s</text>`,
		a.left+a.width/2, bottom+hexMarginBottom-8, html.EscapeString(xLabel))
	fmt.Fprintf(b, `<text x="18" y="%.2f" text-anchor="middle" font-size="13" transform="rotate(-90 18 %.2f)">%s</text>`,
		a.top+a.height/2, a.top+a.height/2, html.EscapeString(yLabel))
}

func writeColorBar(b *strings.Builder, a plotArea, peak int) {
	x := a.left + a.width + 30
	b.WriteString(`<defs><linearGradient id="hexbin-reds" x1="0" y1="1" x2="0" y2="0">`)
	for i, c := range reds {
		fmt.Fprintf(b, `<stop offset="%.3f" stop-color="%s"/>`, float64(i)/float64(len(reds)-1), hexColor(c))
	}
	b.WriteString(`</linearGradient></defs>`)
	fmt.Fprintf(b, `<rect class="colorbar" x="%.2f" y="%.2f" width="%d" height="%.2f" fill="url(#hexbin-reds)" stroke="#333333"/>`,
		x, a.top, colorBarWidth, a.height)

	b.WriteString(`<g font-size="11">`)
	for i := 0; i < hexTicks; i++ {
		f := float64(i) / float64(hexTicks-1)
		y := a.top + a.height - f*a.height
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" dominant-baseline="middle">%s</text>`,
			x+float64(colorBarWidth)+6, y, formatNumber(f*float64(peak)))
	}
	b.WriteString(`</g>`)
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" text-anchor="middle" font-size="12">%s</text>`,
		x+float64(colorBarWidth)/2, a.top-10, CountLabel)
}
