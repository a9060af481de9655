package charts

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

const dateTickFormat = "2006-01-02"

// Render writes c to w as an SVG document
func Render(w io.Writer, c *Chart) error {
	svg, err := SVG(c)
	if err != nil {
		return err
	}
	_, err = w.Write(svg)
	return err
}

// SVG renders c into a standalone SVG document
func SVG(c *Chart) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch c.Kind {
	case KindLine:
		if len(c.Points) == 0 {
			return MessageSVG(c.Width, c.Height, "No data for "+c.Title), nil
		}
		g := lineChart(c)
		err = g.Render(chart.SVG, &buf)
	case KindHistogram:
		if len(c.Bins) == 0 {
			return MessageSVG(c.Width, c.Height, "No data for "+c.Title), nil
		}
		g := histogramChart(c)
		err = g.Render(chart.SVG, &buf)
	case KindScatter:
		if len(c.Pairs) == 0 {
			return MessageSVG(c.Width, c.Height, "No data for "+c.Title), nil
		}
		g := scatterChart(c)
		err = g.Render(chart.SVG, &buf)
	case KindHexbin:
		if len(c.Hexes) == 0 {
			return MessageSVG(c.Width, c.Height, "No data for "+c.Title), nil
		}
		err = renderHexbin(&buf, c)
	default:
		return nil, fmt.Errorf("unknown chart kind %q", c.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s chart %q: %w", c.Kind, c.ID, err)
	}
	return buf.Bytes(), nil
}

// ResultSVG renders any Result. Placeholders and render failures become
// an SVG carrying the message text.
func ResultSVG(r Result) []byte {
	switch v := r.(type) {
	case *Chart:
		svg, err := SVG(v)
		if err != nil {
			return MessageSVG(v.Width, v.Height, err.Error())
		}
		return svg
	case MissingMetric:
		return MessageSVG(DefaultWidth, DefaultHeight, v.Message())
	default:
		return MessageSVG(DefaultWidth, DefaultHeight, "unsupported chart")
	}
}

// MessageSVG returns an SVG box of the given size showing text
func MessageSVG(width, height int, text string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	buf.WriteString(`<rect width="100%" height="100%" fill="#ffffff" stroke="#cccccc"/>`)
	fmt.Fprintf(&buf, `<text x="50%%" y="50%%" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="14" fill="#555555">%s</text>`,
		html.EscapeString(text))
	buf.WriteString(`</svg>`)
	return buf.Bytes()
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}}
}

func lineChart(c *Chart) chart.Chart {
	xs := make([]time.Time, len(c.Points))
	ys := make([]float64, len(c.Points))
	for i, p := range c.Points {
		xs[i], ys[i] = p.Date, p.Value
	}
	// A single observation still needs a non-empty x range
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	return chart.Chart{
		Title:      c.Title,
		Width:      c.Width,
		Height:     c.Height,
		Background: background(),
		XAxis: chart.XAxis{
			Name:           c.XLabel,
			ValueFormatter: chart.TimeValueFormatterWithFormat(dateTickFormat),
			Style:          chart.Style{TextRotationDegrees: c.TickRotation},
		},
		YAxis: chart.YAxis{
			Name:           c.YLabel,
			ValueFormatter: numberFormatter,
			Range:          flatRange(ys),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    c.Metric,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: seriesColor,
					StrokeWidth: 2,
					DotColor:    seriesColor,
					DotWidth:    3,
				},
			},
		},
	}
}

// histogramChart draws the bins as a filled step outline
func histogramChart(c *Chart) chart.Chart {
	xs := make([]float64, 0, 2*len(c.Bins)+2)
	ys := make([]float64, 0, 2*len(c.Bins)+2)
	xs, ys = append(xs, c.Bins[0].Lower), append(ys, 0)
	for _, b := range c.Bins {
		xs = append(xs, b.Lower, b.Upper)
		ys = append(ys, float64(b.Count), float64(b.Count))
	}
	xs, ys = append(xs, c.Bins[len(c.Bins)-1].Upper), append(ys, 0)

	return chart.Chart{
		Title:      c.Title,
		Width:      c.Width,
		Height:     c.Height,
		Background: background(),
		XAxis: chart.XAxis{
			Name:           c.XLabel,
			ValueFormatter: numberFormatter,
			Style:          chart.Style{TextRotationDegrees: c.TickRotation},
		},
		YAxis: chart.YAxis{
			Name:           c.YLabel,
			ValueFormatter: numberFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    c.Metric,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: seriesColor,
					StrokeWidth: 1,
					FillColor:   seriesColor.WithAlpha(160),
				},
			},
		},
	}
}

func scatterChart(c *Chart) chart.Chart {
	xs := make([]float64, len(c.Pairs))
	ys := make([]float64, len(c.Pairs))
	for i, p := range c.Pairs {
		xs[i], ys[i] = p.X, p.Y
	}

	return chart.Chart{
		Title:      c.Title,
		Width:      c.Width,
		Height:     c.Height,
		Background: background(),
		XAxis: chart.XAxis{
			Name:           c.XLabel,
			ValueFormatter: numberFormatter,
			Style:          chart.Style{TextRotationDegrees: c.TickRotation},
			Range:          flatRange(xs),
		},
		YAxis: chart.YAxis{
			Name:           c.YLabel,
			ValueFormatter: numberFormatter,
			Range:          flatRange(ys),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotColor:    scatterColor,
					DotWidth:    5,
				},
			},
		},
	}
}

// flatRange widens a constant series so the axis range is not empty.
// It returns nil when the values already span a range.
func flatRange(values []float64) chart.Range {
	if len(values) == 0 {
		return nil
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return nil
		}
	}
	lo, hi := nonSingular(values[0], values[0])
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func numberFormatter(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return formatNumber(n)
	case int:
		return formatNumber(float64(n))
	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
