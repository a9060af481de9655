package charts

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// reds is the sequential Reds colour map, light to dark
var reds = []drawing.Color{
	drawing.ColorFromHex("fff5f0"),
	drawing.ColorFromHex("fee0d2"),
	drawing.ColorFromHex("fcbba1"),
	drawing.ColorFromHex("fc9272"),
	drawing.ColorFromHex("fb6a4a"),
	drawing.ColorFromHex("ef3b2c"),
	drawing.ColorFromHex("cb181d"),
	drawing.ColorFromHex("a50f15"),
	drawing.ColorFromHex("67000d"),
}

var (
	seriesColor  = drawing.ColorFromHex("1f77b4")
	scatterColor = drawing.ColorFromHex("d62728")
)

// Reds maps t in [0, 1] onto the Reds colour map
func Reds(t float64) drawing.Color {
	if math.IsNaN(t) || t <= 0 {
		return reds[0]
	}
	if t >= 1 {
		return reds[len(reds)-1]
	}
	pos := t * float64(len(reds)-1)
	i := int(pos)
	f := pos - float64(i)
	a, b := reds[i], reds[i+1]
	return drawing.Color{
		R: lerp(a.R, b.R, f),
		G: lerp(a.G, b.G, f),
		B: lerp(a.B, b.B, f),
		A: 255,
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// hexColor formats c as #rrggbb
func hexColor(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
