package charts

import (
	"math"
	"sort"

	"finvis/pkg/contracts/domain"
)

// Hex is one occupied cell of a hexagonal binning. X and Y are the centre
// in data units; Width and Height are the cell extent in data units.
type Hex struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Count  int     `json:"count"`
}

// Vertices returns the six corners of the cell in data units, pointy top
func (h Hex) Vertices() [6][2]float64 {
	dx, dy := h.Width/2, h.Height/4
	return [6][2]float64{
		{h.X + dx, h.Y - dy},
		{h.X + dx, h.Y + dy},
		{h.X, h.Y + 2*dy},
		{h.X - dx, h.Y + dy},
		{h.X - dx, h.Y - dy},
		{h.X, h.Y - 2*dy},
	}
}

type hexKey struct {
	odd  bool
	i, j int
}

// BinHexagons counts pairs into a hexagonal grid with gridSize cells across
// the x range. Two offset rectangular lattices are overlaid and each point
// goes to the nearest centre of either. Only occupied cells are returned,
// ordered bottom to top then left to right.
func BinHexagons(pairs []domain.Pair, gridSize int) []Hex {
	if len(pairs) == 0 {
		return nil
	}
	if gridSize < 1 {
		gridSize = DefaultGridSize
	}

	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, p := range pairs {
		xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
		ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
	}
	xmin, xmax = nonSingular(xmin, xmax)
	ymin, ymax = nonSingular(ymin, ymax)

	nx := float64(gridSize)
	ny := math.Max(1, math.Floor(nx/math.Sqrt(3)))
	sx := (xmax - xmin) / nx
	sy := (ymax - ymin) / ny

	counts := make(map[hexKey]int)
	for _, p := range pairs {
		ix := (p.X - xmin) / sx
		iy := (p.Y - ymin) / sy

		i1, j1 := math.Round(ix), math.Round(iy)
		i2, j2 := math.Floor(ix), math.Floor(iy)
		d1 := sq(ix-i1) + 3*sq(iy-j1)
		d2 := sq(ix-i2-0.5) + 3*sq(iy-j2-0.5)

		if d1 < d2 {
			counts[hexKey{odd: false, i: int(i1), j: int(j1)}]++
		} else {
			counts[hexKey{odd: true, i: int(i2), j: int(j2)}]++
		}
	}

	hexes := make([]Hex, 0, len(counts))
	for k, n := range counts {
		cx, cy := float64(k.i), float64(k.j)
		if k.odd {
			cx, cy = cx+0.5, cy+0.5
		}
		hexes = append(hexes, Hex{
			X:      xmin + cx*sx,
			Y:      ymin + cy*sy,
			Width:  sx,
			Height: 2 * sy / 3,
			Count:  n,
		})
	}
	sort.Slice(hexes, func(a, b int) bool {
		if hexes[a].Y != hexes[b].Y {
			return hexes[a].Y < hexes[b].Y
		}
		return hexes[a].X < hexes[b].X
	})
	return hexes
}

// MaxCount returns the largest cell count
func MaxCount(hexes []Hex) int {
	peak := 0
	for _, h := range hexes {
		if h.Count > peak {
			peak = h.Count
		}
	}
	return peak
}

func nonSingular(lo, hi float64) (float64, float64) {
	if lo != hi {
		return lo, hi
	}
	pad := math.Abs(lo) * 0.1
	if pad == 0 {
		pad = 0.1
	}
	return lo - pad, hi + pad
}

func sq(v float64) float64 { return v * v }
