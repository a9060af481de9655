package charts

import (
	stderrors "errors"
	"fmt"
	"math"

	"finvis/internal/errors"
	"finvis/pkg/contracts/domain"
)

// Kind identifies how a chart is drawn
type Kind string

const (
	KindLine      Kind = "line"
	KindHistogram Kind = "histogram"
	KindScatter   Kind = "scatter"
	KindHexbin    Kind = "hexbin"
)

// Default chart geometry
const (
	DefaultWidth        = 600
	DefaultHeight       = 400
	GridWidth           = 400
	GridHeight          = 400
	HexbinWidth         = 600
	HexbinHeight        = 600
	DefaultTickRotation = 45.0
	DefaultBins         = 20
	DefaultGridSize     = 20

	DateLabel  = "Date"
	CountLabel = "Count"
)

// Result is either a *Chart or a MissingMetric placeholder
type Result interface {
	isResult()
}

// MissingMetric stands in for a chart whose metric is absent from the data
type MissingMetric struct {
	ID   string `json:"id"`
	Name string `json:"metric"`
}

func (MissingMetric) isResult() {}

// Message is the text shown in place of the chart
func (m MissingMetric) Message() string {
	return fmt.Sprintf("Metric '%s' not found in data.", m.Name)
}

// Bin is one bar of a histogram. Lower is inclusive; Upper is exclusive
// except for the last bin.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Chart is a fully computed chart, ready to render
type Chart struct {
	ID           string  `json:"id"`
	Kind         Kind    `json:"kind"`
	Title        string  `json:"title"`
	Metric       string  `json:"metric,omitempty"`
	XLabel       string  `json:"x_label"`
	YLabel       string  `json:"y_label"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	TickRotation float64 `json:"tick_rotation"`

	Points   []domain.Point `json:"points,omitempty"`
	Bins     []Bin          `json:"bins,omitempty"`
	Pairs    []domain.Pair  `json:"pairs,omitempty"`
	Hexes    []Hex          `json:"hexes,omitempty"`
	GridSize int            `json:"grid_size,omitempty"`
}

func (*Chart) isResult() {}

// Option adjusts a chart after it is built
type Option func(*Chart)

// WithSize sets the rendered width and height in pixels
func WithSize(width, height int) Option {
	return func(c *Chart) {
		c.Width, c.Height = width, height
	}
}

// WithID sets the identifier the chart is served under
func WithID(id string) Option {
	return func(c *Chart) {
		c.ID = id
	}
}

func apply(c *Chart, opts []Option) *Chart {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func missing(metric string, opts []Option) MissingMetric {
	probe := apply(&Chart{ID: metric}, opts)
	return MissingMetric{ID: probe.ID, Name: metric}
}

// Build returns a line chart of metric over the table's date index, or a
// MissingMetric when the table has no such column.
func Build(table *domain.Table, metric, title, yLabel string, opts ...Option) Result {
	points, ok := table.Series(metric)
	if !ok {
		return missing(metric, opts)
	}
	return apply(&Chart{
		ID:           metric,
		Kind:         KindLine,
		Title:        title,
		Metric:       metric,
		XLabel:       DateLabel,
		YLabel:       yLabel,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		TickRotation: DefaultTickRotation,
		Points:       points,
	}, opts)
}

// Histogram returns the distribution of metric in equal-width bins
func Histogram(table *domain.Table, metric, title, xLabel string, bins int, opts ...Option) Result {
	values, ok := table.Column(metric)
	if !ok {
		return missing(metric, opts)
	}
	return apply(&Chart{
		ID:     metric + "-histogram",
		Kind:   KindHistogram,
		Title:  title,
		Metric: metric,
		XLabel: xLabel,
		YLabel: CountLabel,
		Width:  GridWidth,
		Height: GridHeight,
		Bins:   BinValues(values, bins),
	}, opts)
}

// BinValues counts values into n equal-width bins spanning their range.
// A constant series is centred in a range of width one.
func BinValues(values []float64, n int) []Bin {
	if n < 1 {
		n = DefaultBins
	}
	if len(values) == 0 {
		return nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Count++
	}
	return bins
}

// InnerJoin pairs colA of a with colB of b on the dates present in both
// tables, ordered by date. A missing column is a METRIC_NOT_FOUND error.
func InnerJoin(a *domain.Table, colA string, b *domain.Table, colB string) ([]domain.Pair, error) {
	if !a.HasColumn(colA) {
		return nil, errors.NewMetricNotFoundError(a.Name, colA)
	}
	if !b.HasColumn(colB) {
		return nil, errors.NewMetricNotFoundError(b.Name, colB)
	}
	pairs, _ := domain.JoinColumns(a, colA, b, colB)
	return pairs, nil
}

// Scatter returns a point chart of joined pairs
func Scatter(pairs []domain.Pair, title, xLabel, yLabel string, opts ...Option) *Chart {
	return apply(&Chart{
		ID:     "scatter",
		Kind:   KindScatter,
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Width:  GridWidth,
		Height: GridHeight,
		Pairs:  pairs,
	}, opts)
}

// Hexbin returns a hexagonal density chart of joined pairs
func Hexbin(pairs []domain.Pair, title, xLabel, yLabel string, gridSize int, opts ...Option) *Chart {
	if gridSize < 1 {
		gridSize = DefaultGridSize
	}
	return apply(&Chart{
		ID:       "hexbin",
		Kind:     KindHexbin,
		Title:    title,
		XLabel:   xLabel,
		YLabel:   yLabel,
		Width:    HexbinWidth,
		Height:   HexbinHeight,
		Hexes:    BinHexagons(pairs, gridSize),
		GridSize: gridSize,
	}, opts)
}

// MissingFrom converts a METRIC_NOT_FOUND error into its placeholder
func MissingFrom(err error, opts ...Option) (MissingMetric, bool) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Type != errors.ErrTypeMetricNotFound {
		return MissingMetric{}, false
	}
	metric, _ := appErr.Context["metric"].(string)
	return missing(metric, opts), true
}
