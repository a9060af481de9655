package layout

import (
	"finvis/internal/charts"
)

// TabsLeft places the tab strip on the left of the page
const TabsLeft = "left"

// Tab layouts
const (
	LayoutColumn = "column"
	LayoutGrid   = "grid"
)

// Dashboard is the composed, read-only view served to the viewer
type Dashboard struct {
	Title        string `json:"title"`
	TabsLocation string `json:"tabs_location"`
	Tabs         []Tab  `json:"tabs"`

	index map[string]Cell
}

// Tab is one top-level panel of the dashboard
type Tab struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Layout   string    `json:"layout"`
	Heading  string    `json:"heading,omitempty"`
	Sections []Section `json:"sections,omitempty"`
	Grid     *Grid     `json:"grid,omitempty"`
}

// Section is a headed run of cells in a column tab
type Section struct {
	Header string `json:"header,omitempty"`
	Cells  []Cell `json:"cells"`
}

// Grid is a fixed rows x columns arrangement bounded by a maximum size
type Grid struct {
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
	Cells     []Cell `json:"cells"`
}

// Cell holds either a chart or the message that replaces a missing one
type Cell struct {
	ID      string        `json:"id"`
	Row     int           `json:"row"`
	Col     int           `json:"col"`
	Metric  string        `json:"metric,omitempty"`
	Chart   *charts.Chart `json:"chart,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Missing reports whether the cell is a placeholder
func (c Cell) Missing() bool {
	return c.Chart == nil
}

// Result returns the chart result the cell was built from
func (c Cell) Result() charts.Result {
	if c.Chart != nil {
		return c.Chart
	}
	return charts.MissingMetric{ID: c.ID, Name: c.Metric}
}

// Lookup finds a cell by id
func (d *Dashboard) Lookup(id string) (Cell, bool) {
	c, ok := d.index[id]
	return c, ok
}

// Cells returns every cell in page order
func (d *Dashboard) Cells() []Cell {
	var out []Cell
	for _, tab := range d.Tabs {
		for _, s := range tab.Sections {
			out = append(out, s.Cells...)
		}
		if tab.Grid != nil {
			out = append(out, tab.Grid.Cells...)
		}
	}
	return out
}

// Summary counts charts and placeholders
type Summary struct {
	Tabs    int            `json:"tabs"`
	Charts  int            `json:"charts"`
	Missing int            `json:"missing"`
	ByKind  map[string]int `json:"by_kind"`
}

// Summarize returns chart counts across all tabs
func (d *Dashboard) Summarize() Summary {
	s := Summary{Tabs: len(d.Tabs), ByKind: make(map[string]int)}
	for _, c := range d.Cells() {
		if c.Missing() {
			s.Missing++
			continue
		}
		s.Charts++
		s.ByKind[string(c.Chart.Kind)]++
	}
	return s
}

func (d *Dashboard) reindex() {
	d.index = make(map[string]Cell)
	for _, c := range d.Cells() {
		d.index[c.ID] = c
	}
}
