package layout

import (
	"finvis/internal/charts"
	"finvis/internal/config"
	"finvis/pkg/contracts/domain"
)

// Tab titles
const (
	TabOverview   = "Financial Overview"
	TabKeyMetrics = "Key Metrics"
	TabHeatmap    = "Heatmap Analysis"
)

// Key metrics grid bounds
const (
	GridMaxWidth  = 1000
	GridMaxHeight = 800
)

const (
	millionsLabel  = "Million USD"
	dividendLabel  = "Dividend Payout (Million USD)"
	netIncomeLabel = "Net Income (Million USD)"
	epsLabel       = "EPS (USD)"

	histogramTitle = "Distribution of Dividend Payout"
	epsTitle       = "EPS Over Time"
	capexTitle     = "Capital Expenditures Over Time"
	scatterTitle   = "Net Income vs Dividend Payout"
	heatmapTitle   = "Net Income vs Dividend Payout Heatmap"
)

// Compose arranges the charts of s into the three dashboard tabs
func Compose(s *domain.Statements, schema config.Schema) *Dashboard {
	km := schema.KeyMetrics
	pairs, err := charts.InnerJoin(s.Income, km.NetIncomeColumn, s.CashFlow, km.DividendColumn)
	j := joined{pairs: pairs, err: err}

	d := &Dashboard{
		Title:        schema.Title,
		TabsLocation: TabsLeft,
		Tabs: []Tab{
			overviewTab(s, schema),
			keyMetricsTab(s, km, j),
			heatmapTab(km, j),
		},
	}
	d.reindex()
	return d
}

// joined is net income paired with dividend payout on common dates
type joined struct {
	pairs []domain.Pair
	err   error
}

// result builds a chart from the pairs, or the placeholder for whichever
// column was missing
func (j joined) result(id string, build func([]domain.Pair, charts.Option) *charts.Chart) charts.Result {
	opt := charts.WithID(id)
	if m, ok := charts.MissingFrom(j.err, opt); ok {
		return m
	}
	return build(j.pairs, opt)
}

func overviewTab(s *domain.Statements, schema config.Schema) Tab {
	tab := Tab{
		ID:      "overview",
		Title:   TabOverview,
		Layout:  LayoutColumn,
		Heading: schema.Title,
	}

	tables := s.Tables()
	for i, spec := range schema.Sheets() {
		if spec.Section == "" {
			continue
		}
		section := Section{Header: spec.Section}
		for row, m := range spec.Metrics {
			r := charts.Build(tables[i], m.Column, m.Title, millionsLabel,
				charts.WithID("overview-"+m.Column))
			section.Cells = append(section.Cells, newCell(r, m.Column, row, 0))
		}
		tab.Sections = append(tab.Sections, section)
	}
	return tab
}

func keyMetricsTab(s *domain.Statements, km config.KeyMetricsSpec, j joined) Tab {
	size := charts.WithSize(charts.GridWidth, charts.GridHeight)

	hist := charts.Histogram(s.CashFlow, km.DividendColumn, histogramTitle, dividendLabel, km.HistogramBins,
		charts.WithID("key-dividend-histogram"), size)
	eps := charts.Build(s.Stock, km.EPSColumn, epsTitle, epsLabel,
		charts.WithID("key-eps"), size)
	capex := charts.Build(s.CashFlow, km.CapexColumn, capexTitle, millionsLabel,
		charts.WithID("key-capex"), size)
	scatter := j.result("key-netincome-dividend", func(pairs []domain.Pair, id charts.Option) *charts.Chart {
		return charts.Scatter(pairs, scatterTitle, netIncomeLabel, dividendLabel, id, size)
	})

	return Tab{
		ID:     "key-metrics",
		Title:  TabKeyMetrics,
		Layout: LayoutGrid,
		Grid: &Grid{
			Rows:      2,
			Cols:      2,
			MaxWidth:  GridMaxWidth,
			MaxHeight: GridMaxHeight,
			Cells: []Cell{
				newCell(hist, km.DividendColumn, 0, 0),
				newCell(eps, km.EPSColumn, 0, 1),
				newCell(capex, km.CapexColumn, 1, 0),
				newCell(scatter, km.NetIncomeColumn, 1, 1),
			},
		},
	}
}

func heatmapTab(km config.KeyMetricsSpec, j joined) Tab {
	hexbin := j.result("heatmap-netincome-dividend", func(pairs []domain.Pair, id charts.Option) *charts.Chart {
		return charts.Hexbin(pairs, heatmapTitle, netIncomeLabel, dividendLabel, km.HexbinGridSize, id)
	})

	return Tab{
		ID:      "heatmap",
		Title:   TabHeatmap,
		Layout:  LayoutColumn,
		Heading: heatmapTitle,
		Sections: []Section{
			{Cells: []Cell{newCell(hexbin, km.NetIncomeColumn, 0, 0)}},
		},
	}
}

// newCell places a chart result in the layout
func newCell(r charts.Result, metric string, row, col int) Cell {
	switch v := r.(type) {
	case *charts.Chart:
		return Cell{ID: v.ID, Row: row, Col: col, Metric: metric, Chart: v}
	case charts.MissingMetric:
		return Cell{ID: v.ID, Row: row, Col: col, Metric: v.Name, Message: v.Message()}
	default:
		return Cell{Row: row, Col: col, Metric: metric, Message: "unsupported chart"}
	}
}
