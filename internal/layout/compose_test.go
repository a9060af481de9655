package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finvis/internal/charts"
	"finvis/internal/config"
	"finvis/internal/dataprocessing"
	"finvis/internal/shared/testutil"
	"finvis/pkg/contracts/domain"
)

func sampleStatements(t *testing.T, sheets map[string]testutil.SheetRows) *domain.Statements {
	t.Helper()
	schema := config.DefaultSchema()
	wb, err := dataprocessing.LoadWorkbook(testutil.WriteWorkbook(t, sheets), schema)
	require.NoError(t, err)
	s, err := dataprocessing.Normalize(wb, schema)
	require.NoError(t, err)
	return s
}

func TestCompose(t *testing.T) {
	d := Compose(sampleStatements(t, testutil.SampleSheets()), config.DefaultSchema())

	assert.Equal(t, "Intel Financial Data Dashboard", d.Title)
	assert.Equal(t, "left", d.TabsLocation)
	require.Len(t, d.Tabs, 3)
	assert.Equal(t, "Financial Overview", d.Tabs[0].Title)
	assert.Equal(t, "Key Metrics", d.Tabs[1].Title)
	assert.Equal(t, "Heatmap Analysis", d.Tabs[2].Title)

	t.Run("overview sections", func(t *testing.T) {
		overview := d.Tabs[0]
		assert.Equal(t, LayoutColumn, overview.Layout)
		assert.Equal(t, "Intel Financial Data Dashboard", overview.Heading)
		require.Len(t, overview.Sections, 3)
		assert.Equal(t, "Income Statement Metrics", overview.Sections[0].Header)
		assert.Equal(t, "Balance Sheet Metrics", overview.Sections[1].Header)
		assert.Equal(t, "Cash Flow Statement Metrics", overview.Sections[2].Header)
		assert.Len(t, overview.Sections[0].Cells, 5)
		assert.Len(t, overview.Sections[1].Cells, 5)
		assert.Len(t, overview.Sections[2].Cells, 4)

		first := overview.Sections[0].Cells[0]
		require.False(t, first.Missing())
		assert.Equal(t, "overview-totalRevenue", first.ID)
		assert.Equal(t, "Total Revenue Over Time", first.Chart.Title)
		assert.Equal(t, "Million USD", first.Chart.YLabel)
		assert.Equal(t, 600, first.Chart.Width)
		assert.Equal(t, 400, first.Chart.Height)

		// repaired column is charted under its canonical name
		operating := overview.Sections[0].Cells[1]
		assert.False(t, operating.Missing())
		assert.Equal(t, "operatingIncome", operating.Chart.Metric)
	})

	t.Run("key metrics grid", func(t *testing.T) {
		grid := d.Tabs[1].Grid
		require.NotNil(t, grid)
		assert.Equal(t, 2, grid.Rows)
		assert.Equal(t, 2, grid.Cols)
		assert.Equal(t, 1000, grid.MaxWidth)
		assert.Equal(t, 800, grid.MaxHeight)
		require.Len(t, grid.Cells, 4)

		kinds := []charts.Kind{charts.KindHistogram, charts.KindLine, charts.KindLine, charts.KindScatter}
		positions := [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
		for i, c := range grid.Cells {
			require.False(t, c.Missing(), c.ID)
			assert.Equal(t, kinds[i], c.Chart.Kind, c.ID)
			assert.Equal(t, positions[i], [2]int{c.Row, c.Col}, c.ID)
			assert.Equal(t, 400, c.Chart.Width, c.ID)
			assert.Equal(t, 400, c.Chart.Height, c.ID)
		}
		assert.Equal(t, "EPS Over Time", grid.Cells[1].Chart.Title)
		assert.Len(t, grid.Cells[3].Chart.Pairs, 4)
	})

	t.Run("heatmap", func(t *testing.T) {
		heatmap := d.Tabs[2]
		assert.Equal(t, "Net Income vs Dividend Payout Heatmap", heatmap.Heading)
		require.Len(t, heatmap.Sections, 1)
		cell := heatmap.Sections[0].Cells[0]
		require.False(t, cell.Missing())
		assert.Equal(t, charts.KindHexbin, cell.Chart.Kind)
		assert.Equal(t, 20, cell.Chart.GridSize)
		assert.Equal(t, 600, cell.Chart.Width)
	})

	t.Run("lookup and summary", func(t *testing.T) {
		cell, ok := d.Lookup("key-eps")
		require.True(t, ok)
		assert.Equal(t, "EPS", cell.Metric)
		_, ok = d.Lookup("nope")
		assert.False(t, ok)

		s := d.Summarize()
		assert.Equal(t, 3, s.Tabs)
		assert.Equal(t, 19, s.Charts)
		assert.Equal(t, 0, s.Missing)
		assert.Equal(t, 1, s.ByKind["hexbin"])
		assert.Equal(t, 16, s.ByKind["line"])
	})
}

func TestComposeMissingMetrics(t *testing.T) {
	sheets := testutil.SampleSheets()
	// drop dividendPayout from the cash flow statement
	cash := testutil.SheetRows{}
	for _, row := range sheets["Cash Flow Statement"] {
		cash = append(cash, row[:4])
	}
	sheets["Cash Flow Statement"] = cash

	d := Compose(sampleStatements(t, sheets), config.DefaultSchema())

	cell, ok := d.Lookup("overview-dividendPayout")
	require.True(t, ok)
	assert.True(t, cell.Missing())
	assert.Equal(t, "Metric 'dividendPayout' not found in data.", cell.Message)
	assert.Equal(t, charts.MissingMetric{ID: "overview-dividendPayout", Name: "dividendPayout"}, cell.Result())

	for _, id := range []string{"key-dividend-histogram", "key-netincome-dividend", "heatmap-netincome-dividend"} {
		cell, ok := d.Lookup(id)
		require.True(t, ok, id)
		assert.True(t, cell.Missing(), id)
		assert.Equal(t, "Metric 'dividendPayout' not found in data.", cell.Message, id)
	}

	s := d.Summarize()
	assert.Equal(t, 4, s.Missing)
	assert.Equal(t, 15, s.Charts)
}

func TestDashboardJSON(t *testing.T) {
	d := Compose(sampleStatements(t, testutil.SampleSheets()), config.DefaultSchema())

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded struct {
		Title        string `json:"title"`
		TabsLocation string `json:"tabs_location"`
		Tabs         []struct {
			Title string `json:"title"`
		} `json:"tabs"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "left", decoded.TabsLocation)
	assert.Len(t, decoded.Tabs, 3)
}
