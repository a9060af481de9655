package charts

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finvis/internal/errors"
	"finvis/pkg/contracts/domain"
)

func quarter(i int) time.Time {
	return time.Date(2023, time.March, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 3*i, 0)
}

func newTable(name string, dates []time.Time, cols map[string][]float64) *domain.Table {
	t := domain.NewTable(name, "fiscalDateEnding")
	t.Dates = dates
	for k, v := range cols {
		t.SetColumn(k, v)
	}
	return t
}

func TestBuild(t *testing.T) {
	table := newTable("Income Statement", []time.Time{quarter(0), quarter(1)}, map[string][]float64{
		"totalRevenue": {11715, 12949},
	})

	t.Run("line chart for a present metric", func(t *testing.T) {
		r := Build(table, "totalRevenue", "Total Revenue Over Time", "Total Revenue (in millions)")
		c, ok := r.(*Chart)
		require.True(t, ok)
		assert.Equal(t, KindLine, c.Kind)
		assert.Equal(t, "totalRevenue", c.ID)
		assert.Equal(t, "Date", c.XLabel)
		assert.Equal(t, "Total Revenue (in millions)", c.YLabel)
		assert.Equal(t, 45.0, c.TickRotation)
		assert.Equal(t, DefaultWidth, c.Width)
		assert.Equal(t, DefaultHeight, c.Height)
		require.Len(t, c.Points, 2)
		assert.Equal(t, domain.Point{Date: quarter(1), Value: 12949}, c.Points[1])
	})

	t.Run("options", func(t *testing.T) {
		r := Build(table, "totalRevenue", "Revenue", "Revenue", WithSize(400, 400), WithID("overview-totalRevenue"))
		c := r.(*Chart)
		assert.Equal(t, 400, c.Width)
		assert.Equal(t, 400, c.Height)
		assert.Equal(t, "overview-totalRevenue", c.ID)
	})

	t.Run("placeholder for an absent metric", func(t *testing.T) {
		r := Build(table, "netIncome", "Net Income Over Time", "Net Income (in millions)", WithID("overview-netIncome"))
		m, ok := r.(MissingMetric)
		require.True(t, ok)
		assert.Equal(t, "netIncome", m.Name)
		assert.Equal(t, "overview-netIncome", m.ID)
		assert.Equal(t, "Metric 'netIncome' not found in data.", m.Message())
	})
}

func TestHistogram(t *testing.T) {
	table := newTable("Cash Flow Statement",
		[]time.Time{quarter(0), quarter(1), quarter(2), quarter(3)},
		map[string][]float64{"dividendPayout": {1500, 1500, 500, 500}})

	r := Histogram(table, "dividendPayout", "Dividend Payout Distribution", "Dividend Payout (in millions)", 20)
	c, ok := r.(*Chart)
	require.True(t, ok)
	assert.Equal(t, KindHistogram, c.Kind)
	assert.Equal(t, "Count", c.YLabel)
	require.Len(t, c.Bins, 20)
	assert.Equal(t, 2, c.Bins[0].Count)
	assert.Equal(t, 2, c.Bins[19].Count)
	assert.Equal(t, 500.0, c.Bins[0].Lower)
	assert.Equal(t, 1500.0, c.Bins[19].Upper)

	_, missing := Histogram(table, "EPS", "EPS", "EPS", 20).(MissingMetric)
	assert.True(t, missing)
}

func TestBinValues(t *testing.T) {
	t.Run("counts every value once", func(t *testing.T) {
		values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
		bins := BinValues(values, 5)
		require.Len(t, bins, 5)
		total := 0
		for _, b := range bins {
			total += b.Count
		}
		assert.Equal(t, len(values), total)
		assert.Equal(t, 3, bins[4].Count)
	})

	t.Run("constant series", func(t *testing.T) {
		bins := BinValues([]float64{3, 3, 3}, 4)
		require.Len(t, bins, 4)
		assert.Equal(t, 2.5, bins[0].Lower)
		assert.Equal(t, 3.5, bins[3].Upper)
		assert.Equal(t, 3, bins[2].Count)
	})

	t.Run("no values", func(t *testing.T) {
		assert.Nil(t, BinValues(nil, 20))
	})
}

func TestInnerJoin(t *testing.T) {
	income := newTable("Income Statement", []time.Time{quarter(0), quarter(1), quarter(2)}, map[string][]float64{
		"netIncome": {100, 200, 300},
	})
	cash := newTable("Cash Flow Statement", []time.Time{quarter(1), quarter(0), quarter(3)}, map[string][]float64{
		"dividendPayout": {20, 10, 40},
	})

	pairs, err := InnerJoin(income, "netIncome", cash, "dividendPayout")
	require.NoError(t, err)
	assert.Equal(t, []domain.Pair{
		{Date: quarter(0), X: 100, Y: 10},
		{Date: quarter(1), X: 200, Y: 20},
	}, pairs)

	t.Run("missing column", func(t *testing.T) {
		_, err := InnerJoin(income, "netIncome", cash, "EPS")
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrMetricNotFound))

		m, ok := MissingFrom(err, WithID("key-scatter"))
		require.True(t, ok)
		assert.Equal(t, "EPS", m.Name)
		assert.Equal(t, "key-scatter", m.ID)
	})

	t.Run("no common dates", func(t *testing.T) {
		other := newTable("Cash Flow Statement", []time.Time{quarter(5)}, map[string][]float64{"dividendPayout": {1}})
		pairs, err := InnerJoin(income, "netIncome", other, "dividendPayout")
		require.NoError(t, err)
		assert.Empty(t, pairs)
	})
}

func TestMissingFromOtherErrors(t *testing.T) {
	_, ok := MissingFrom(stderrors.New("boom"))
	assert.False(t, ok)
	_, ok = MissingFrom(errors.NewLoadError("bad", nil))
	assert.False(t, ok)
}

func TestScatterAndHexbin(t *testing.T) {
	pairs := []domain.Pair{
		{Date: quarter(0), X: 100, Y: 10},
		{Date: quarter(1), X: 200, Y: 20},
	}

	s := Scatter(pairs, "Net Income vs Dividend Payout", "Net Income", "Dividend Payout")
	assert.Equal(t, KindScatter, s.Kind)
	assert.Equal(t, pairs, s.Pairs)
	assert.Equal(t, GridWidth, s.Width)

	h := Hexbin(pairs, "Net Income vs Dividend Payout Heatmap", "Net Income", "Dividend Payout", 20)
	assert.Equal(t, KindHexbin, h.Kind)
	assert.Equal(t, 20, h.GridSize)
	assert.Equal(t, HexbinWidth, h.Width)
	assert.Equal(t, HexbinHeight, h.Height)
	assert.Len(t, h.Hexes, 2)
}
