package dataprocessing

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finvis/internal/config"
	"finvis/internal/errors"
	"finvis/internal/shared/testutil"
	"finvis/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func loadSample(t *testing.T) (*domain.Workbook, *domain.Statements, []NormalizeStats) {
	t.Helper()
	schema := config.DefaultSchema()
	wb, err := LoadWorkbook(testutil.WriteSampleWorkbook(t), schema)
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	statements, stats, err := NewNormalizer(logger).Normalize(wb, schema)
	require.NoError(t, err)
	return wb, statements, stats
}

func TestNormalize(t *testing.T) {
	_, s, stats := loadSample(t)
	require.Len(t, stats, 4)

	t.Run("dates are parsed, unique and ascending", func(t *testing.T) {
		want := []time.Time{
			date(2023, time.March, 31),
			date(2023, time.June, 30),
			date(2023, time.September, 30),
			date(2023, time.December, 31),
		}
		for _, table := range s.Tables() {
			assert.Equal(t, want, table.Dates, table.Name)
		}
	})

	t.Run("monetary metrics are in millions", func(t *testing.T) {
		revenue, ok := s.Income.Column("totalRevenue")
		require.True(t, ok)
		assert.Equal(t, []float64{11715, 12949, 14158, 15406}, revenue)

		dividends, ok := s.CashFlow.Column("dividendPayout")
		require.True(t, ok)
		assert.Equal(t, []float64{1500, 1500, 500, 500}, dividends)
	})

	t.Run("stock data is not scaled", func(t *testing.T) {
		eps, ok := s.Stock.Column("EPS")
		require.True(t, ok)
		assert.Equal(t, []float64{-0.66, 0.35, 0.07, 0.63}, eps)
	})

	t.Run("misspelled columns are repaired before scaling", func(t *testing.T) {
		assert.False(t, s.Income.HasColumn("opeartingIncome"))
		operating, ok := s.Income.Column("operatingIncome")
		require.True(t, ok)
		assert.Equal(t, []float64{-294, 0, 1300, 1298}, operating)

		assert.False(t, s.CashFlow.HasColumn("capitalExpenditure"))
		capex, ok := s.CashFlow.Column("capitalExpenditures")
		require.True(t, ok)
		assert.Equal(t, []float64{7000, 6000, 6000, 5000}, capex)
	})

	t.Run("missing values become zero", func(t *testing.T) {
		depreciation, _ := s.Income.Column("depreciation")
		assert.Equal(t, 0.0, depreciation[0])
		assert.Equal(t, 2, stats[0].FilledCells)
		for _, table := range s.Tables() {
			for _, col := range table.Columns {
				assert.Len(t, table.Values[col], table.Len())
			}
		}
	})

	t.Run("text columns are dropped", func(t *testing.T) {
		assert.False(t, s.Income.HasColumn("reportedCurrency"))
		assert.Equal(t, []string{"reportedCurrency"}, stats[0].DroppedColumns)
	})
}

func TestNormalizeDoesNotMutateWorkbook(t *testing.T) {
	wb, _, _ := loadSample(t)
	assert.Equal(t, 3, wb.Income.ColumnIndex("opeartingIncome"))
	assert.Equal(t, "15406000000", wb.Income.Cell(0, 2))

	again, err := Normalize(wb, config.DefaultSchema())
	require.NoError(t, err)
	revenue, _ := again.Income.Column("totalRevenue")
	assert.Equal(t, 15406.0, revenue[3])
}

func TestNormalizeAbsentMetricsStayAbsent(t *testing.T) {
	sheet := &domain.RawSheet{
		Name:   "Income Statement",
		Header: []string{"fiscalDateEnding", "totalRevenue"},
		Rows:   [][]string{{"2023-03-31", "2000000"}},
	}
	spec := config.DefaultSchema().Income

	table, stats, err := NewNormalizer(nil).NormalizeSheet(sheet, spec, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"totalRevenue"}, table.Columns)
	assert.Equal(t, []string{"totalRevenue"}, stats.ScaledColumns)
	assert.False(t, table.HasColumn("netIncome"))
	assert.Empty(t, stats.RenamedColumns)
}

func TestNormalizeSheetDates(t *testing.T) {
	spec := config.SheetSpec{Sheet: "Quarterly Stock Data", DateColumn: "Quarter End Date"}

	t.Run("duplicate dates keep the last row", func(t *testing.T) {
		sheet := &domain.RawSheet{
			Name:   spec.Sheet,
			Header: []string{"Quarter End Date", "EPS"},
			Rows: [][]string{
				{"2023-06-30", "1.0"},
				{"2023-03-31", "0.5"},
				{"6/30/2023", "2.0"},
			},
		}
		table, stats, err := NewNormalizer(nil).NormalizeSheet(sheet, spec, false)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{date(2023, time.March, 31), date(2023, time.June, 30)}, table.Dates)
		eps, _ := table.Column("EPS")
		assert.Equal(t, []float64{0.5, 2.0}, eps)
		assert.Equal(t, 1, stats.DuplicateDates)
	})

	t.Run("rows without a date are skipped", func(t *testing.T) {
		sheet := &domain.RawSheet{
			Name:   spec.Sheet,
			Header: []string{"Quarter End Date", "EPS"},
			Rows:   [][]string{{"", "9"}, {"45016", "0.1"}},
		}
		table, stats, err := NewNormalizer(nil).NormalizeSheet(sheet, spec, false)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{date(2023, time.March, 31)}, table.Dates)
		assert.Equal(t, 1, stats.SkippedRows)
	})

	t.Run("missing date column", func(t *testing.T) {
		sheet := &domain.RawSheet{Name: spec.Sheet, Header: []string{"EPS"}, Rows: [][]string{{"1"}}}
		_, _, err := NewNormalizer(nil).NormalizeSheet(sheet, spec, false)
		assert.True(t, stderrors.Is(err, errors.ErrLoad))
	})

	t.Run("unparseable date", func(t *testing.T) {
		sheet := &domain.RawSheet{
			Name:   spec.Sheet,
			Header: []string{"Quarter End Date", "EPS"},
			Rows:   [][]string{{"next quarter", "1"}},
		}
		_, _, err := NewNormalizer(nil).NormalizeSheet(sheet, spec, false)
		assert.True(t, stderrors.Is(err, errors.ErrLoad))
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("unparseable date reports the worksheet row", func(t *testing.T) {
		sheet := &domain.RawSheet{
			Name:       spec.Sheet,
			Header:     []string{"Quarter End Date", "EPS"},
			Rows:       [][]string{{"2023-03-31", "1"}, {"soon", "2"}},
			RowNumbers: []int{5, 9},
		}
		_, _, err := NewNormalizer(nil).NormalizeSheet(sheet, spec, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `sheet "Quarterly Stock Data" row 9`)
	})
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		date1904 bool
		want     time.Time
	}{
		{name: "iso date", cell: "2023-12-31", want: date(2023, time.December, 31)},
		{name: "rfc3339", cell: "2023-12-31T00:00:00Z", want: date(2023, time.December, 31)},
		{name: "datetime", cell: "2023-12-31 00:00:00", want: date(2023, time.December, 31)},
		{name: "us date", cell: "12/31/2023", want: date(2023, time.December, 31)},
		{name: "short us date", cell: "3/31/23", want: date(2023, time.March, 31)},
		{name: "excel serial", cell: "45291", want: date(2023, time.December, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.cell, tt.date1904)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseDate("soon", false)
	assert.Error(t, err)
}

func TestRepairColumns(t *testing.T) {
	table := domain.NewTable("Income Statement", "fiscalDateEnding")
	table.Dates = []time.Time{date(2023, time.March, 31)}
	table.SetColumn("totalRevenue", []float64{1})
	table.SetColumn("opeartingIncome", []float64{2})
	renames := map[string]string{"opeartingIncome": "operatingIncome"}

	assert.Equal(t, []string{"operatingIncome"}, RepairColumns(table, renames))
	assert.Equal(t, []string{"totalRevenue", "operatingIncome"}, table.Columns)

	// Second pass changes nothing
	before := table.Clone()
	assert.Empty(t, RepairColumns(table, renames))
	assert.Equal(t, before, table)
}

func TestScaleToMillions(t *testing.T) {
	table := domain.NewTable("Balance Sheet", "fiscalDateEnding")
	table.Dates = []time.Time{date(2023, time.March, 31), date(2023, time.June, 30)}
	table.SetColumn("totalAssets", []float64{188_000_000_000, 2_500_000})

	scaled := ScaleToMillions(table, []string{"totalAssets", "goodwill"})
	assert.Equal(t, []string{"totalAssets"}, scaled)
	assets, _ := table.Column("totalAssets")
	assert.Equal(t, []float64{188_000, 2.5}, assets)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		cell  string
		want  float64
		state cellState
	}{
		{"1,234.5", 1234.5, cellNumeric},
		{"-7", -7, cellNumeric},
		{"", 0, cellEmpty},
		{"None", 0, cellEmpty},
		{"NaN", 0, cellEmpty},
		{"inf", 0, cellEmpty},
		{"-Infinity", 0, cellEmpty},
		{"+INF", 0, cellEmpty},
		{"1e999", 0, cellText},
		{"#N/A", 0, cellEmpty},
		{"USD", 0, cellText},
	}
	for _, tt := range tests {
		v, state := parseNumber(tt.cell)
		assert.Equal(t, tt.want, v, tt.cell)
		assert.Equal(t, tt.state, state, tt.cell)
	}
}
