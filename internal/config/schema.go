package config

import (
	"fmt"

	"finvis/pkg/contracts/domain"
)

// MetricSpec names a column to chart and the title of its chart
type MetricSpec struct {
	Column string `yaml:"column" validate:"required"`
	Title  string `yaml:"title" validate:"required"`
}

// SheetSpec describes one expected worksheet
type SheetSpec struct {
	Sheet      string `yaml:"sheet" validate:"required"`
	DateColumn string `yaml:"date_column" validate:"required"`
	// Section is the overview header for this sheet; empty for sheets
	// that are not part of the overview
	Section string       `yaml:"section"`
	Metrics []MetricSpec `yaml:"metrics" validate:"dive"`
	// ScaleToMillions divides every listed metric by 1,000,000
	ScaleToMillions bool `yaml:"scale_to_millions"`
	// Renames maps misspelled column names to their canonical names
	Renames map[string]string `yaml:"renames"`
}

// MetricColumns returns the listed metric column names in order
func (s SheetSpec) MetricColumns() []string {
	cols := make([]string, len(s.Metrics))
	for i, m := range s.Metrics {
		cols[i] = m.Column
	}
	return cols
}

// KeyMetricsSpec names the columns used by the key metrics and heatmap tabs
type KeyMetricsSpec struct {
	DividendColumn  string `yaml:"dividend_column" validate:"required"`
	NetIncomeColumn string `yaml:"net_income_column" validate:"required"`
	EPSColumn       string `yaml:"eps_column" validate:"required"`
	CapexColumn     string `yaml:"capex_column" validate:"required"`
	HexbinGridSize  int    `yaml:"hexbin_grid_size" validate:"min=1"`
	HistogramBins   int    `yaml:"histogram_bins" validate:"min=1"`
}

// Schema describes the workbook layout and the dashboard built from it
type Schema struct {
	Title      string         `yaml:"title" validate:"required"`
	Income     SheetSpec      `yaml:"income_statement"`
	Balance    SheetSpec      `yaml:"balance_sheet"`
	CashFlow   SheetSpec      `yaml:"cash_flow_statement"`
	Stock      SheetSpec      `yaml:"quarterly_stock_data"`
	KeyMetrics KeyMetricsSpec `yaml:"key_metrics"`
}

// Sheets returns the sheet specs in workbook order
func (s Schema) Sheets() []SheetSpec {
	return []SheetSpec{s.Income, s.Balance, s.CashFlow, s.Stock}
}

// Validate rejects schemas with duplicate sheet names
func (s Schema) Validate() error {
	seen := make(map[string]bool, 4)
	for _, sheet := range s.Sheets() {
		if seen[sheet.Sheet] {
			return fmt.Errorf("sheet %q listed more than once", sheet.Sheet)
		}
		seen[sheet.Sheet] = true
		for from, to := range sheet.Renames {
			if from == "" || to == "" {
				return fmt.Errorf("sheet %q has an empty rename entry", sheet.Sheet)
			}
		}
	}
	return nil
}

// DefaultSchema returns the layout of the Intel financial data workbook
func DefaultSchema() Schema {
	return Schema{
		Title: "Intel Financial Data Dashboard",
		Income: SheetSpec{
			Sheet:      domain.SheetIncomeStatement,
			DateColumn: "fiscalDateEnding",
			Section:    "Income Statement Metrics",
			Metrics: []MetricSpec{
				{Column: "totalRevenue", Title: "Total Revenue Over Time"},
				{Column: "operatingIncome", Title: "Operating Income Over Time"},
				{Column: "depreciation", Title: "Depreciation Over Time"},
				{Column: "depreciationAndAmortization", Title: "Depreciation and Amortization Over Time"},
				{Column: "netIncome", Title: "Net Income Over Time"},
			},
			ScaleToMillions: true,
			Renames:         map[string]string{"opeartingIncome": "operatingIncome"},
		},
		Balance: SheetSpec{
			Sheet:      domain.SheetBalanceSheet,
			DateColumn: "fiscalDateEnding",
			Section:    "Balance Sheet Metrics",
			Metrics: []MetricSpec{
				{Column: "totalAssets", Title: "Total Assets Over Time"},
				{Column: "propertyPlantEquipment", Title: "Property, Plant, and Equipment Over Time"},
				{Column: "totalLiabilities", Title: "Total Liabilities Over Time"},
				{Column: "totalCurrentLiabilities", Title: "Total Current Liabilities Over Time"},
				{Column: "totalShareholderEquity", Title: "Total Shareholder Equity Over Time"},
			},
			ScaleToMillions: true,
		},
		CashFlow: SheetSpec{
			Sheet:      domain.SheetCashFlowStatement,
			DateColumn: "fiscalDateEnding",
			Section:    "Cash Flow Statement Metrics",
			Metrics: []MetricSpec{
				{Column: "capitalExpenditures", Title: "Capital Expenditures Over Time"},
				{Column: "cashflowFromInvestment", Title: "Cash Flow from Investment Over Time"},
				{Column: "cashflowFromFinancing", Title: "Cash Flow from Financing Over Time"},
				{Column: "dividendPayout", Title: "Dividend Payout Over Time"},
			},
			ScaleToMillions: true,
			Renames:         map[string]string{"capitalExpenditure": "capitalExpenditures"},
		},
		Stock: SheetSpec{
			Sheet:      domain.SheetQuarterlyStock,
			DateColumn: "Quarter End Date",
		},
		KeyMetrics: KeyMetricsSpec{
			DividendColumn:  "dividendPayout",
			NetIncomeColumn: "netIncome",
			EPSColumn:       "EPS",
			CapexColumn:     "capitalExpenditures",
			HexbinGridSize:  20,
			HistogramBins:   20,
		},
	}
}
