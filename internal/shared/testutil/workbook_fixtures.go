package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SheetRows is the content of one worksheet: a header row followed by data rows
type SheetRows [][]interface{}

// SampleSheets returns a small workbook in the Intel financial data layout.
// The income and cash flow sheets use the misspelled column names found in
// the real export so that repair is exercised.
func SampleSheets() map[string]SheetRows {
	return map[string]SheetRows{
		"Income Statement": {
			{"fiscalDateEnding", "reportedCurrency", "totalRevenue", "opeartingIncome", "depreciation", "depreciationAndAmortization", "netIncome"},
			{"2023-12-31", "USD", 15406000000, 1298000000, 1900000000, 2400000000, 2669000000},
			{"2023-03-31", "USD", 11715000000, -294000000, "", 2100000000, -2768000000},
			{"2023-09-30", "USD", 14158000000, 1300000000, 1800000000, 2300000000, 297000000},
			{"2023-06-30", "USD", 12949000000, "None", 1700000000, 2200000000, 1481000000},
		},
		"Balance Sheet": {
			{"fiscalDateEnding", "totalAssets", "propertyPlantEquipment", "totalLiabilities", "totalCurrentLiabilities", "totalShareholderEquity"},
			{"2023-03-31", 188000000000, 99000000000, 79000000000, 27000000000, 109000000000},
			{"2023-06-30", 189000000000, 102000000000, 79000000000, 28000000000, 110000000000},
			{"2023-09-30", 190000000000, 104000000000, 80000000000, 29000000000, 110000000000},
			{"2023-12-31", 191000000000, 106000000000, 81000000000, 28000000000, 110000000000},
		},
		"Cash Flow Statement": {
			{"fiscalDateEnding", "capitalExpenditure", "cashflowFromInvestment", "cashflowFromFinancing", "dividendPayout"},
			{"2023-03-31", 7000000000, -5000000000, 3000000000, 1500000000},
			{"2023-06-30", 6000000000, -4000000000, 2000000000, 1500000000},
			{"2023-09-30", 6000000000, -6000000000, 4000000000, 500000000},
			{"2023-12-31", 5000000000, -3000000000, 1000000000, 500000000},
		},
		"Quarterly Stock Data": {
			{"Quarter End Date", "EPS", "Close"},
			{"2023-03-31", -0.66, 32.67},
			{"2023-06-30", 0.35, 33.44},
			{"2023-09-30", 0.07, 35.55},
			{"2023-12-31", 0.63, 50.25},
		},
	}
}

// WriteWorkbook saves sheets as an xlsx file in a test temp dir and returns its path
func WriteWorkbook(t *testing.T, sheets map[string]SheetRows) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				t.Fatalf("failed to rename sheet: %v", err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("failed to create sheet %q: %v", name, err)
		}

		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("invalid cell: %v", err)
			}
			values := row
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				t.Fatalf("failed to write row %d of %q: %v", i+1, name, err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "Intel_Financial_Data.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

// WriteSampleWorkbook saves SampleSheets and returns the file path
func WriteSampleWorkbook(t *testing.T) string {
	t.Helper()
	return WriteWorkbook(t, SampleSheets())
}

// WithoutSheet returns sheets minus the named sheet
func WithoutSheet(sheets map[string]SheetRows, name string) map[string]SheetRows {
	out := make(map[string]SheetRows, len(sheets))
	for k, v := range sheets {
		if k != name {
			out[k] = v
		}
	}
	return out
}
