package domain

// RawSheet is a worksheet as read from the workbook: a header row and the
// cell text of every data row. Rows may be shorter than the header.
type RawSheet struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	// RowNumbers holds the 1-based worksheet row of each entry in Rows
	RowNumbers []int `json:"row_numbers,omitempty"`
}

// ColumnIndex returns the position of the named header cell, or -1
func (s *RawSheet) ColumnIndex(name string) int {
	for i, h := range s.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// RowNumber returns the worksheet row that Rows[i] was read from. Without
// RowNumbers the header is assumed to sit directly above the first row.
func (s *RawSheet) RowNumber(i int) int {
	if i >= 0 && i < len(s.RowNumbers) {
		return s.RowNumbers[i]
	}
	return i + 2
}

// Cell returns the cell at row i, column j; missing cells are empty
func (s *RawSheet) Cell(i, j int) string {
	if i < 0 || i >= len(s.Rows) || j < 0 || j >= len(s.Rows[i]) {
		return ""
	}
	return s.Rows[i][j]
}

// Workbook holds the four raw sheets of a financial statements file
type Workbook struct {
	Path     string    `json:"path"`
	Date1904 bool      `json:"date_1904"`
	Income   *RawSheet `json:"income_statement"`
	Balance  *RawSheet `json:"balance_sheet"`
	CashFlow *RawSheet `json:"cash_flow_statement"`
	Stock    *RawSheet `json:"quarterly_stock_data"`
}
