package domain

import (
	"sort"
	"time"
)

// Sheet names of the financial statements workbook
const (
	SheetIncomeStatement   = "Income Statement"
	SheetBalanceSheet      = "Balance Sheet"
	SheetCashFlowStatement = "Cash Flow Statement"
	SheetQuarterlyStock    = "Quarterly Stock Data"
)

// Table is a date-indexed set of numeric columns.
// Dates are unique and ascending; every column has exactly Len() values.
type Table struct {
	Name       string               `json:"name"`
	DateColumn string               `json:"date_column"`
	Dates      []time.Time          `json:"dates"`
	Columns    []string             `json:"columns"`
	Values     map[string][]float64 `json:"values"`
}

// NewTable creates an empty table with the given name and date column
func NewTable(name, dateColumn string) *Table {
	return &Table{
		Name:       name,
		DateColumn: dateColumn,
		Values:     make(map[string][]float64),
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Dates)
}

// HasColumn reports whether the named column exists
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.Values[name]
	return ok
}

// Column returns the values of the named column
func (t *Table) Column(name string) ([]float64, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.Values[name]
	return v, ok
}

// SetColumn adds or replaces a column. Values shorter than Len() are padded with zero.
func (t *Table) SetColumn(name string, values []float64) {
	if _, exists := t.Values[name]; !exists {
		t.Columns = append(t.Columns, name)
	}
	col := make([]float64, t.Len())
	copy(col, values)
	t.Values[name] = col
}

// RenameColumn renames a column in place, keeping its position.
// It returns false when from does not exist or to is already taken.
func (t *Table) RenameColumn(from, to string) bool {
	if from == to || !t.HasColumn(from) || t.HasColumn(to) {
		return false
	}
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
			break
		}
	}
	t.Values[to] = t.Values[from]
	delete(t.Values, from)
	return true
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := &Table{
		Name:       t.Name,
		DateColumn: t.DateColumn,
		Dates:      append([]time.Time(nil), t.Dates...),
		Columns:    append([]string(nil), t.Columns...),
		Values:     make(map[string][]float64, len(t.Values)),
	}
	for k, v := range t.Values {
		c.Values[k] = append([]float64(nil), v...)
	}
	return c
}

// Point is one observation of a series
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series returns the named column as date/value points
func (t *Table) Series(name string) ([]Point, bool) {
	values, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Date: t.Dates[i], Value: v}
	}
	return points, true
}

// Pair is one row of an inner join of two series on date
type Pair struct {
	Date time.Time `json:"date"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// JoinColumns inner-joins column colA of a with column colB of b on date.
// Only dates present in both tables are kept, in ascending date order.
// ok is false when either column is absent.
func JoinColumns(a *Table, colA string, b *Table, colB string) (pairs []Pair, ok bool) {
	xs, okA := a.Column(colA)
	ys, okB := b.Column(colB)
	if !okA || !okB {
		return nil, false
	}

	index := make(map[int64]int, b.Len())
	for i, d := range b.Dates {
		index[d.UnixNano()] = i
	}

	pairs = make([]Pair, 0)
	for i, d := range a.Dates {
		j, found := index[d.UnixNano()]
		if !found {
			continue
		}
		pairs = append(pairs, Pair{Date: d, X: xs[i], Y: ys[j]})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Date.Before(pairs[j].Date) })
	return pairs, true
}

// Statements holds the four normalized tables
type Statements struct {
	Income   *Table `json:"income_statement"`
	Balance  *Table `json:"balance_sheet"`
	CashFlow *Table `json:"cash_flow_statement"`
	Stock    *Table `json:"quarterly_stock_data"`
}

// Tables returns the tables in workbook order
func (s *Statements) Tables() []*Table {
	return []*Table{s.Income, s.Balance, s.CashFlow, s.Stock}
}
