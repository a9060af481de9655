package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"finvis/internal/config"
	"finvis/internal/errors"
	"finvis/pkg/contracts/domain"
)

// Million is the divisor applied to monetary metrics
const Million = 1_000_000.0

// dateLayouts are tried in order for date cells that are not Excel serials
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"2006/01/02",
}

// Normalizer turns raw sheets into date-indexed numeric tables
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger.With(slog.String("component", "normalizer"))}
}

// NormalizeStats reports what normalization did to one sheet
type NormalizeStats struct {
	Sheet          string   `json:"sheet"`
	Rows           int      `json:"rows"`
	FilledCells    int      `json:"filled_cells"`
	SkippedRows    int      `json:"skipped_rows"`
	DuplicateDates int      `json:"duplicate_dates"`
	DroppedColumns []string `json:"dropped_columns,omitempty"`
	RenamedColumns []string `json:"renamed_columns,omitempty"`
	ScaledColumns  []string `json:"scaled_columns,omitempty"`
}

// Normalize builds the statement tables from wb using the default logger
func Normalize(wb *domain.Workbook, schema config.Schema) (*domain.Statements, error) {
	statements, _, err := NewNormalizer(nil).Normalize(wb, schema)
	return statements, err
}

// Normalize builds the four statement tables from wb. The workbook is not
// modified; every returned table is a new value.
func (n *Normalizer) Normalize(wb *domain.Workbook, schema config.Schema) (*domain.Statements, []NormalizeStats, error) {
	raw := []*domain.RawSheet{wb.Income, wb.Balance, wb.CashFlow, wb.Stock}
	specs := schema.Sheets()

	tables := make([]*domain.Table, len(specs))
	stats := make([]NormalizeStats, len(specs))
	for i, spec := range specs {
		if raw[i] == nil {
			return nil, nil, errors.NewMissingSheetError(wb.Path, spec.Sheet)
		}
		table, st, err := n.NormalizeSheet(raw[i], spec, wb.Date1904)
		if err != nil {
			return nil, nil, err
		}
		tables[i] = table
		stats[i] = st
	}

	return &domain.Statements{
		Income:   tables[0],
		Balance:  tables[1],
		CashFlow: tables[2],
		Stock:    tables[3],
	}, stats, nil
}

// NormalizeSheet parses the date index, zero-fills missing values, repairs
// misspelled column names and scales the listed metrics to millions.
func (n *Normalizer) NormalizeSheet(sheet *domain.RawSheet, spec config.SheetSpec, date1904 bool) (*domain.Table, NormalizeStats, error) {
	stats := NormalizeStats{Sheet: sheet.Name}

	dateIdx := sheet.ColumnIndex(spec.DateColumn)
	if dateIdx < 0 {
		return nil, stats, errors.NewLoadError(
			fmt.Sprintf("date column %q not found in sheet %q", spec.DateColumn, sheet.Name), nil).
			WithContext("sheet", sheet.Name).
			WithContext("column", spec.DateColumn)
	}

	// Parse dates; a row without a date has no place in the index
	type row struct {
		date time.Time
		src  int
	}
	rows := make([]row, 0, len(sheet.Rows))
	for i := range sheet.Rows {
		cell := sheet.Cell(i, dateIdx)
		if cell == "" {
			stats.SkippedRows++
			continue
		}
		d, err := ParseDate(cell, date1904)
		if err != nil {
			return nil, stats, errors.NewLoadError(
				fmt.Sprintf("invalid %s value %q in sheet %q row %d", spec.DateColumn, cell, sheet.Name, sheet.RowNumber(i)), err).
				WithContext("sheet", sheet.Name)
		}
		rows = append(rows, row{date: d, src: i})
	}

	// Ascending by date; for a repeated date the later row wins
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	deduped := rows[:0]
	for _, r := range rows {
		if len(deduped) > 0 && deduped[len(deduped)-1].date.Equal(r.date) {
			deduped[len(deduped)-1] = r
			stats.DuplicateDates++
			continue
		}
		deduped = append(deduped, r)
	}
	rows = deduped

	table := domain.NewTable(sheet.Name, spec.DateColumn)
	table.Dates = make([]time.Time, len(rows))
	for i, r := range rows {
		table.Dates[i] = r.date
	}

	seen := map[string]bool{spec.DateColumn: true}
	for j, name := range sheet.Header {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		values := make([]float64, len(rows))
		numeric, text, missing := 0, 0, 0
		for i, r := range rows {
			v, state := parseNumber(sheet.Cell(r.src, j))
			switch state {
			case cellNumeric:
				values[i] = v
				numeric++
			case cellText:
				text++
				missing++
			default:
				missing++
			}
		}
		if numeric == 0 && text > 0 {
			stats.DroppedColumns = append(stats.DroppedColumns, name)
			continue
		}
		stats.FilledCells += missing
		table.SetColumn(name, values)
	}

	stats.RenamedColumns = RepairColumns(table, spec.Renames)
	if spec.ScaleToMillions {
		stats.ScaledColumns = ScaleToMillions(table, spec.MetricColumns())
	}
	stats.Rows = table.Len()

	n.logger.Info("Sheet normalized",
		slog.String("sheet", sheet.Name),
		slog.Int("rows", stats.Rows),
		slog.Int("filled_cells", stats.FilledCells),
		slog.Int("skipped_rows", stats.SkippedRows),
		slog.Int("duplicate_dates", stats.DuplicateDates),
		slog.Any("renamed", stats.RenamedColumns),
		slog.Any("scaled", stats.ScaledColumns))
	if len(stats.DroppedColumns) > 0 {
		n.logger.Debug("Non-numeric columns ignored",
			slog.String("sheet", sheet.Name),
			slog.Any("columns", stats.DroppedColumns))
	}

	return table, stats, nil
}

// RepairColumns renames misspelled columns to their canonical names and
// returns the canonical names it applied. Running it again is a no-op
// because the misspelled names no longer exist.
func RepairColumns(table *domain.Table, renames map[string]string) []string {
	from := make([]string, 0, len(renames))
	for k := range renames {
		from = append(from, k)
	}
	sort.Strings(from)

	var applied []string
	for _, k := range from {
		if table.RenameColumn(k, renames[k]) {
			applied = append(applied, renames[k])
		}
	}
	return applied
}

// ScaleToMillions divides each listed column by one million. Columns absent
// from the table are skipped. It returns the columns that were scaled.
func ScaleToMillions(table *domain.Table, columns []string) []string {
	var scaled []string
	for _, col := range columns {
		values, ok := table.Column(col)
		if !ok {
			continue
		}
		for i := range values {
			values[i] /= Million
		}
		scaled = append(scaled, col)
	}
	return scaled
}

// ParseDate parses a date cell: an Excel serial number or one of the
// supported text layouts. Results are in UTC.
func ParseDate(cell string, date1904 bool) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if serial, err := strconv.ParseFloat(cell, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

type cellState int

const (
	cellEmpty cellState = iota
	cellNumeric
	cellText
)

// missingMarkers are cell texts treated as absent values
var missingMarkers = map[string]bool{
	"":     true,
	"-":    true,
	"None": true,
	"none": true,
	"NULL": true,
	"null": true,
	"N/A":  true,
	"#N/A": true,
}

// parseNumber parses a numeric cell, accepting thousands separators
func parseNumber(cell string) (float64, cellState) {
	cell = strings.TrimSpace(cell)
	if missingMarkers[cell] {
		return 0, cellEmpty
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return 0, cellText
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, cellEmpty
	}
	return v, cellNumeric
}
