package dataprocessing

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"finvis/internal/config"
	"finvis/internal/errors"
	"finvis/pkg/contracts/domain"
)

// Parser reads a financial statements workbook into raw sheets
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new workbook parser
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With(slog.String("component", "parser"))}
}

// LoadWorkbook reads the workbook at path using the default logger
func LoadWorkbook(path string, schema config.Schema) (*domain.Workbook, error) {
	return NewParser(nil).ParseFile(path, schema)
}

// ParseFile opens the workbook at filePath and extracts the four sheets
// named by schema. It fails with a FILE_NOT_FOUND error when the path does
// not resolve, MISSING_SHEET when a required sheet is absent and LOAD for
// any other read failure.
func (p *Parser) ParseFile(filePath string, schema config.Schema) (*domain.Workbook, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewFileNotFoundError(filePath, err)
		}
		return nil, errors.NewLoadError(fmt.Sprintf("failed to stat %s", filePath), err)
	}
	if info.IsDir() {
		return nil, errors.NewLoadError(fmt.Sprintf("%s is a directory", filePath), nil)
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, errors.NewLoadError("failed to open file", err)
	}
	defer f.Close()

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	available := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		available[name] = true
	}

	specs := schema.Sheets()
	sheets := make([]*domain.RawSheet, len(specs))
	for i, spec := range specs {
		if !available[spec.Sheet] {
			return nil, errors.NewMissingSheetError(filePath, spec.Sheet)
		}
		sheet, err := p.readSheet(f, spec.Sheet)
		if err != nil {
			return nil, err
		}
		sheets[i] = sheet
	}

	p.logger.Info("Workbook loaded",
		slog.String("path", filePath),
		slog.Int("sheets", len(sheets)),
		slog.Int("income_rows", len(sheets[0].Rows)),
		slog.Int("balance_rows", len(sheets[1].Rows)),
		slog.Int("cashflow_rows", len(sheets[2].Rows)),
		slog.Int("stock_rows", len(sheets[3].Rows)))

	return &domain.Workbook{
		Path:     filePath,
		Date1904: date1904,
		Income:   sheets[0],
		Balance:  sheets[1],
		CashFlow: sheets[2],
		Stock:    sheets[3],
	}, nil
}

// readSheet reads one worksheet; the first non-empty row is the header
func (p *Parser) readSheet(f *excelize.File, name string) (*domain.RawSheet, error) {
	// Raw values keep dates as serial numbers instead of locale formatted text
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewLoadError(fmt.Sprintf("failed to read sheet %q", name), err).
			WithContext("sheet", name)
	}

	sheet := &domain.RawSheet{Name: name}
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if sheet.Header == nil {
			sheet.Header = trimCells(row)
			continue
		}
		sheet.Rows = append(sheet.Rows, trimCells(row))
		sheet.RowNumbers = append(sheet.RowNumbers, i+1)
	}

	if sheet.Header == nil {
		return nil, errors.NewLoadError(fmt.Sprintf("sheet %q is empty", name), nil).
			WithContext("sheet", name)
	}

	p.logger.Debug("Sheet read",
		slog.String("sheet", name),
		slog.Int("columns", len(sheet.Header)),
		slog.Int("rows", len(sheet.Rows)))

	return sheet, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
