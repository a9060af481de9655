// Package dataprocessing reads the financial statements workbook and turns
// its sheets into clean, date-indexed tables.
//
// # Architecture
//
// The package has two stages:
//
// 1. Parser: opens the xlsx file and extracts the four required sheets as raw text
// 2. Normalizer: parses the date index, zero-fills gaps, repairs column names and scales to millions
//
// # Usage
//
//	wb, err := dataprocessing.NewParser(logger).ParseFile("Intel_Financial_Data.xlsx", schema)
//	if err != nil {
//	    fmt.Println(errors.Diagnostic(err, path))
//	    os.Exit(1)
//	}
//
//	statements, stats, err := dataprocessing.NewNormalizer(logger).Normalize(wb, schema)
//
// # Data Quality
//
// Missing or non-numeric cells become zero. This is a known limitation of
// the dashboard: a zero on a chart may be a gap in the source data. The
// per-sheet NormalizeStats report how many cells were filled.
//
// Normalization never mutates the Workbook it is given.
package dataprocessing
