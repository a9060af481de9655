// Package shared holds code used across packages that belongs to no
// single layer.
//
// The testutil subpackage provides the helpers the package tests share:
//
//	- BufferedSlogHandler and NewTestLogger capture slog records for assertions
//	- SampleSheets and WriteWorkbook build small xlsx files in the test temp dir
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteSampleWorkbook(t)
//	    // ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "Workbook loaded")
//	}
package shared
