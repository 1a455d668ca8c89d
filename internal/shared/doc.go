// Package shared holds code used across packages that belongs to no single
// layer. Today that is only the testutil subpackage:
//
//   - BufferedSlogHandler and NewTestLogger capture slog output for assertions
//   - BuildWorkbook, WriteWorkbook and WorkbookBytes produce registration
//     spreadsheets with excelize so loader and handler tests never depend on
//     checked-in binary fixtures
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteWorkbook(t, "in.xlsx", testutil.RequiredHeaders, testutil.SampleRows())
//	    // ...
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared
