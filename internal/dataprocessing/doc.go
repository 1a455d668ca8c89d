// Package dataprocessing loads course-registration spreadsheets and derives
// the figures a report is built from.
//
// # Architecture
//
// The package has two components:
//
// 1. Parser: reads a workbook (excelize) or CSV, checks the required headers
// and coerces the start-time column into time.Time
// 2. Analyzer: computes the summary, the per-course counts and the rosters
//
// # Usage
//
//	parser := dataprocessing.NewParser(logger, dataprocessing.ParserOptions{Location: loc})
//	ds, err := parser.ParseFile(ctx, "inscripciones.xlsx")
//	if err != nil {
//	    return err
//	}
//
//	agg, err := dataprocessing.NewAnalyzer(logger).Aggregate(ctx, ds.Registrations)
//
// # Ordering
//
// Course counts are sorted by descending count with ties in first-seen
// order. Rosters keep first-seen course order. The two orders are computed
// independently and must not be derived from each other.
//
// # Error Handling
//
// Input problems are reported with typed errors the presentation layer can
// show verbatim:
//
//   - *MissingColumnsError lists every absent header
//   - *MalformedTimestampError carries the spreadsheet row number
//   - ErrEmptyDataset when no data rows remain
//   - ErrUnsupportedFormat for extensions other than workbooks and .csv
package dataprocessing
