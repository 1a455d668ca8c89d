package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"regreport/pkg/contracts/domain"
)

// Last resort for slash dates dateparse rejects in both field orders.
var dayFirstLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
}

// ParserOptions configures the loader
type ParserOptions struct {
	// Sheet to read from a workbook; empty means the first sheet.
	Sheet string
	// Location for timestamps that carry no zone. Defaults to UTC.
	Location *time.Location
}

// Parser loads registration spreadsheets and validates their structure.
// It holds no per-call state and is safe for concurrent use.
type Parser struct {
	logger *slog.Logger
	opts   ParserOptions
}

// NewParser creates a parser
func NewParser(logger *slog.Logger, opts ParserOptions) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Parser{
		logger: logger.With(slog.String("component", "parser")),
		opts:   opts,
	}
}

// ParseFile opens path and parses it
func (p *Parser) ParseFile(ctx context.Context, path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return p.Parse(ctx, f, filepath.Base(path))
}

// Parse reads a workbook or CSV from r. The format is chosen by the
// extension of filename.
func (p *Parser) Parse(ctx context.Context, r io.Reader, filename string) (*Dataset, error) {
	table, numericDates, err := p.readTable(r, filename)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := p.buildDataset(table, numericDates)
	if err != nil {
		p.logger.WarnContext(ctx, "spreadsheet rejected",
			slog.String("file", filename),
			slog.String("error", err.Error()))
		return nil, err
	}
	ds.Source = filename

	p.logger.InfoContext(ctx, "spreadsheet loaded",
		slog.String("file", filename),
		slog.Int("rows", ds.RowCount()),
		slog.Int("columns", ds.ColumnCount()))

	return ds, nil
}

// readTable returns the raw cell grid. numericDates reports whether numeric
// cells should be read as spreadsheet serial dates.
func (p *Parser) readTable(r io.Reader, filename string) ([][]string, bool, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rows, err := p.readWorkbook(r)
		return rows, true, err
	case ".csv":
		rows, err := readCSV(r)
		return rows, false, err
	case ".xls":
		// Legacy BIFF workbooks are not read; the upload has to be re-saved.
		return nil, false, fmt.Errorf("%w: %q, guarde el archivo como .xlsx", ErrUnsupportedFormat, ".xls")
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func (p *Parser) readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	// Raw values keep date cells as serial numbers instead of locale-formatted text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func (p *Parser) buildDataset(table [][]string, numericDates bool) (*Dataset, error) {
	var header []string
	if len(table) > 0 {
		header = table[0]
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	ds := &Dataset{
		Columns: append([]string(nil), header...),
	}

	for i := 1; i < len(table); i++ {
		raw := table[i]
		if isBlankRow(raw) {
			continue
		}

		row := make([]string, len(header))
		for c := range row {
			if c < len(raw) {
				row[c] = strings.TrimSpace(raw[c])
			}
		}

		sheetRow := i + 1
		ts, err := p.parseTimestamp(row[index[ColumnStartTime]], numericDates)
		if err != nil {
			return nil, &MalformedTimestampError{Row: sheetRow, Value: row[index[ColumnStartTime]], Err: err}
		}
		row[index[ColumnStartTime]] = ts.Format(TimestampLayout)

		ds.Rows = append(ds.Rows, row)
		ds.Registrations = append(ds.Registrations, domain.Registration{
			FullName:     row[index[ColumnFullName]],
			RegisteredAt: ts,
			Course:       row[index[ColumnCourse]],
			ContactEmail: row[index[ColumnEmail]],
			Row:          sheetRow,
		})
	}

	return ds, nil
}

// parseTimestamp coerces a start-time cell. Serial dates are rounded to
// whole seconds to absorb floating point error in the stored fraction.
func (p *Parser) parseTimestamp(value string, numericDates bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}

	if numericDates {
		if serial, err := strconv.ParseFloat(value, 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, err
			}
			t = t.Round(time.Second)
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, p.opts.Location), nil
		}
	}

	// Ambiguous slash dates are month-first. A first field above 12 can
	// only be a day, so those are read again day-first.
	t, err := dateparse.ParseIn(value, p.opts.Location)
	if err == nil {
		return t, nil
	}
	if t, swapErr := dateparse.ParseIn(value, p.opts.Location, dateparse.PreferMonthFirst(false)); swapErr == nil {
		return t, nil
	}

	for _, layout := range dayFirstLayouts {
		if t, layoutErr := time.ParseInLocation(layout, value, p.opts.Location); layoutErr == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
