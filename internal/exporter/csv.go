package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"regreport/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Column headers of the CSV exports
var (
	CourseCountHeaders = []string{"Curso", "Cantidad de Inscritos"}
	RosterHeaders      = []string{"Curso", RosterNameHeader, RosterEmailHeader}
)

// CSVWriter exports aggregates as CSV
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Write encodes options to w
func (c *CSVWriter) Write(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix && !options.Append {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes options to filePath, creating parent directories.
func (c *CSVWriter) WriteFile(filePath string, options WriteOptions) error {
	c.logger.Info("writing csv file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if err := c.Write(file, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteCourseCounts writes one line per course in aggregate order
func (c *CSVWriter) WriteCourseCounts(w io.Writer, agg domain.CourseAggregate) error {
	records := make([][]string, len(agg))
	for i, cc := range agg {
		records[i] = []string{cc.Course, formatInt(cc.Count)}
	}
	return c.Write(w, WriteOptions{
		Headers:   CourseCountHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteRosters writes one line per attendee, grouped by course
func (c *CSVWriter) WriteRosters(w io.Writer, rosters []domain.CourseRoster) error {
	var records [][]string
	for _, r := range rosters {
		for _, e := range r.Entries {
			records = append(records, []string{r.Course, e.FullName, e.ContactEmail})
		}
	}
	return c.Write(w, WriteOptions{
		Headers:   RosterHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}
