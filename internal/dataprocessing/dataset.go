package dataprocessing

import (
	"regreport/pkg/contracts/domain"
)

// Required column headers, matched exactly.
const (
	ColumnFullName  = "Nombre y apellidos completos"
	ColumnStartTime = "Hora de inicio"
	ColumnCourse    = "Curso de interés"
	ColumnEmail     = "Correo de contacto"
)

// RequiredColumns in the order they are reported when missing
var RequiredColumns = []string{ColumnFullName, ColumnStartTime, ColumnCourse, ColumnEmail}

// TimestampLayout is how parsed start times are shown in previews
const TimestampLayout = "2006-01-02 15:04:05"

// Dataset is a loaded spreadsheet: the raw table for display and the
// validated registrations for aggregation.
type Dataset struct {
	Source        string                 `json:"source"`
	Columns       []string               `json:"columns"`
	Rows          [][]string             `json:"-"`
	Registrations domain.RegistrationSet `json:"-"`
}

// RowCount returns the number of data rows (blank rows excluded)
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// ColumnCount returns the number of header columns
func (d *Dataset) ColumnCount() int {
	return len(d.Columns)
}

// DisplayOptions controls how much of a dataset a preview shows.
// A zero MaxColumns shows every column.
type DisplayOptions struct {
	PreviewRows int
	MaxColumns  int
}

// Table is a rectangular slice of a dataset ready for rendering
type Table struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
	Truncated bool       `json:"truncated"`
}

// Preview returns the first opts.PreviewRows rows limited to opts.MaxColumns columns.
func (d *Dataset) Preview(opts DisplayOptions) Table {
	cols := len(d.Columns)
	if opts.MaxColumns > 0 && opts.MaxColumns < cols {
		cols = opts.MaxColumns
	}
	n := len(d.Rows)
	if opts.PreviewRows >= 0 && opts.PreviewRows < n {
		n = opts.PreviewRows
	}

	t := Table{
		Columns:   append([]string(nil), d.Columns[:cols]...),
		Rows:      make([][]string, n),
		TotalRows: len(d.Rows),
		Truncated: n < len(d.Rows) || cols < len(d.Columns),
	}
	for i := 0; i < n; i++ {
		t.Rows[i] = append([]string(nil), d.Rows[i][:cols]...)
	}
	return t
}

// ExampleTable is a small well-formed input shown as upload guidance.
func ExampleTable() Table {
	rows := [][]string{
		{"Juan Pérez García", "2024-01-15 09:30:00", "Python Básico", "juan.perez@email.com"},
		{"María López Rodríguez", "2024-01-16 14:20:00", "Excel Avanzado", "maria.lopez@email.com"},
		{"Carlos Martín Sánchez", "2024-01-17 11:45:00", "Python Básico", "carlos.martin@email.com"},
	}
	return Table{
		Columns:   append([]string(nil), RequiredColumns...),
		Rows:      rows,
		TotalRows: len(rows),
	}
}
