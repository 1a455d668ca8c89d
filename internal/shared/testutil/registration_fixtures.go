package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// RequiredHeaders is the header row of a well-formed registration sheet
var RequiredHeaders = []string{
	"Nombre y apellidos completos",
	"Hora de inicio",
	"Curso de interés",
	"Correo de contacto",
}

// SampleRows returns the three-person example sheet shown on the upload page
func SampleRows() [][]interface{} {
	return [][]interface{}{
		{"Juan Pérez García", "2024-01-15 09:30:00", "Python Básico", "juan.perez@email.com"},
		{"María López Rodríguez", "2024-01-15 10:15:00", "Excel Avanzado", "maria.lopez@email.com"},
		{"Carlos Martín Sánchez", "2024-01-16 14:20:00", "Python Básico", "carlos.martin@email.com"},
	}
}

// BuildWorkbook creates an in-memory workbook with headers in row 1 and
// rows below. Values are written as-is so numeric serial dates and
// time.Time cells can be exercised.
func BuildWorkbook(t *testing.T, sheet string, headers []string, rows [][]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	if sheet != "" && sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	} else {
		sheet = "Sheet1"
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			t.Fatalf("set header %s: %v", cell, err)
		}
	}
	for r, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}
	return f
}

// WriteWorkbook saves a fixture workbook under t.TempDir() and returns its path
func WriteWorkbook(t *testing.T, name string, headers []string, rows [][]interface{}) string {
	t.Helper()

	f := BuildWorkbook(t, "", headers, rows)
	defer f.Close()

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// WorkbookBytes returns a fixture workbook as .xlsx bytes for upload tests
func WorkbookBytes(t *testing.T, headers []string, rows [][]interface{}) []byte {
	t.Helper()

	f := BuildWorkbook(t, "", headers, rows)
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// CSVBytes renders string rows as CSV with the given header row
func CSVBytes(t *testing.T, headers []string, rows [][]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		t.Fatalf("write csv header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write csv rows: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data under t.TempDir() and returns the path
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
