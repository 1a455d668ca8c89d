package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regreport/internal/shared/testutil"
)

func TestFileValidator_ValidateSpreadsheet(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		maxBytes      int64
		wantErr       error
		errorContains string
	}{
		{
			name: "valid workbook",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteWorkbook(t, "inscripciones.xlsx", testutil.RequiredHeaders, testutil.SampleRows())
			},
		},
		{
			name: "valid csv with uppercase extension",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, "INSCRIPCIONES.CSV", []byte("a,b\n"))
			},
		},
		{
			name: "non-existent file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.xlsx")
			},
			errorContains: "does not exist",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "sheet.xlsx")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			errorContains: "is a directory",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, "inscripciones.pdf", []byte("%PDF"))
			},
			wantErr: ErrUnsupportedExtension,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, "~$inscripciones.xlsx", []byte("lock"))
			},
			errorContains: "temporary Excel file",
		},
		{
			name: "over the limit",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, "big.csv", make([]byte, 2048))
			},
			maxBytes: 1024,
			wantErr:  ErrTooLarge,
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, "empty.csv", nil)
			},
			errorContains: "is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			validator := NewFileValidator(logger)

			err := validator.ValidateSpreadsheet(tt.setupFunc(t), tt.maxBytes)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errorContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateReport(t *testing.T) {
	validator := NewFileValidator(nil)

	assert.NoError(t, validator.ValidateReport(testutil.WriteFile(t, "reporte.docx", []byte("PK"))))
	assert.ErrorIs(t, validator.ValidateReport(testutil.WriteFile(t, "reporte.xlsx", []byte("PK"))), ErrUnsupportedExtension)
	assert.Error(t, validator.ValidateReport(filepath.Join(t.TempDir(), "missing.docx")))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	validator := NewFileValidator(logger)

	dir := filepath.Join(t.TempDir(), "reports", "2024")
	require.NoError(t, validator.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be removed")

	file := testutil.WriteFile(t, "not-a-dir", []byte("x"))
	assert.Error(t, validator.ValidateOutputDirectory(filepath.Join(file, "sub")))
	assert.True(t, handler.ContainsMessage("Failed to create output directory"))
}

func TestHasSpreadsheetExtension(t *testing.T) {
	assert.True(t, HasSpreadsheetExtension("a.xlsx"))
	assert.True(t, HasSpreadsheetExtension("a.XLSM"))
	assert.True(t, HasSpreadsheetExtension("a.csv"))
	assert.False(t, HasSpreadsheetExtension("a.xls"))
	assert.False(t, HasSpreadsheetExtension("xlsx"))
}
