package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SpreadsheetExtensions are the input formats the loader reads
var SpreadsheetExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm", ".csv"}

// ReportExtension is the extension of a generated report
const ReportExtension = ".docx"

var (
	// ErrUnsupportedExtension is returned for a file the pipeline cannot read.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrTooLarge is returned when an input file exceeds the upload limit.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// FileValidator checks local files before they are handed to the pipeline
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// HasSpreadsheetExtension reports whether name ends in a supported extension
func HasSpreadsheetExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range SpreadsheetExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return nil, fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return info, nil
}

// ValidateSpreadsheet checks that path is a readable registration sheet no
// larger than maxBytes. A non-positive maxBytes disables the size check.
func (v *FileValidator) ValidateSpreadsheet(path string, maxBytes int64) error {
	info, err := v.ValidateFile(path)
	if err != nil {
		return err
	}

	if !HasSpreadsheetExtension(path) {
		v.logger.Error("File is not a spreadsheet",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return fmt.Errorf("%w: %s (accepted: %s)", ErrUnsupportedExtension, path, strings.Join(SpreadsheetExtensions, ", "))
	}

	// Excel keeps an owner lock file next to open workbooks.
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Rejected temporary Excel file",
			slog.String("file", path))
		return fmt.Errorf("file %s is a temporary Excel file", path)
	}

	if maxBytes > 0 && info.Size() > maxBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, path, info.Size(), maxBytes)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s is empty", path)
	}
	return nil
}

// ValidateReport checks that path is a readable .docx file
func (v *FileValidator) ValidateReport(path string) error {
	if _, err := v.ValidateFile(path); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ReportExtension {
		return fmt.Errorf("%w: %s is not a %s report", ErrUnsupportedExtension, path, ReportExtension)
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	testFile.Close()
	os.Remove(testFile.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
