package services

import (
	"context"
	"errors"
	"fmt"

	"regreport/internal/dataprocessing"
	"regreport/internal/exporter"
)

// ProcessingHint is shown next to any failure that is not a known input error
const ProcessingHint = "Verifica que el archivo Excel esté en el formato correcto y no esté corrupto."

// Pipeline stages
const (
	StageLoad      = "load"
	StageAggregate = "aggregate"
	StageChart     = "chart"
	StageCompose   = "compose"
	StageExport    = "export"
)

// ProcessingError wraps an unexpected failure with the stage it happened in.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("Error al procesar el archivo (%s): %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Hint returns the remediation text for the user
func (e *ProcessingError) Hint() string {
	return ProcessingHint
}

// classify lets domain errors through unchanged and wraps everything else.
func classify(stage string, err error) error {
	if err == nil {
		return nil
	}

	var (
		missing   *dataprocessing.MissingColumnsError
		malformed *dataprocessing.MalformedTimestampError
		assembly  *exporter.DocumentAssemblyError
		processed *ProcessingError
	)
	switch {
	case errors.As(err, &missing),
		errors.As(err, &malformed),
		errors.Is(err, dataprocessing.ErrEmptyDataset),
		errors.As(err, &assembly),
		errors.As(err, &processed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &ProcessingError{Stage: stage, Err: err}
}

// ErrorKind names the failure category used in metrics and logs
func ErrorKind(err error) string {
	var (
		missing   *dataprocessing.MissingColumnsError
		malformed *dataprocessing.MalformedTimestampError
		assembly  *exporter.DocumentAssemblyError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &missing):
		return "missing_columns"
	case errors.As(err, &malformed):
		return "malformed_timestamp"
	case errors.Is(err, dataprocessing.ErrEmptyDataset):
		return "empty_dataset"
	case errors.As(err, &assembly):
		return "document_assembly"
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "processing"
	}
}

// UserHint returns the remediation text for err, or "" when none applies.
func UserHint(err error) string {
	var missing *dataprocessing.MissingColumnsError
	if errors.As(err, &missing) {
		return dataprocessing.MissingColumnsHint
	}
	var processing *ProcessingError
	if errors.As(err, &processing) {
		return processing.Hint()
	}
	return ""
}
