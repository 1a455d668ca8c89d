package http

import (
	"errors"
	"net/http"

	"regreport/internal/dataprocessing"
	apierrors "regreport/internal/errors"
	"regreport/internal/exporter"
	"regreport/internal/middleware"
	"regreport/internal/services"
)

// pipelineError maps a pipeline failure onto an API error. Errors it does
// not recognise are returned unchanged for the error handler.
func pipelineError(err error) error {
	var (
		missing    *dataprocessing.MissingColumnsError
		malformed  *dataprocessing.MalformedTimestampError
		assembly   *exporter.DocumentAssemblyError
		tooLarge   *http.MaxBytesError
		processing *services.ProcessingError
	)

	switch {
	case errors.As(err, &missing):
		return apierrors.InputError(apierrors.CodeMissingColumns, missing.Error()).
			WithExtension("missing_columns", missing.Missing).
			WithExtension("hint", dataprocessing.MissingColumnsHint)
	case errors.As(err, &malformed):
		return apierrors.InputError(apierrors.CodeMalformedTimestamp, malformed.Error()).
			WithExtension("row", malformed.Row)
	case errors.Is(err, dataprocessing.ErrEmptyDataset):
		return apierrors.InputError(apierrors.CodeEmptyDataset, err.Error())
	case errors.As(err, &assembly):
		return apierrors.ReportAssemblyError(err)
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return apierrors.ErrUnsupportedFormat.WithExtension("allowed_extensions", middleware.SpreadsheetExtensions)
	case errors.As(err, &tooLarge):
		return apierrors.ErrPayloadTooLarge.WithExtension("limit_bytes", tooLarge.Limit)
	case errors.As(err, &processing):
		return apierrors.InputError(apierrors.CodeInvalidSpreadsheet, processing.Error()).
			WithExtension("hint", processing.Hint())
	}
	return err
}
