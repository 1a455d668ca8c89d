package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// Error codes returned in the error_code extension
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeMissingFile        = "MISSING_FILE"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeMissingColumns     = "MISSING_COLUMNS"
	CodeMalformedTimestamp = "MALFORMED_TIMESTAMP"
	CodeEmptyDataset       = "EMPTY_DATASET"
	CodeInvalidSpreadsheet = "INVALID_SPREADSHEET"
	CodeReportAssembly     = "REPORT_ASSEMBLY_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`

	// Extensions are copied onto the problem document as top-level members
	Extensions map[string]interface{} `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// WithExtension returns a copy of e carrying an extra problem member.
// Copying keeps the predefined errors below immutable.
func (e *APIError) WithExtension(key string, value interface{}) *APIError {
	cp := *e
	cp.Extensions = make(map[string]interface{}, len(e.Extensions)+1)
	for k, v := range e.Extensions {
		cp.Extensions[k] = v
	}
	cp.Extensions[key] = value
	return &cp
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrValidationFailed = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrMissingFile      = New(http.StatusBadRequest, CodeMissingFile, "No se recibió ningún archivo")

	// 413 Payload Too Large
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "El archivo excede el tamaño máximo permitido")

	// 415 Unsupported Media Type
	ErrUnsupportedFormat = New(http.StatusUnsupportedMediaType, CodeUnsupportedFormat, "Formato de archivo no soportado")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// InputError creates a 422 for a spreadsheet the pipeline rejected.
// message is shown to the user as-is.
func InputError(code, message string) *APIError {
	return New(http.StatusUnprocessableEntity, code, message)
}

// ReportAssemblyError creates a 500 for a failure while building the document
func ReportAssemblyError(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeReportAssembly, "No se pudo generar el reporte", err.Error())
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}
