package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "regreport/internal/errors"
	"regreport/internal/validation"
)

// SpreadsheetExtensions are the upload extensions the loader accepts
var SpreadsheetExtensions = validation.SpreadsheetExtensions

// multipartOverhead allows for boundaries and part headers on top of the file itself.
const multipartOverhead = 64 * 1024

// UploadRequest describes a spreadsheet upload
type UploadRequest struct {
	Filename string `json:"file" validate:"required,filename"`
	Size     int64  `json:"size" validate:"gt=0"`
	Action   string `json:"action" validate:"omitempty,oneof=preview report"`
}

// ValidationMiddleware provides request validation using struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodySize  int64
}

// NewValidationMiddleware creates a new validation middleware. maxUpload
// bounds the size of an uploaded file in bytes.
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUpload int64) *ValidationMiddleware {
	v := validator.New()

	v.RegisterValidation("filename", isValidFilename)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator:    v,
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
		maxBodySize:  maxUpload,
	}
}

// MaxUploadBytes returns the configured file size limit
func (m *ValidationMiddleware) MaxUploadBytes() int64 {
	return m.maxBodySize
}

// LimitBody rejects requests whose declared length exceeds the upload limit
// and caps the body of the rest. Reading past the cap yields an
// *http.MaxBytesError, which the error handler maps to 413.
func (m *ValidationMiddleware) LimitBody(next http.Handler) http.Handler {
	limit := m.maxBodySize + multipartOverhead

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > limit {
			m.logger.WarnContext(r.Context(), "upload rejected by size",
				slog.Int64("content_length", r.ContentLength),
				slog.Int64("limit", limit),
				slog.String("request_id", GetRequestID(r.Context())),
			)
			m.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge.WithExtension("limit_bytes", m.maxBodySize))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

// ValidateUpload checks an upload's metadata. The returned error is an
// *apierrors.APIError ready for the error handler.
func (m *ValidationMiddleware) ValidateUpload(req UploadRequest) error {
	if err := m.ValidateStruct(req); err != nil {
		return err
	}
	if req.Size > m.maxBodySize {
		return apierrors.ErrPayloadTooLarge.WithExtension("limit_bytes", m.maxBodySize)
	}
	if !HasSpreadsheetExtension(req.Filename) {
		return apierrors.ErrUnsupportedFormat.WithExtension("allowed_extensions", SpreadsheetExtensions)
	}
	return nil
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// ValidateInt validates an integer query parameter
func (m *ValidationMiddleware) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max int, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		m.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a valid integer", param)))
		return 0, false
	}

	if intValue < min || intValue > max {
		m.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be between %d and %d", param, min, max)))
		return 0, false
	}

	return intValue, true
}

// ContentTypeValidator ensures requests have proper content type
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, apierrors.NewErrorResponse(apierrors.New(
					http.StatusBadRequest,
					"MISSING_CONTENT_TYPE",
					"Content-Type header is required",
				)))
				return
			}

			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			render.Status(r, http.StatusUnsupportedMediaType)
			render.JSON(w, r, apierrors.NewErrorResponse(apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE",
				"Unsupported content type",
				map[string]interface{}{
					"content_type": contentType,
					"allowed":      contentTypes,
				},
			)))
		})
	}
}

// HasSpreadsheetExtension reports whether name ends in a supported extension
func HasSpreadsheetExtension(name string) bool {
	return validation.HasSpreadsheetExtension(name)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "filename":
		return fmt.Sprintf("%s must be a valid filename", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isValidFilename validates filename format
func isValidFilename(fl validator.FieldLevel) bool {
	filename := fl.Field().String()
	if filename == "" {
		return false
	}
	// Prevent directory traversal
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return false
	}
	return len(filename) <= 255
}
