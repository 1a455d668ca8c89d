package http

import (
	"bytes"
	"encoding/base64"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"regreport/internal/dataprocessing"
	apierrors "regreport/internal/errors"
	custommw "regreport/internal/middleware"
	"regreport/internal/services"
	"regreport/internal/web"
	"regreport/pkg/contracts"
	"regreport/pkg/contracts/domain"
)

// Upload actions of the page form
const (
	ActionPreview = "preview"
	ActionReport  = "report"
)

// PageData is the model of the upload page
type PageData struct {
	Title           string
	Version         string
	RequiredColumns []string
	MaxUploadMB     int64
	Example         dataprocessing.Table
	Result          *PreviewView
	Error           *PageError
}

// PreviewView is a processed upload as shown on the page
type PreviewView struct {
	Source   string
	Metrics  services.DisplayMetrics
	ChartURI template.URL
	Courses  domain.CourseAggregate
	Preview  dataprocessing.Table
}

// PageError is a failure message with its remediation hint
type PageError struct {
	Message string
	Hint    string
}

// PageHandler serves the upload form and its results
type PageHandler struct {
	service    ReportServiceInterface
	validation *custommw.ValidationMiddleware
	templates  *template.Template
	title      string
	logger     *slog.Logger
}

// NewPageHandler creates a page handler
func NewPageHandler(service ReportServiceInterface, validation *custommw.ValidationMiddleware, title string, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		service:    service,
		validation: validation,
		templates:  tmpl,
		title:      title,
		logger:     logger.With(slog.String("component", "page_handler")),
	}, nil
}

// Index handles GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.page())
}

// Upload handles POST /. The preview action renders the summary; the
// report action answers with the .docx download.
func (h *PageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(r, h.validation)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	defer up.Close()

	switch up.action {
	case ActionReport:
		artifact, err := h.service.BuildReport(r.Context(), up.file, up.name)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		h.logger.InfoContext(r.Context(), "report downloaded",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("report_id", artifact.ID),
			slog.String("filename", artifact.Filename),
		)
		writeBytes(w, artifact.ContentType, artifact.Filename, artifact.Data)

	default:
		result, err := h.service.Preview(r.Context(), up.file, up.name)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		data := h.page()
		data.Result = &PreviewView{
			Source:   result.Source,
			Metrics:  result.Metrics,
			ChartURI: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(result.Chart)),
			Courses:  result.Courses,
			Preview:  result.Preview,
		}
		h.render(w, r, http.StatusOK, data)
	}
}

func (h *PageHandler) page() PageData {
	return PageData{
		Title:           h.title,
		Version:         contracts.Version,
		RequiredColumns: dataprocessing.RequiredColumns,
		MaxUploadMB:     h.validation.MaxUploadBytes() >> 20,
		Example:         dataprocessing.ExampleTable(),
	}
}

// renderError shows err on the page with the status the API would use.
func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	mapped := pipelineError(err)
	status := http.StatusInternalServerError
	message := "Error al procesar el archivo: " + err.Error()

	var apiErr *apierrors.APIError
	if errors.As(mapped, &apiErr) {
		status = apiErr.StatusCode
		message = apiErr.Message
	}

	h.logger.WarnContext(r.Context(), "upload failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("status", status),
		slog.String("kind", services.ErrorKind(err)),
		slog.String("error", err.Error()),
	)

	hint := services.UserHint(err)
	if hint == "" && status >= http.StatusInternalServerError {
		hint = services.ProcessingHint
	}

	data := h.page()
	data.Error = &PageError{Message: message, Hint: hint}
	h.render(w, r, status, data)
}

// render executes the page into a buffer so a template failure never
// leaves a half-written response.
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, web.PageTemplate, data); err != nil {
		h.logger.ErrorContext(r.Context(), "page render failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
