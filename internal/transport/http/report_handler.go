package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"regreport/internal/dataprocessing"
	apierrors "regreport/internal/errors"
	custommw "regreport/internal/middleware"
)

// CourseCountsFilename is the download name of the course-count export
const CourseCountsFilename = "inscripciones_por_curso.csv"

// maxPreviewRows bounds the preview_rows query parameter
const maxPreviewRows = 1000

// ReportHandler serves the registration pipeline as a JSON API
type ReportHandler struct {
	service      ReportServiceInterface
	validation   *custommw.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	display      dataprocessing.DisplayOptions
	logger       *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	service ReportServiceInterface,
	validation *custommw.ValidationMiddleware,
	errorHandler *apierrors.ErrorHandler,
	display dataprocessing.DisplayOptions,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validation:   validation,
		errorHandler: errorHandler,
		display:      display,
		logger:       logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the registration routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(h.validation.LimitBody)
	r.Use(custommw.ContentTypeValidator("multipart/form-data"))

	r.Post("/summary", h.Summary)
	r.Post("/chart", h.Chart)
	r.Post("/report", h.Report)
	r.Post("/course-counts.csv", h.CourseCounts)

	return r
}

// Summary handles POST /api/registrations/summary
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.validation.ValidateInt(w, r, "preview_rows", 0, maxPreviewRows, h.display.PreviewRows)
	if !ok {
		return
	}

	up, ok := h.open(w, r)
	if !ok {
		return
	}
	defer up.Close()

	analysis, err := h.service.Summary(r.Context(), up.file, up.name)
	if err != nil {
		h.fail(w, r, "summary", err)
		return
	}

	if rows != h.display.PreviewRows && analysis.Dataset != nil {
		analysis.Preview = analysis.Dataset.Preview(dataprocessing.DisplayOptions{
			PreviewRows: rows,
			MaxColumns:  h.display.MaxColumns,
		})
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   analysis,
	})
}

// Chart handles POST /api/registrations/chart
func (h *ReportHandler) Chart(w http.ResponseWriter, r *http.Request) {
	up, ok := h.open(w, r)
	if !ok {
		return
	}
	defer up.Close()

	png, err := h.service.Chart(r.Context(), up.file, up.name)
	if err != nil {
		h.fail(w, r, "chart", err)
		return
	}

	writeBytes(w, "image/png", "", png)
}

// Report handles POST /api/registrations/report
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	up, ok := h.open(w, r)
	if !ok {
		return
	}
	defer up.Close()

	artifact, err := h.service.BuildReport(r.Context(), up.file, up.name)
	if err != nil {
		h.fail(w, r, "report", err)
		return
	}

	h.logger.InfoContext(r.Context(), "report generated",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("report_id", artifact.ID),
		slog.String("filename", artifact.Filename),
		slog.Int("bytes", len(artifact.Data)),
	)

	w.Header().Set("X-Report-ID", artifact.ID)
	writeBytes(w, artifact.ContentType, artifact.Filename, artifact.Data)
}

// CourseCounts handles POST /api/registrations/course-counts.csv
func (h *ReportHandler) CourseCounts(w http.ResponseWriter, r *http.Request) {
	up, ok := h.open(w, r)
	if !ok {
		return
	}
	defer up.Close()

	data, err := h.service.CourseCountsCSV(r.Context(), up.file, up.name)
	if err != nil {
		h.fail(w, r, "course_counts", err)
		return
	}

	writeBytes(w, "text/csv; charset=utf-8", CourseCountsFilename, data)
}

func (h *ReportHandler) open(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	up, err := readUpload(r, h.validation)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return up, true
}

func (h *ReportHandler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	h.logger.WarnContext(r.Context(), "pipeline request failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	h.errorHandler.HandleError(w, r, pipelineError(err))
}

// writeBytes sends a binary body. A non-empty filename makes it a download.
func writeBytes(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
