package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"regreport/internal/chart"
	"regreport/internal/dataprocessing"
	apierrors "regreport/internal/errors"
	custommw "regreport/internal/middleware"
	"regreport/internal/services"
	"regreport/internal/shared/testutil"
)

const testMaxUpload = 1 << 20

var testDisplay = dataprocessing.DisplayOptions{PreviewRows: 10}

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Summary(ctx context.Context, r io.Reader, filename string) (*services.Analysis, error) {
	args := m.Called(filename)
	a, _ := args.Get(0).(*services.Analysis)
	return a, args.Error(1)
}

func (m *MockReportService) Preview(ctx context.Context, r io.Reader, filename string) (*services.PreviewResult, error) {
	args := m.Called(filename)
	p, _ := args.Get(0).(*services.PreviewResult)
	return p, args.Error(1)
}

func (m *MockReportService) Chart(ctx context.Context, r io.Reader, filename string) ([]byte, error) {
	args := m.Called(filename)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockReportService) CourseCountsCSV(ctx context.Context, r io.Reader, filename string) ([]byte, error) {
	args := m.Called(filename)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockReportService) BuildReport(ctx context.Context, r io.Reader, filename string) (*services.ReportArtifact, error) {
	args := m.Called(filename)
	a, _ := args.Get(0).(*services.ReportArtifact)
	return a, args.Error(1)
}

// newPipeline builds the real service with a small chart and a fixed clock
func newPipeline(logger *slog.Logger) *services.ReportService {
	return services.NewReportService(services.ReportServiceConfig{
		Logger:   logger,
		Renderer: chart.NewRenderer(logger, chart.Options{WidthInches: 4, HeightInches: 3, DPI: 50}),
		Display:  testDisplay,
		Clock: func() time.Time {
			return time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
		},
	})
}

func newValidation(logger *slog.Logger) (*custommw.ValidationMiddleware, *apierrors.ErrorHandler) {
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return custommw.NewValidationMiddleware(logger, errorHandler, testMaxUpload), errorHandler
}

func newReportRouter(t *testing.T, service ReportServiceInterface) (http.Handler, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	validation, errorHandler := newValidation(logger)
	h := NewReportHandler(service, validation, errorHandler, testDisplay, logger)
	return h.Routes(), handler
}

// multipartRequest builds a POST with the file under the "file" field.
// An empty filename omits the file part.
func multipartRequest(t *testing.T, target, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile(FileField, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func sampleWorkbook(t *testing.T) []byte {
	return testutil.WorkbookBytes(t, testutil.RequiredHeaders, testutil.SampleRows())
}
