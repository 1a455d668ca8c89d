package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regreport/internal/config"
	"regreport/internal/shared/testutil"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Report.ChartWidthInches = 4
	cfg.Report.ChartHeightInches = 3
	cfg.Report.ChartDPI = 50

	logger, _ := testutil.NewTestLogger(t)
	application, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		application.OTelProviders.Shutdown(context.Background())
	})
	return application
}

func uploadRequest(t *testing.T, target string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "inscripciones.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestApplication_Routes(t *testing.T) {
	application := newTestApp(t)

	tests := []struct {
		name        string
		method      string
		path        string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{name: "upload page", method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantType: "text/html", wantContain: "Carga de Datos"},
		{name: "stylesheet", method: http.MethodGet, path: "/static/style.css", wantStatus: http.StatusOK, wantType: "text/css", wantContain: ".metrics"},
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"status":"ok"`},
		{name: "readiness", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"pipeline"`},
		{name: "liveness", method: http.MethodGet, path: "/api/health/live", wantStatus: http.StatusOK, wantType: "application/json", wantContain: "memory_usage_mb"},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"api_version"`},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound, wantContain: "/errors/not-found"},
		{name: "wrong method", method: http.MethodGet, path: "/api/registrations/report", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			application.Router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			if tt.wantType != "" {
				assert.Contains(t, rec.Header().Get("Content-Type"), tt.wantType)
			}
			if tt.wantContain != "" {
				assert.Contains(t, rec.Body.String(), tt.wantContain)
			}
		})
	}
}

func TestApplication_SummaryEndToEnd(t *testing.T) {
	application := newTestApp(t)
	data := testutil.WorkbookBytes(t, testutil.RequiredHeaders, testutil.SampleRows())

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, uploadRequest(t, "/api/registrations/summary", data))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Metrics struct {
				TotalRecords int `json:"total_records"`
				UniquePeople int `json:"unique_people"`
			} `json:"metrics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 3, body.Data.Metrics.TotalRecords)
	assert.Equal(t, 3, body.Data.Metrics.UniquePeople)

	// Pipeline and HTTP instruments are exported for scraping
	rec = httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "report_pipeline_runs_total")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestApplication_SecurityHeadersAndCORS(t *testing.T) {
	application := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_StartStop(t *testing.T) {
	application := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- application.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}
}
