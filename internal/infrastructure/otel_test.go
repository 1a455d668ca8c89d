package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regreport/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	tests := []struct {
		name          string
		cfg           *OTelConfig
		wantMetrics   bool
		wantTracerSDK bool
	}{
		{
			name:        "default configuration",
			cfg:         nil,
			wantMetrics: true,
		},
		{
			name: "tracing to stdout",
			cfg: &OTelConfig{
				ServiceName:   ServiceName,
				Environment:   "test",
				TraceExporter: "stdout",
				EnableTracing: true,
				SampleRatio:   1,
			},
			wantTracerSDK: true,
		},
		{
			name: "everything disabled",
			cfg:  &OTelConfig{ServiceName: ServiceName, TraceExporter: "none"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, discardLogger())
			require.NoError(t, err)
			require.NotNil(t, providers)

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.Equal(t, tt.wantMetrics, providers.PrometheusHTTP != nil)
			assert.Equal(t, tt.wantTracerSDK, providers.TracerProvider != nil)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func TestOTelInitialization_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "zipkin"}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestOTelConfigFromTelemetry(t *testing.T) {
	cfg := OTelConfigFromTelemetry(config.TelemetryConfig{EnableMetrics: true, TraceExporter: "none"})
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.EnableMetrics)
	assert.False(t, cfg.EnableTracing)
}

func TestReportMetrics_ExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateReportMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordStage(ctx, "load", 20*time.Millisecond, nil)
	metrics.RecordRun(ctx, "report", "")
	metrics.RecordRun(ctx, "summary", "missing_columns")
	metrics.RecordsIngested.Add(ctx, 3)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "report_pipeline_runs_total")
	assert.Contains(t, body, "report_pipeline_failures_total")
	assert.Contains(t, body, `kind="missing_columns"`)
	assert.Contains(t, body, "report_pipeline_duration_seconds")
	assert.Contains(t, body, "report_records_ingested_total")
}

func TestReportMetrics_NilSafe(t *testing.T) {
	var m *ReportMetrics
	assert.NotPanics(t, func() {
		m.RecordStage(context.Background(), "chart", time.Second, errors.New("boom"))
		m.RecordRun(context.Background(), "report", "processing")
	})
}

func TestRecordError_NoSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordError(context.Background(), errors.New("not recorded"))
	})
}
