package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regreport/internal/shared/testutil"
)

func TestNewErrorHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	handler := NewErrorHandler(logger, true)

	assert.NotNil(t, handler)
	assert.True(t, handler.includeStack)
	assert.NotNil(t, handler.logger)
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "handle nil error",
			err:        nil,
			wantStatus: 0,
		},
		{
			name:       "handle context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "handle missing file",
			err:        ErrMissingFile,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeMissingFile,
			wantCode:   CodeMissingFile,
		},
		{
			name:       "handle wrapped input error",
			err:        fmt.Errorf("summary: %w", InputError(CodeMissingColumns, "Faltan las siguientes columnas en el archivo: Curso de interés")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeInvalidSpreadsheet,
			wantCode:   CodeMissingColumns,
		},
		{
			name:       "handle oversize body",
			err:        fmt.Errorf("parse form: %w", &http.MaxBytesError{Limit: 1024}),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantCode:   CodePayloadTooLarge,
		},
		{
			name:       "handle assembly failure",
			err:        ReportAssemblyError(fmt.Errorf("bad image")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeReportAssembly,
			wantCode:   CodeReportAssembly,
		},
		{
			name:       "handle generic error",
			err:        fmt.Errorf("something broke"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodPost, "/api/registrations/summary", nil)
			w := httptest.NewRecorder()

			handler.HandleError(w, req, tt.err)

			if tt.err == nil {
				assert.Equal(t, 0, w.Body.Len())
				return
			}

			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/registrations/summary", body["instance"])
			assert.Contains(t, body, "trace_id")
			assert.NotContains(t, body, "stack")
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
		})
	}
}

func TestErrorHandler_ExtensionsAreFlattened(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	err := InputError(CodeMissingColumns, "Faltan columnas").
		WithExtension("missing_columns", []string{"Hora de inicio", "Correo de contacto"})

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodPost, "/", nil), err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{"Hora de inicio", "Correo de contacto"}, body["missing_columns"])
}

func TestErrorHandler_LogsServerErrorsAtErrorLevel(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/x", nil), fmt.Errorf("disk on fire"))

	assert.True(t, logs.ContainsMessage("request failed"))
	assert.True(t, logs.ContainsAttr("error", "disk on fire"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.HandlePanic(w, httptest.NewRequest(http.MethodGet, "/", nil), "boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, logs.ContainsMessage("panic recovered"))
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), TypeNotFound)

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "Method DELETE is not allowed")
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		RecoveryMiddleware(handler)(panicking).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
