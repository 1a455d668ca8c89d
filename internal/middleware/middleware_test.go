package middleware

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regreport/internal/infrastructure"
	"regreport/internal/shared/testutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
})

func TestRequestID(t *testing.T) {
	var seen, chiSeen, traceSeen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		chiSeen = chimiddleware.GetReqID(r.Context())
		traceSeen = infrastructure.GetTraceID(r.Context())
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
		assert.Equal(t, seen, chiSeen)
		assert.Equal(t, seen, traceSeen)
	})

	t.Run("keeps client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "client-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "client-123", seen)
		assert.Equal(t, "client-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestStructuredLogger(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := RequestID(StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/registrations/summary", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "request completed")
	testutil.AssertLogAttr(t, handler, "status", http.StatusCreated)
	testutil.AssertLogAttr(t, handler, "request_id", "req-1")
	testutil.AssertLogAttr(t, handler, "path", "/api/registrations/summary")
}

func TestRecoverer(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := RequestID(Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(500), body["status"])
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body["trace_id"])

	testutil.AssertLogContains(t, handler, slog.LevelError, "panic recovered")
}

func TestRateLimiter(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	rl := NewRateLimiter(0.001, 1, logger)
	h := rl.Handler(okHandler)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "/errors/rate-limit")

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "rate limit exceeded")
}

func TestTimeout(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	var deadline time.Time
	var hasDeadline bool
	h := Timeout(10*time.Millisecond, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
		<-r.Context().Done()
		assert.ErrorIs(t, r.Context().Err(), context.DeadlineExceeded)
	}))

	start := time.Now()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))

	require.True(t, hasDeadline)
	assert.WithinDuration(t, start.Add(10*time.Millisecond), deadline, 50*time.Millisecond)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "request deadline exceeded")
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"http://localhost:8080"}})(okHandler)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{name: "allowed origin", method: http.MethodPost, origin: "http://localhost:8080", wantStatus: http.StatusOK, wantOrigin: "http://localhost:8080"},
		{name: "other origin", method: http.MethodPost, origin: "http://evil.example", wantStatus: http.StatusOK, wantOrigin: ""},
		{name: "preflight", method: http.MethodOptions, origin: "http://localhost:8080", wantStatus: http.StatusNoContent, wantOrigin: "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/registrations/report", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "img-src 'self' data:")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCompress(t *testing.T) {
	body := strings.Repeat("Python Básico,2\n", 200)
	h := Compress(5)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		io.WriteString(w, body)
	}))

	tests := []struct {
		encoding string
		decode   func(io.Reader) (io.Reader, error)
	}{
		{
			encoding: "br",
			decode:   func(r io.Reader) (io.Reader, error) { return brotli.NewReader(r), nil },
		},
		{
			encoding: "gzip",
			decode:   func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Encoding", tt.encoding)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.encoding, rec.Header().Get("Content-Encoding"))
			assert.Less(t, rec.Body.Len(), len(body))

			r, err := tt.decode(rec.Body)
			require.NoError(t, err)
			decoded, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, body, string(decoded))
		})
	}

	t.Run("documents are not compressed", func(t *testing.T) {
		h := Compress(5)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
			io.WriteString(w, body)
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "br, gzip")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, body, rec.Body.String())
	})
}

func TestBrotliLevel(t *testing.T) {
	assert.Equal(t, brotli.DefaultCompression, brotliLevel(-1))
	assert.Equal(t, 0, brotliLevel(0))
	assert.Equal(t, 5, brotliLevel(5))
	assert.Equal(t, 9, brotliLevel(9), "gzip levels are not rescaled")
	assert.Equal(t, brotli.BestCompression, brotliLevel(42))
}
