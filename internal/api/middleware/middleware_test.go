package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	t.Run("generates a request id and exposes the request logger", func(t *testing.T) {
		var fromCtx *zerolog.Logger
		handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromCtx = zerolog.Ctx(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
		require.NotNil(t, fromCtx)
		assert.NotEqual(t, zerolog.Disabled, fromCtx.GetLevel())
	})

	t.Run("keeps an incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()

		LoggingMiddleware(jsonHandler(`{}`)).ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("level follows status", func(t *testing.T) {
		assert.Equal(t, zerolog.InfoLevel, levelForStatus(http.StatusOK))
		assert.Equal(t, zerolog.WarnLevel, levelForStatus(http.StatusTooManyRequests))
		assert.Equal(t, zerolog.ErrorLevel, levelForStatus(http.StatusBadGateway))
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("echoes an allowed origin", func(t *testing.T) {
		handler := CORSMiddleware([]string{"https://clinic.example"})(jsonHandler(`{}`))
		req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
		req.Header.Set("Origin", "https://clinic.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "https://clinic.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})

	t.Run("rejects unknown origins", func(t *testing.T) {
		handler := CORSMiddleware([]string{"https://clinic.example"})(jsonHandler(`{}`))
		req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard by default and preflight short-circuits", func(t *testing.T) {
		called := false
		handler := CORSMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.False(t, called)
	})
}

func TestResponseOptimization(t *testing.T) {
	body := `{"doctors":[{"id":1,"name":"Dr. Rao"}]}`

	t.Run("compresses and tags JSON responses", func(t *testing.T) {
		handler := ResponseOptimization(jsonHandler(body))
		req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		assert.NotEmpty(t, rec.Header().Get("ETag"))
		assert.Equal(t, "public, max-age=120, must-revalidate", rec.Header().Get("Cache-Control"))

		zr, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		plain, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.JSONEq(t, body, string(plain))
	})

	t.Run("matching etag returns 304", func(t *testing.T) {
		handler := ResponseOptimization(jsonHandler(body))
		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/specialities", nil))

		req := httptest.NewRequest(http.MethodGet, "/api/specialities", nil)
		req.Header.Set("If-None-Match", first.Header().Get("ETag"))
		second := httptest.NewRecorder()
		handler.ServeHTTP(second, req)

		assert.Equal(t, http.StatusNotModified, second.Code)
		assert.Empty(t, second.Body.Bytes())
	})

	t.Run("event streams pass through untouched", func(t *testing.T) {
		handler := ResponseOptimization(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = w.Write([]byte("event: connected\ndata: {}\n\n"))
			w.(http.Flusher).Flush()
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/stream/doctors/1/slots", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Empty(t, rec.Header().Get("ETag"))
		assert.True(t, rec.Flushed)
		assert.Contains(t, rec.Body.String(), "event: connected")
	})
}

func TestObservabilityMiddleware_ResolvesPattern(t *testing.T) {
	mux := http.NewServeMux()
	var seen string
	mux.HandleFunc("GET /api/doctors/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = r.PathValue("id")
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	ObservabilityMiddleware(nil, mux)(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/doctors/7", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "7", seen)
}
