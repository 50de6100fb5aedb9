package middleware

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
)

// browserMaxAge is the Cache-Control policy per route family. Families not
// listed here are treated as private dynamic content.
var browserMaxAge = map[string]string{
	"specialities":    "public, max-age=300, must-revalidate",
	"health-packages": "public, max-age=300, must-revalidate",
	"doctors":         "public, max-age=120, must-revalidate",
}

const (
	cacheControlDynamic = "private, no-cache, must-revalidate"
	gzipLevel           = 5
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, gzipLevel)
		return gz
	},
}

// Compression gzips responses for clients that accept it. Event streams are
// left alone since they are flushed per message.
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isStreamPath(r.URL.Path) || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gz := gzipWriterPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gzipWriterPool.Put(gz)
		}()

		h := w.Header()
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		h.Del("Content-Length")

		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer *gzip.Writer
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *gzipResponseWriter) Flush() {
	_ = w.Writer.Flush()
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// ETag buffers successful GET and HEAD responses, tags them with a content
// hash and answers 304 when the client already holds that version.
func ETag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method != http.MethodGet && r.Method != http.MethodHead) || isStreamPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		rec := &etagResponseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.statusCode
		if status == 0 {
			status = http.StatusOK
		}
		if status != http.StatusOK {
			rec.flushTo(w, status)
			return
		}

		etag := contentETag(rec.buffer.Bytes())
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		if w.Header().Get("Cache-Control") == "" {
			w.Header().Set("Cache-Control", "private, must-revalidate")
		}
		rec.flushTo(w, status)
	})
}

func contentETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

type etagResponseRecorder struct {
	http.ResponseWriter
	buffer     bytes.Buffer
	statusCode int
}

func (r *etagResponseRecorder) Write(b []byte) (int, error) {
	return r.buffer.Write(b)
}

func (r *etagResponseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
}

func (r *etagResponseRecorder) flushTo(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
	_, _ = w.Write(r.buffer.Bytes())
}

// CacheControl sets the browser caching policy. Catalogue families may be
// cached briefly; slot views and writes never are.
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheControlFor(r))
		next.ServeHTTP(w, r)
	})
}

func cacheControlFor(r *http.Request) string {
	path := r.URL.Path
	switch {
	case isStreamPath(path):
		return "no-cache"
	case r.Method != http.MethodGet:
		return "no-store"
	case isUncachedPath(path):
		return cacheControlDynamic
	}
	if policy, ok := browserMaxAge[routeFamily(path)]; ok {
		return policy
	}
	return cacheControlDynamic
}

func isStreamPath(path string) bool {
	return strings.HasPrefix(path, "/api/stream/")
}

// ResponseOptimization applies CacheControl, then ETag, then Compression.
func ResponseOptimization(next http.Handler) http.Handler {
	return CacheControl(ETag(Compression(next)))
}
