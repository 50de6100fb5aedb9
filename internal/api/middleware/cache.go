package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
)

// CacheConfig holds cache configuration for a route family
type CacheConfig struct {
	TTLSeconds int
	Enabled    bool
}

// DefaultCacheConfigs caches the read-mostly catalogue families.
var DefaultCacheConfigs = map[string]CacheConfig{
	"doctors":         {TTLSeconds: 180, Enabled: true}, // 3 minutes
	"specialities":    {TTLSeconds: 300, Enabled: true}, // 5 minutes
	"health-packages": {TTLSeconds: 600, Enabled: true}, // 10 minutes
}

// uncachedSegments are live views inside otherwise cached families.
var uncachedSegments = []string{"/available-slots/", "/time-slots"}

// CacheMiddleware provides HTTP response caching
type CacheMiddleware struct {
	cache        providers.CacheProvider
	metrics      *observability.Metrics
	routeConfigs map[string]CacheConfig
}

// NewCacheMiddleware creates a new cache middleware using DefaultCacheConfigs.
func NewCacheMiddleware(cache providers.CacheProvider, metrics *observability.Metrics) *CacheMiddleware {
	return NewCacheMiddlewareWithConfig(cache, metrics, DefaultCacheConfigs)
}

// NewCacheMiddlewareWithConfig creates a cache middleware keyed by route
// family, the first path segment after /api.
func NewCacheMiddlewareWithConfig(cache providers.CacheProvider, metrics *observability.Metrics, configs map[string]CacheConfig) *CacheMiddleware {
	return &CacheMiddleware{
		cache:        cache,
		metrics:      metrics,
		routeConfigs: configs,
	}
}

// Middleware serves cached GET responses and drops a family's entries after
// a successful write to it.
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		family := routeFamily(r.URL.Path)
		config, ok := m.routeConfigs[family]
		if !ok || !config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method != http.MethodGet {
			m.serveWrite(w, r, next, family)
			return
		}

		if isUncachedPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		cacheKey := generateCacheKey(family, r)

		if cached, err := m.cache.Get(ctx, cacheKey); err == nil {
			observability.RecordCacheHit(ctx, m.metrics, family)
			logger.Debug().Str("key", cacheKey).Msg("cache hit")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		observability.RecordCacheMiss(ctx, m.metrics, family)
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}

		next.ServeHTTP(recorder, r)

		// Only cache successful responses
		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(ctx, cacheKey, recorder.body.Bytes(), config.TTLSeconds); err != nil {
				logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache response")
			}
		}
	})
}

func (m *CacheMiddleware) serveWrite(w http.ResponseWriter, r *http.Request, next http.Handler, family string) {
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
	next.ServeHTTP(rw, r)

	if rw.statusCode < http.StatusOK || rw.statusCode >= http.StatusMultipleChoices {
		return
	}
	if err := m.InvalidateFamily(r.Context(), family); err != nil {
		observability.LoggerFromContext(r.Context()).Warn().Err(err).
			Str("family", family).
			Msg("failed to invalidate cached responses")
	}
}

// InvalidateFamily drops every cached response of a route family.
func (m *CacheMiddleware) InvalidateFamily(ctx context.Context, family string) error {
	return m.cache.DeletePattern(ctx, providers.HTTPCacheFamilyPattern(family))
}

// routeFamily returns the first path segment after /api, or "" when the
// path is not an API path.
func routeFamily(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/")
	if !ok {
		return ""
	}
	family, _, _ := strings.Cut(rest, "/")
	return family
}

func isUncachedPath(path string) bool {
	for _, segment := range uncachedSegments {
		if strings.Contains(path, segment) {
			return true
		}
	}
	return false
}

// generateCacheKey keeps the family readable and hashes the rest so a
// whole family can be dropped by pattern.
func generateCacheKey(family string, r *http.Request) string {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.Query().Encode()
	}

	hash := sha256.Sum256([]byte(key))
	return providers.HTTPCachePrefix + family + ":" + hex.EncodeToString(hash[:])
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}

	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}

func (r *responseRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
