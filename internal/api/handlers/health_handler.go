package handlers

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and dependency health
type HealthHandler struct {
	database Pinger
	cache    Pinger
}

// NewHealthHandler creates a new health handler. cache may be nil when
// Redis is not configured.
func NewHealthHandler(database, cache Pinger) *HealthHandler {
	return &HealthHandler{database: database, cache: cache}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{
		"status":   "healthy",
		"database": "up",
		"cache":    "disabled",
	}

	if err := h.database.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "down"
	}

	// A lost cache degrades the service without taking it down.
	if h.cache != nil {
		body["cache"] = "up"
		if err := h.cache.Ping(ctx); err != nil {
			body["cache"] = "down"
			if status == http.StatusOK {
				body["status"] = "degraded"
			}
		}
	}

	respondWithJSON(w, status, body)
}
