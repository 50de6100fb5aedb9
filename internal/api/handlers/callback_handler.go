package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/application/services"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

const (
	callbackRateLimit   = 5
	callbackRateWindow  = time.Hour
	callbackDedupWindow = 24 * time.Hour
)

// CallbackService defines the callback operations used by the handler
type CallbackService interface {
	CreateRequest(ctx context.Context, request *entities.CallbackRequest) error
	ListRequests(ctx context.Context, status entities.CallbackStatus, page repositories.Pagination) ([]*entities.CallbackRequest, error)
	UpdateRequest(ctx context.Context, id int64, update *services.CallbackUpdate) (*entities.CallbackRequest, error)
}

// CallbackHandler handles callback requests
type CallbackHandler struct {
	service CallbackService
	guard   *submissionGuard
}

// NewCallbackHandler creates a new callback handler. cache may be nil.
func NewCallbackHandler(service CallbackService, cache providers.CacheProvider) *CallbackHandler {
	return &CallbackHandler{
		service: service,
		guard:   newSubmissionGuard("callback", callbackRateLimit, callbackRateWindow, callbackDedupWindow, cache),
	}
}

type callbackCreateRequest struct {
	MobileNumber  string `json:"mobile_number" validate:"required,mobile"`
	PreferredTime string `json:"preferred_time" validate:"max=50"`
	Notes         string `json:"notes" validate:"max=1000"`
}

type callbackUpdateRequest struct {
	Status         *entities.CallbackStatus `json:"status" validate:"omitempty,oneof=pending contacted completed cancelled"`
	ExecutiveNotes *string                  `json:"executive_notes" validate:"omitempty,max=2000"`
}

// CreateCallback handles POST /api/callback-requests
func (h *CallbackHandler) CreateCallback(w http.ResponseWriter, r *http.Request) {
	var req callbackCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	allowed, retryAfter := h.guard.allow(r.Context(), clientIP(r))
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	if h.guard.duplicate(r.Context(), mobileFingerprint(req.MobileNumber)) {
		respondWithJSON(w, http.StatusAccepted, map[string]string{
			"status": "duplicate_ignored",
		})
		return
	}

	request := &entities.CallbackRequest{
		MobileNumber:  req.MobileNumber,
		PreferredTime: strings.TrimSpace(req.PreferredTime),
		Notes:         strings.TrimSpace(req.Notes),
	}
	if err := h.service.CreateRequest(r.Context(), request); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, request)
}

// ListCallbacks handles GET /api/callback-requests
func (h *CallbackHandler) ListCallbacks(w http.ResponseWriter, r *http.Request) {
	status := entities.CallbackStatus(r.URL.Query().Get("status"))
	switch status {
	case "", entities.CallbackStatusPending, entities.CallbackStatusContacted,
		entities.CallbackStatusCompleted, entities.CallbackStatusCancelled:
	default:
		respondWithError(w, http.StatusBadRequest, "invalid status")
		return
	}

	requests, err := h.service.ListRequests(r.Context(), status, parsePagination(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, requests)
}

// UpdateCallback handles PATCH /api/callback-requests/{id}
func (h *CallbackHandler) UpdateCallback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req callbackUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	request, err := h.service.UpdateRequest(r.Context(), id, &services.CallbackUpdate{
		Status:         req.Status,
		ExecutiveNotes: req.ExecutiveNotes,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, request)
}

// mobileFingerprint ignores formatting so "+1 555..." and "1555..." collide.
func mobileFingerprint(mobile string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, mobile)
	hash := sha256.Sum256([]byte(digits))
	return hex.EncodeToString(hash[:])
}
