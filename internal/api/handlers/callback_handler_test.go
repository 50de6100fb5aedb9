package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/adapters/cache"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/api/handlers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/application/services"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	redisclient "github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

type stubCallbackService struct {
	mu       sync.Mutex
	created  []*entities.CallbackRequest
	listed   entities.CallbackStatus
	requests map[int64]*entities.CallbackRequest
}

func (s *stubCallbackService) CreateRequest(ctx context.Context, request *entities.CallbackRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request.ID = int64(len(s.created) + 1)
	request.Status = entities.CallbackStatusPending
	s.created = append(s.created, request)
	return nil
}

func (s *stubCallbackService) ListRequests(ctx context.Context, status entities.CallbackStatus, page repositories.Pagination) ([]*entities.CallbackRequest, error) {
	s.listed = status
	return s.created, nil
}

func (s *stubCallbackService) UpdateRequest(ctx context.Context, id int64, update *services.CallbackUpdate) (*entities.CallbackRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("callback request not found")
	}
	if update.Status != nil {
		request.Status = *update.Status
	}
	if update.ExecutiveNotes != nil {
		request.ExecutiveNotes = *update.ExecutiveNotes
	}
	return request, nil
}

func postCallback(handler *handlers.CallbackHandler, body, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/callback-requests", strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.CreateCallback(w, req)
	return w
}

func TestCallbackHandler_CreateCallback(t *testing.T) {
	t.Run("queues a pending request", func(t *testing.T) {
		service := &stubCallbackService{}
		handler := handlers.NewCallbackHandler(service, nil)

		w := postCallback(handler, `{"mobile_number":"+2348012345678","preferred_time":"morning"}`, "10.0.0.1:1234")

		assert.Equal(t, http.StatusCreated, w.Code)
		require.Len(t, service.created, 1)
		assert.Equal(t, "morning", service.created[0].PreferredTime)

		var got entities.CallbackRequest
		decodeJSON(t, w, &got)
		assert.Equal(t, entities.CallbackStatusPending, got.Status)
	})

	t.Run("rejects an invalid mobile number", func(t *testing.T) {
		service := &stubCallbackService{}
		handler := handlers.NewCallbackHandler(service, nil)

		for _, mobile := range []string{"12345", "0801-234-5678", "+1234567890123456"} {
			w := postCallback(handler, `{"mobile_number":"`+mobile+`"}`, "10.0.0.1:1234")
			assert.Equal(t, http.StatusBadRequest, w.Code, mobile)
		}
		assert.Empty(t, service.created)
	})

	t.Run("ignores the same number twice", func(t *testing.T) {
		service := &stubCallbackService{}
		handler := handlers.NewCallbackHandler(service, nil)

		first := postCallback(handler, `{"mobile_number":"+2348012345678"}`, "10.0.0.3:1234")
		second := postCallback(handler, `{"mobile_number":"2348012345678"}`, "10.0.0.4:1234")

		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusAccepted, second.Code)
		var body map[string]string
		decodeJSON(t, second, &body)
		assert.Equal(t, "duplicate_ignored", body["status"])
		assert.Len(t, service.created, 1)
	})

	t.Run("rate limits a single client", func(t *testing.T) {
		service := &stubCallbackService{}
		handler := handlers.NewCallbackHandler(service, nil)

		for i := 0; i < 5; i++ {
			w := postCallback(handler, `{"mobile_number":"+23480123456`+string(rune('0'+i))+`0"}`, "10.0.0.2:1234")
			assert.Equal(t, http.StatusCreated, w.Code)
		}

		w := postCallback(handler, `{"mobile_number":"+2348099999999"}`, "10.0.0.2:1234")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("shares limits through redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redisclient.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		shared := cache.NewRedisAdapter(client)

		service := &stubCallbackService{}
		first := handlers.NewCallbackHandler(service, shared)
		second := handlers.NewCallbackHandler(service, shared)

		assert.Equal(t, http.StatusCreated, postCallback(first, `{"mobile_number":"+2348012345678"}`, "10.0.0.5:1").Code)
		assert.Equal(t, http.StatusAccepted, postCallback(second, `{"mobile_number":"+2348012345678"}`, "10.0.0.6:1").Code)
		assert.True(t, mr.Exists("callback:rate:10.0.0.5"))
	})
}

func TestCallbackHandler_ListCallbacks(t *testing.T) {
	t.Run("filters by status", func(t *testing.T) {
		service := &stubCallbackService{}
		handler := handlers.NewCallbackHandler(service, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/callback-requests?status=contacted", nil)
		w := httptest.NewRecorder()
		handler.ListCallbacks(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, entities.CallbackStatusContacted, service.listed)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		handler := handlers.NewCallbackHandler(&stubCallbackService{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/callback-requests?status=lost", nil)
		w := httptest.NewRecorder()
		handler.ListCallbacks(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCallbackHandler_UpdateCallback(t *testing.T) {
	t.Run("applies status and notes", func(t *testing.T) {
		service := &stubCallbackService{requests: map[int64]*entities.CallbackRequest{
			4: {ID: 4, MobileNumber: "+2348012345678", Status: entities.CallbackStatusPending},
		}}
		handler := handlers.NewCallbackHandler(service, nil)

		req := httptest.NewRequest(http.MethodPatch, "/api/callback-requests/4",
			strings.NewReader(`{"status":"contacted","executive_notes":"left a voicemail"}`))
		req.SetPathValue("id", "4")
		w := httptest.NewRecorder()
		handler.UpdateCallback(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, entities.CallbackStatusContacted, service.requests[4].Status)
		assert.Equal(t, "left a voicemail", service.requests[4].ExecutiveNotes)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		handler := handlers.NewCallbackHandler(&stubCallbackService{}, nil)

		req := httptest.NewRequest(http.MethodPatch, "/api/callback-requests/4", strings.NewReader(`{"status":"lost"}`))
		req.SetPathValue("id", "4")
		w := httptest.NewRecorder()
		handler.UpdateCallback(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps a missing request to 404", func(t *testing.T) {
		handler := handlers.NewCallbackHandler(&stubCallbackService{}, nil)

		req := httptest.NewRequest(http.MethodPatch, "/api/callback-requests/9", strings.NewReader(`{"status":"completed"}`))
		req.SetPathValue("id", "9")
		w := httptest.NewRecorder()
		handler.UpdateCallback(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
