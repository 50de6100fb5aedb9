package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

// ChatService defines the chat operations used by the handler
type ChatService interface {
	Handle(ctx context.Context, req *entities.ChatRequest) (*entities.ChatResponse, error)
	GetSession(ctx context.Context, id int64) (*entities.ChatSession, error)
}

// ChatHandler handles chatbot requests
type ChatHandler struct {
	service ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req entities.ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Handle(r.Context(), &req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /api/chat/sessions/{id}
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}
