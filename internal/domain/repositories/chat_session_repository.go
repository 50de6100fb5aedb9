package repositories

import (
	"context"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

// ChatSessionRepository defines the interface for chat session persistence
type ChatSessionRepository interface {
	Create(ctx context.Context, session *entities.ChatSession) error
	GetByID(ctx context.Context, id int64) (*entities.ChatSession, error)
	Update(ctx context.Context, session *entities.ChatSession) error
}
