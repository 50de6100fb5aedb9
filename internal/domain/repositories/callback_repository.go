package repositories

import (
	"context"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

// CallbackRequestRepository defines the interface for callback request persistence
type CallbackRequestRepository interface {
	Create(ctx context.Context, request *entities.CallbackRequest) error
	GetByID(ctx context.Context, id int64) (*entities.CallbackRequest, error)
	List(ctx context.Context, status entities.CallbackStatus, page Pagination) ([]*entities.CallbackRequest, error)
	Update(ctx context.Context, request *entities.CallbackRequest) error
}
