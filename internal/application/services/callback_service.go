package services

import (
	"context"
	"time"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

// CallbackUpdate carries the mutable fields of a callback request
type CallbackUpdate struct {
	Status         *entities.CallbackStatus
	ExecutiveNotes *string
}

// CallbackService manages the callback request queue
type CallbackService struct {
	repo repositories.CallbackRequestRepository
	now  func() time.Time
}

// NewCallbackService creates a new callback service
func NewCallbackService(repo repositories.CallbackRequestRepository) *CallbackService {
	return &CallbackService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest queues a new pending callback
func (s *CallbackService) CreateRequest(ctx context.Context, request *entities.CallbackRequest) error {
	request.Status = entities.CallbackStatusPending
	return s.repo.Create(ctx, request)
}

// ListRequests lists callbacks in queue order
func (s *CallbackService) ListRequests(ctx context.Context, status entities.CallbackStatus, page repositories.Pagination) ([]*entities.CallbackRequest, error) {
	return s.repo.List(ctx, status, page)
}

// UpdateRequest applies update. Moving into contacted stamps contacted_at.
func (s *CallbackService) UpdateRequest(ctx context.Context, id int64, update *CallbackUpdate) (*entities.CallbackRequest, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Status != nil && *update.Status != request.Status {
		if *update.Status == entities.CallbackStatusContacted {
			now := s.now()
			request.ContactedAt = &now
		}
		request.Status = *update.Status
	}
	if update.ExecutiveNotes != nil {
		request.ExecutiveNotes = *update.ExecutiveNotes
	}

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}
