package services

import (
	"context"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

// QuestionnaireService manages the questionnaire set used by the chat fallback
type QuestionnaireService struct {
	repo repositories.QuestionnaireRepository
}

// NewQuestionnaireService creates a new questionnaire service
func NewQuestionnaireService(repo repositories.QuestionnaireRepository) *QuestionnaireService {
	return &QuestionnaireService{repo: repo}
}

// ListQuestionnaires lists questionnaires in priority order
func (s *QuestionnaireService) ListQuestionnaires(ctx context.Context, filter repositories.QuestionnaireFilter) ([]*entities.Questionnaire, error) {
	return s.repo.List(ctx, filter)
}

// GetQuestionnaire retrieves a questionnaire by ID
func (s *QuestionnaireService) GetQuestionnaire(ctx context.Context, id int64) (*entities.Questionnaire, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateQuestionnaire stores a new questionnaire
func (s *QuestionnaireService) CreateQuestionnaire(ctx context.Context, q *entities.Questionnaire) error {
	return s.repo.Create(ctx, q)
}

// UpdateQuestionnaire replaces a questionnaire
func (s *QuestionnaireService) UpdateQuestionnaire(ctx context.Context, q *entities.Questionnaire) error {
	return s.repo.Update(ctx, q)
}

// Categories lists the known categories
func (s *QuestionnaireService) Categories() []entities.QuestionnaireCategory {
	return entities.QuestionnaireCategories
}
