package repositories

import (
	"context"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

// QuestionnaireRepository defines the interface for questionnaire data operations
type QuestionnaireRepository interface {
	Create(ctx context.Context, questionnaire *entities.Questionnaire) error
	GetByID(ctx context.Context, id int64) (*entities.Questionnaire, error)
	Update(ctx context.Context, questionnaire *entities.Questionnaire) error
	List(ctx context.Context, filter QuestionnaireFilter) ([]*entities.Questionnaire, error)

	// ListActive returns active questionnaires ordered by priority, then id.
	ListActive(ctx context.Context) ([]*entities.Questionnaire, error)
}

// QuestionnaireFilter defines filters for listing questionnaires
type QuestionnaireFilter struct {
	Category entities.QuestionnaireCategory
	Active   *bool
}
