package repositories

import (
	"context"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

// PatientRepository defines the interface for patient data operations
type PatientRepository interface {
	Create(ctx context.Context, patient *entities.Patient) error
	GetByID(ctx context.Context, id int64) (*entities.Patient, error)
	Update(ctx context.Context, patient *entities.Patient) error
	List(ctx context.Context, page Pagination) ([]*entities.Patient, error)

	// Search matches the term case-insensitively against name, email and phone.
	Search(ctx context.Context, term string, page Pagination) ([]*entities.Patient, error)
}
