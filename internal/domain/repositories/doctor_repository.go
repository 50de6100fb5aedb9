package repositories

import (
	"context"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

// DoctorRepository defines the interface for doctor data operations
type DoctorRepository interface {
	Create(ctx context.Context, doctor *entities.Doctor) error
	GetByID(ctx context.Context, id int64) (*entities.Doctor, error)
	Update(ctx context.Context, doctor *entities.Doctor) error
	List(ctx context.Context, filter DoctorFilter) ([]*entities.Doctor, error)
}

// DoctorFilter defines filters for listing doctors
type DoctorFilter struct {
	SpecialityID  *int64
	AvailableOnly bool
	Pagination
}

// SpecialityRepository defines the interface for speciality data operations
type SpecialityRepository interface {
	Create(ctx context.Context, speciality *entities.Speciality) error
	GetByID(ctx context.Context, id int64) (*entities.Speciality, error)
	List(ctx context.Context, activeOnly bool) ([]*entities.Speciality, error)

	// Delete removes a speciality. It fails with a conflict error while doctors reference it.
	Delete(ctx context.Context, id int64) error
}
