package repositories

import (
	"context"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

// TimeSlotRepository defines the interface for recurring time slot definitions
type TimeSlotRepository interface {
	Create(ctx context.Context, slot *entities.TimeSlotDefinition) error
	GetByID(ctx context.Context, id int64) (*entities.TimeSlotDefinition, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*entities.TimeSlotDefinition, error)

	// ListActiveByDoctorAndDay returns the doctor's available definitions for a
	// weekday (0=Monday), ordered by start time then id.
	ListActiveByDoctorAndDay(ctx context.Context, doctorID int64, dayOfWeek int) ([]*entities.TimeSlotDefinition, error)

	Delete(ctx context.Context, id int64) error
}
