package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	// Create inserts an appointment. When the appointment occupies its slot and
	// another occupying appointment already holds the same doctor and instant,
	// it fails with a conflict error and nothing is written.
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id int64) (*entities.Appointment, error)

	// UpdateStatus transitions an appointment. Moving back into an occupying
	// status fails with a conflict error if the slot was taken meanwhile.
	UpdateStatus(ctx context.Context, id int64, status entities.AppointmentStatus) error

	// ListByPatient retrieves appointments for a patient
	ListByPatient(ctx context.Context, patientID int64, filter AppointmentFilter) ([]*entities.Appointment, error)

	// ListOccupying returns appointments in an occupying status for the doctor
	// with from <= appointment_date < to.
	ListOccupying(ctx context.Context, doctorID int64, from, to time.Time) ([]*entities.Appointment, error)
}

// AppointmentFilter defines filters for listing appointments
type AppointmentFilter struct {
	Status entities.AppointmentStatus
	From   *time.Time
	To     *time.Time
	Pagination
}
