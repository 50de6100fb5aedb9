package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

const (
	occupiedSlotIndex          = "appointments_occupied_slot_idx"
	appointmentConfirmationKey = "appointments_confirmation_number_key"
)

var appointmentColumns = []interface{}{
	"id", "patient_id", "doctor_id", "appointment_date", "status",
	"notes", "confirmation_number", "created_at", "updated_at",
}

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	a := &entities.Appointment{}
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.Status,
		&a.Notes, &a.ConfirmationNumber, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func mapAppointmentWriteError(err error) error {
	switch {
	case isUniqueViolation(err, occupiedSlotIndex):
		return apperrors.NewConflictError("the requested time slot is already booked")
	case isUniqueViolation(err, appointmentConfirmationKey):
		return repositories.ErrDuplicateConfirmationNumber
	}
	return mapWriteError(err, "appointment")
}

// Create inserts the appointment in one statement. The partial unique index on
// occupied slots makes concurrent bookings of the same instant fail with a conflict.
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	query, args, err := a.db.Insert("appointments").Rows(goqu.Record{
		"patient_id":          appointment.PatientID,
		"doctor_id":           appointment.DoctorID,
		"appointment_date":    appointment.AppointmentDate,
		"status":              appointment.Status,
		"notes":               appointment.Notes,
		"confirmation_number": appointment.ConfirmationNumber,
		"created_at":          appointment.CreatedAt,
		"updated_at":          appointment.UpdatedAt,
	}).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&appointment.ID); err != nil {
		return mapAppointmentWriteError(err)
	}
	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id int64) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointment, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}
	return appointment, nil
}

// UpdateStatus transitions an appointment
func (a *AppointmentAdapter) UpdateStatus(ctx context.Context, id int64, status entities.AppointmentStatus) error {
	query, args, err := a.db.Update("appointments").
		Set(goqu.Record{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapAppointmentWriteError(err)
	}
	return expectAffected(result, "appointment", id)
}

// ListByPatient retrieves a patient's appointments, most recent first
func (a *AppointmentAdapter) ListByPatient(ctx context.Context, patientID int64, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	page := filter.Pagination.Normalize()

	ds := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"patient_id": patientID})
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.From != nil {
		ds = ds.Where(goqu.C("appointment_date").Gte(*filter.From))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.C("appointment_date").Lt(*filter.To))
	}

	query, args, err := ds.Order(goqu.I("appointment_date").Desc(), goqu.I("id").Desc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.query(ctx, query, args)
}

// ListOccupying returns the doctor's scheduled and confirmed appointments in [from, to)
func (a *AppointmentAdapter) ListOccupying(ctx context.Context, doctorID int64, from, to time.Time) ([]*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(
			goqu.Ex{
				"doctor_id": doctorID,
				"status":    entities.OccupyingStatuses,
			},
			goqu.C("appointment_date").Gte(from),
			goqu.C("appointment_date").Lt(to),
		).
		Order(goqu.I("appointment_date").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.query(ctx, query, args)
}

func (a *AppointmentAdapter) query(ctx context.Context, query string, args []interface{}) ([]*entities.Appointment, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	appointments := make([]*entities.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate appointments", err)
	}
	return appointments, nil
}
