package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

const timeSlotsTable = "doctor_time_slots"

var timeSlotColumns = []interface{}{
	"id", "doctor_id", "day_of_week", "start_time", "end_time",
	"slot_duration_minutes", "is_available", "created_at",
}

// TimeSlotAdapter implements the TimeSlotRepository interface
type TimeSlotAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTimeSlotAdapter creates a new time slot adapter
func NewTimeSlotAdapter(client *postgres.Client) repositories.TimeSlotRepository {
	return &TimeSlotAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanTimeSlot(row rowScanner) (*entities.TimeSlotDefinition, error) {
	s := &entities.TimeSlotDefinition{}
	err := row.Scan(
		&s.ID, &s.DoctorID, &s.DayOfWeek, &s.StartTime, &s.EndTime,
		&s.SlotDurationMinutes, &s.IsAvailable, &s.CreatedAt,
	)
	return s, err
}

func (a *TimeSlotAdapter) Create(ctx context.Context, slot *entities.TimeSlotDefinition) error {
	slot.CreatedAt = time.Now().UTC()

	query, args, err := a.db.Insert(timeSlotsTable).Rows(goqu.Record{
		"doctor_id":             slot.DoctorID,
		"day_of_week":           slot.DayOfWeek,
		"start_time":            slot.StartTime.String(),
		"end_time":              slot.EndTime.String(),
		"slot_duration_minutes": slot.SlotDurationMinutes,
		"is_available":          slot.IsAvailable,
		"created_at":            slot.CreatedAt,
	}).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&slot.ID); err != nil {
		return mapWriteError(err, "time slot")
	}
	return nil
}

func (a *TimeSlotAdapter) GetByID(ctx context.Context, id int64) (*entities.TimeSlotDefinition, error) {
	query, args, err := a.db.Select(timeSlotColumns...).
		From(timeSlotsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	slot, err := scanTimeSlot(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("time slot with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get time slot", err)
	}
	return slot, nil
}

func (a *TimeSlotAdapter) ListByDoctor(ctx context.Context, doctorID int64) ([]*entities.TimeSlotDefinition, error) {
	return a.list(ctx, goqu.Ex{"doctor_id": doctorID}, goqu.I("day_of_week").Asc())
}

func (a *TimeSlotAdapter) ListActiveByDoctorAndDay(ctx context.Context, doctorID int64, dayOfWeek int) ([]*entities.TimeSlotDefinition, error) {
	return a.list(ctx, goqu.Ex{
		"doctor_id":    doctorID,
		"day_of_week":  dayOfWeek,
		"is_available": true,
	})
}

func (a *TimeSlotAdapter) list(ctx context.Context, where goqu.Ex, leading ...exp.OrderedExpression) ([]*entities.TimeSlotDefinition, error) {
	order := append(leading, goqu.I("start_time").Asc(), goqu.I("id").Asc())

	query, args, err := a.db.Select(timeSlotColumns...).
		From(timeSlotsTable).
		Where(where).
		Order(order...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list time slots", err)
	}
	defer rows.Close()

	slots := make([]*entities.TimeSlotDefinition, 0)
	for rows.Next() {
		slot, err := scanTimeSlot(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan time slot", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate time slots", err)
	}
	return slots, nil
}

func (a *TimeSlotAdapter) Delete(ctx context.Context, id int64) error {
	query, args, err := a.db.Delete(timeSlotsTable).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete time slot", err)
	}
	return expectAffected(result, "time slot", id)
}
