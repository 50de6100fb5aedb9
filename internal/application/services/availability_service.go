package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

const occupancyKeyLayout = "15:04:05"

// AvailabilityService computes bookable slots for a doctor on a date.
// Results are recomputed on every call and never cached.
type AvailabilityService struct {
	doctorRepo      repositories.DoctorRepository
	timeSlotRepo    repositories.TimeSlotRepository
	appointmentRepo repositories.AppointmentRepository
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	doctorRepo repositories.DoctorRepository,
	timeSlotRepo repositories.TimeSlotRepository,
	appointmentRepo repositories.AppointmentRepository,
) *AvailabilityService {
	return &AvailabilityService{
		doctorRepo:      doctorRepo,
		timeSlotRepo:    timeSlotRepo,
		appointmentRepo: appointmentRepo,
	}
}

// GetAvailableSlots walks the doctor's definitions for the weekday of date
// and flags each generated time against occupying appointments.
func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, doctorID int64, date string) (*entities.DoctorAvailability, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date format, expected YYYY-MM-DD")
	}

	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	weekday := entities.WeekdayIndex(day)
	defs, err := s.timeSlotRepo.ListActiveByDoctorAndDay(ctx, doctorID, weekday)
	if err != nil {
		return nil, err
	}

	availability := &entities.DoctorAvailability{
		DoctorID:       doctor.ID,
		DoctorName:     doctor.Name,
		Date:           day.Format(DateLayout),
		DayOfWeek:      weekday,
		AvailableSlots: []entities.AvailableSlot{},
	}
	if len(defs) == 0 {
		return availability, nil
	}

	appointments, err := s.appointmentRepo.ListOccupying(ctx, doctorID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	occupied := make(map[string]bool, len(appointments))
	for _, a := range appointments {
		occupied[a.AppointmentDate.Format(occupancyKeyLayout)] = true
	}

	availability.AvailableSlots = ComputeSlots(defs, day, occupied)
	return availability, nil
}

// ComputeSlots generates one slot per duration step from each definition's
// start while the step start is before its end. occupied holds the
// occupying appointment times of the day, keyed "15:04:05".
func ComputeSlots(defs []*entities.TimeSlotDefinition, day time.Time, occupied map[string]bool) []entities.AvailableSlot {
	slots := make([]entities.AvailableSlot, 0)
	for _, def := range defs {
		step := def.SlotDuration()
		if step <= 0 || def.StartTime >= def.EndTime {
			log.Warn().
				Int64("slot_id", def.ID).
				Int64("doctor_id", def.DoctorID).
				Str("start", def.StartTime.String()).
				Str("end", def.EndTime.String()).
				Int("duration_minutes", def.SlotDurationMinutes).
				Msg("skipping time slot definition that cannot be walked")
			continue
		}

		for current := def.StartTime.Duration(); current < def.EndTime.Duration(); current += step {
			at := entities.ClockTime(current).On(day)
			slots = append(slots, entities.AvailableSlot{
				Time:        entities.ClockTime(current).String(),
				IsAvailable: !occupied[at.Format(occupancyKeyLayout)],
				SlotID:      def.ID,
			})
		}
	}
	return slots
}
