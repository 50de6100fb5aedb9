package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

const eventPublishTimeout = 2 * time.Second

// AppointmentService handles appointment booking logic
type AppointmentService struct {
	repo           repositories.AppointmentRepository
	doctorRepo     repositories.DoctorRepository
	specialityRepo repositories.SpecialityRepository
	patientRepo    repositories.PatientRepository
	eventBus       providers.EventBus
	metrics        *observability.ChatMetrics
	newCode        func() (string, error)
}

// NewAppointmentService creates a new appointment service. eventBus may be
// nil, in which case slot events are not published.
func NewAppointmentService(
	repo repositories.AppointmentRepository,
	doctorRepo repositories.DoctorRepository,
	specialityRepo repositories.SpecialityRepository,
	patientRepo repositories.PatientRepository,
	eventBus providers.EventBus,
	metrics *observability.ChatMetrics,
) *AppointmentService {
	return &AppointmentService{
		repo:           repo,
		doctorRepo:     doctorRepo,
		specialityRepo: specialityRepo,
		patientRepo:    patientRepo,
		eventBus:       eventBus,
		metrics:        metrics,
		newCode:        NewConfirmationNumber,
	}
}

// BookAppointment books the requested slot. The slot is claimed by a single
// insert; a concurrent booking of the same doctor and instant fails with a
// conflict error.
func (s *AppointmentService) BookAppointment(ctx context.Context, req *entities.AppointmentBookingRequest) (*entities.AppointmentConfirmation, error) {
	at, err := time.Parse(entities.AppointmentDateLayout, req.AppointmentDate)
	if err != nil {
		return nil, apperrors.NewValidationError("appointment_date must be in the format YYYY-MM-DD HH:MM")
	}

	doctor, err := s.doctorRepo.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.patientRepo.GetByID(ctx, req.PatientID); err != nil {
		return nil, err
	}

	appointment := &entities.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: at,
		Status:          entities.AppointmentStatusScheduled,
		Notes:           req.Notes,
	}

	err = insertWithConfirmation(s.newCode, func(code string) error {
		appointment.ConfirmationNumber = code
		return s.repo.Create(ctx, appointment)
	})
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			s.metrics.ObserveBooking("conflict")
		} else {
			s.metrics.ObserveBooking("error")
		}
		return nil, err
	}
	s.metrics.ObserveBooking("booked")

	log.Info().
		Int64("appointment_id", appointment.ID).
		Int64("doctor_id", doctor.ID).
		Str("at", at.Format(entities.AppointmentDateLayout)).
		Msg("appointment booked")

	s.publishSlotEvent(ctx, doctor.ID, entities.DoctorEventTypeSlotBooked, at)

	return &entities.AppointmentConfirmation{
		AppointmentID:      appointment.ID,
		ConfirmationNumber: appointment.ConfirmationNumber,
		DoctorName:         doctor.Name,
		Speciality:         s.specialityName(ctx, doctor),
		AppointmentDate:    at.Format(entities.AppointmentDateLayout),
		Status:             appointment.Status,
	}, nil
}

// GetAppointment retrieves an appointment by ID
func (s *AppointmentService) GetAppointment(ctx context.Context, id int64) (*entities.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPatientAppointments lists a patient's appointments, newest first
func (s *AppointmentService) ListPatientAppointments(ctx context.Context, patientID int64, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown appointment status %q", filter.Status))
	}
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID, filter)
}

// UpdateStatus transitions an appointment and announces the slot change
// when the appointment starts or stops occupying its slot.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id int64, status entities.AppointmentStatus) (*entities.Appointment, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown appointment status %q", status))
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == status {
		return appointment, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	wasOccupying := appointment.Status.OccupiesSlot()
	appointment.Status = status
	appointment.UpdatedAt = time.Now().UTC()

	switch {
	case wasOccupying && !status.OccupiesSlot():
		s.publishSlotEvent(ctx, appointment.DoctorID, entities.DoctorEventTypeSlotReleased, appointment.AppointmentDate)
	case !wasOccupying && status.OccupiesSlot():
		s.publishSlotEvent(ctx, appointment.DoctorID, entities.DoctorEventTypeSlotBooked, appointment.AppointmentDate)
	}
	return appointment, nil
}

func (s *AppointmentService) specialityName(ctx context.Context, doctor *entities.Doctor) string {
	if doctor.SpecialityID == nil || s.specialityRepo == nil {
		return doctor.Specialization
	}
	speciality, err := s.specialityRepo.GetByID(ctx, *doctor.SpecialityID)
	if err != nil {
		log.Warn().Err(err).Int64("speciality_id", *doctor.SpecialityID).Msg("failed to load speciality")
		return doctor.Specialization
	}
	return speciality.Name
}

func (s *AppointmentService) publishSlotEvent(ctx context.Context, doctorID int64, eventType entities.DoctorEventType, at time.Time) {
	publishDoctorEvent(ctx, s.eventBus, entities.NewSlotEvent(doctorID, eventType, at))
}

// publishDoctorEvent sends the event to the doctor's channel and the global
// doctor channel. Failures are logged, never returned.
func publishDoctorEvent(ctx context.Context, bus providers.EventBus, event *entities.DoctorEvent) {
	if bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	for _, channel := range []string{providers.GetDoctorChannel(event.DoctorID), providers.EventChannelDoctorUpdates} {
		if err := bus.Publish(ctx, channel, event); err != nil {
			log.Warn().Err(err).
				Str("channel", channel).
				Str("event_type", string(event.EventType)).
				Msg("failed to publish doctor event")
		}
	}
}
