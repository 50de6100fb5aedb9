package services

import (
	"context"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

// DoctorService manages doctors, specialities and weekly time slots
type DoctorService struct {
	doctorRepo     repositories.DoctorRepository
	specialityRepo repositories.SpecialityRepository
	timeSlotRepo   repositories.TimeSlotRepository
	eventBus       providers.EventBus
}

// NewDoctorService creates a new doctor service
func NewDoctorService(
	doctorRepo repositories.DoctorRepository,
	specialityRepo repositories.SpecialityRepository,
	timeSlotRepo repositories.TimeSlotRepository,
	eventBus providers.EventBus,
) *DoctorService {
	return &DoctorService{
		doctorRepo:     doctorRepo,
		specialityRepo: specialityRepo,
		timeSlotRepo:   timeSlotRepo,
		eventBus:       eventBus,
	}
}

// ListDoctors lists doctors matching the filter
func (s *DoctorService) ListDoctors(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	return s.doctorRepo.List(ctx, filter)
}

// GetDoctor retrieves a doctor by ID
func (s *DoctorService) GetDoctor(ctx context.Context, id int64) (*entities.Doctor, error) {
	return s.doctorRepo.GetByID(ctx, id)
}

// CreateDoctor stores a new doctor. A referenced speciality must exist.
func (s *DoctorService) CreateDoctor(ctx context.Context, doctor *entities.Doctor) error {
	if err := s.checkSpeciality(ctx, doctor.SpecialityID); err != nil {
		return err
	}
	if err := s.doctorRepo.Create(ctx, doctor); err != nil {
		return err
	}
	s.announce(ctx, doctor.ID, map[string]interface{}{"created": true})
	return nil
}

// UpdateDoctor replaces a doctor's profile and announces the change so
// cached copies are dropped.
func (s *DoctorService) UpdateDoctor(ctx context.Context, doctor *entities.Doctor) error {
	if err := s.checkSpeciality(ctx, doctor.SpecialityID); err != nil {
		return err
	}
	if err := s.doctorRepo.Update(ctx, doctor); err != nil {
		return err
	}
	s.announce(ctx, doctor.ID, map[string]interface{}{
		"name":           doctor.Name,
		"specialization": doctor.Specialization,
		"is_available":   doctor.IsAvailable,
	})
	return nil
}

func (s *DoctorService) checkSpeciality(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.specialityRepo.GetByID(ctx, *id); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return apperrors.NewValidationError("speciality_id does not reference an existing speciality")
		}
		return err
	}
	return nil
}

func (s *DoctorService) announce(ctx context.Context, doctorID int64, changed map[string]interface{}) {
	publishDoctorEvent(ctx, s.eventBus, entities.NewDoctorEvent(doctorID, entities.DoctorEventTypeProfileUpdated, changed))
}

// ListSpecialities lists specialities, optionally only active ones
func (s *DoctorService) ListSpecialities(ctx context.Context, activeOnly bool) ([]*entities.Speciality, error) {
	return s.specialityRepo.List(ctx, activeOnly)
}

// GetSpeciality retrieves a speciality by ID
func (s *DoctorService) GetSpeciality(ctx context.Context, id int64) (*entities.Speciality, error) {
	return s.specialityRepo.GetByID(ctx, id)
}

// CreateSpeciality stores a new speciality
func (s *DoctorService) CreateSpeciality(ctx context.Context, speciality *entities.Speciality) error {
	return s.specialityRepo.Create(ctx, speciality)
}

// DeleteSpeciality removes a speciality that no doctor references
func (s *DoctorService) DeleteSpeciality(ctx context.Context, id int64) error {
	return s.specialityRepo.Delete(ctx, id)
}

// ListSpecialityDoctors lists the doctors of one speciality
func (s *DoctorService) ListSpecialityDoctors(ctx context.Context, specialityID int64, page repositories.Pagination) ([]*entities.Doctor, error) {
	if _, err := s.specialityRepo.GetByID(ctx, specialityID); err != nil {
		return nil, err
	}
	return s.doctorRepo.List(ctx, repositories.DoctorFilter{
		SpecialityID: &specialityID,
		Pagination:   page,
	})
}

// ListTimeSlots lists every weekly definition of a doctor
func (s *DoctorService) ListTimeSlots(ctx context.Context, doctorID int64) ([]*entities.TimeSlotDefinition, error) {
	if _, err := s.doctorRepo.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.timeSlotRepo.ListByDoctor(ctx, doctorID)
}

// CreateTimeSlot validates and stores a weekly definition
func (s *DoctorService) CreateTimeSlot(ctx context.Context, slot *entities.TimeSlotDefinition) error {
	if slot.SlotDurationMinutes == 0 {
		slot.SlotDurationMinutes = entities.DefaultSlotDurationMinutes
	}
	if err := slot.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if _, err := s.doctorRepo.GetByID(ctx, slot.DoctorID); err != nil {
		return err
	}
	if err := s.timeSlotRepo.Create(ctx, slot); err != nil {
		return err
	}
	publishDoctorEvent(ctx, s.eventBus, entities.NewDoctorEvent(slot.DoctorID, entities.DoctorEventTypeScheduleUpdated, nil))
	return nil
}

// DeleteTimeSlot removes a weekly definition
func (s *DoctorService) DeleteTimeSlot(ctx context.Context, id int64) error {
	slot, err := s.timeSlotRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.timeSlotRepo.Delete(ctx, id); err != nil {
		return err
	}
	publishDoctorEvent(ctx, s.eventBus, entities.NewDoctorEvent(slot.DoctorID, entities.DoctorEventTypeScheduleUpdated, nil))
	return nil
}
