package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

// DoctorService defines the doctor and schedule operations used by the handler
type DoctorService interface {
	ListDoctors(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error)
	GetDoctor(ctx context.Context, id int64) (*entities.Doctor, error)
	CreateDoctor(ctx context.Context, doctor *entities.Doctor) error
	UpdateDoctor(ctx context.Context, doctor *entities.Doctor) error
	ListTimeSlots(ctx context.Context, doctorID int64) ([]*entities.TimeSlotDefinition, error)
	CreateTimeSlot(ctx context.Context, slot *entities.TimeSlotDefinition) error
	DeleteTimeSlot(ctx context.Context, id int64) error
}

// AvailabilityService computes bookable slots
type AvailabilityService interface {
	GetAvailableSlots(ctx context.Context, doctorID int64, date string) (*entities.DoctorAvailability, error)
}

// DoctorHandler handles doctor, time slot and availability requests
type DoctorHandler struct {
	doctors      DoctorService
	availability AvailabilityService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(doctors DoctorService, availability AvailabilityService) *DoctorHandler {
	return &DoctorHandler{
		doctors:      doctors,
		availability: availability,
	}
}

type doctorRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Specialization  string `json:"specialization" validate:"required,max=100"`
	SpecialityID    *int64 `json:"speciality_id" validate:"omitempty,gt=0"`
	Qualification   string `json:"qualification" validate:"max=200"`
	ExperienceYears int    `json:"experience_years" validate:"gte=0,lte=80"`
	Phone           string `json:"phone" validate:"max=20"`
	Email           string `json:"email" validate:"omitempty,email"`
	ImageURL        string `json:"image_url" validate:"omitempty,url"`
	IsAvailable     *bool  `json:"is_available"`
}

func (req *doctorRequest) toEntity() *entities.Doctor {
	doctor := &entities.Doctor{
		Name:            req.Name,
		Specialization:  req.Specialization,
		SpecialityID:    req.SpecialityID,
		Qualification:   req.Qualification,
		ExperienceYears: req.ExperienceYears,
		Phone:           req.Phone,
		Email:           req.Email,
		ImageURL:        req.ImageURL,
		IsAvailable:     true,
	}
	if req.IsAvailable != nil {
		doctor.IsAvailable = *req.IsAvailable
	}
	return doctor
}

type timeSlotRequest struct {
	DayOfWeek           *int   `json:"day_of_week" validate:"required,gte=0,lte=6"`
	StartTime           string `json:"start_time" validate:"required,clock"`
	EndTime             string `json:"end_time" validate:"required,clock"`
	SlotDurationMinutes int    `json:"slot_duration_minutes" validate:"gte=0,lte=480"`
	IsAvailable         *bool  `json:"is_available"`
}

// ListDoctors handles GET /api/doctors
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	filter := repositories.DoctorFilter{Pagination: parsePagination(r)}

	if raw := r.URL.Query().Get("speciality_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid speciality_id")
			return
		}
		filter.SpecialityID = &id
	}
	available, err := queryBool(r, "available")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	filter.AvailableOnly = available != nil && *available

	doctors, err := h.doctors.ListDoctors(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doctors)
}

// GetDoctor handles GET /api/doctors/{id}
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doctor, err := h.doctors.GetDoctor(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doctor)
}

// CreateDoctor handles POST /api/doctors
func (h *DoctorHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req doctorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doctor := req.toEntity()
	if err := h.doctors.CreateDoctor(r.Context(), doctor); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, doctor)
}

// UpdateDoctor handles PUT /api/doctors/{id}
func (h *DoctorHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req doctorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doctor := req.toEntity()
	doctor.ID = id
	if err := h.doctors.UpdateDoctor(r.Context(), doctor); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doctor)
}

// ListTimeSlots handles GET /api/doctors/{id}/time-slots
func (h *DoctorHandler) ListTimeSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	slots, err := h.doctors.ListTimeSlots(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, slots)
}

// CreateTimeSlot handles POST /api/doctors/{id}/time-slots
func (h *DoctorHandler) CreateTimeSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req timeSlotRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// Both parse: the clock tag already checked the format.
	start, _ := entities.ParseClockTime(req.StartTime)
	end, _ := entities.ParseClockTime(req.EndTime)

	slot := &entities.TimeSlotDefinition{
		DoctorID:            id,
		DayOfWeek:           *req.DayOfWeek,
		StartTime:           start,
		EndTime:             end,
		SlotDurationMinutes: req.SlotDurationMinutes,
		IsAvailable:         req.IsAvailable == nil || *req.IsAvailable,
	}
	if err := h.doctors.CreateTimeSlot(r.Context(), slot); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, slot)
}

// DeleteTimeSlot handles DELETE /api/time-slots/{id}
func (h *DoctorHandler) DeleteTimeSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.doctors.DeleteTimeSlot(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAvailableSlots handles GET /api/doctors/{id}/available-slots/{date}
func (h *DoctorHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	availability, err := h.availability.GetAvailableSlots(r.Context(), id, r.PathValue("date"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, availability)
}
