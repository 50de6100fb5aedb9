package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

// SpecialityService defines the speciality operations used by the handler
type SpecialityService interface {
	ListSpecialities(ctx context.Context, activeOnly bool) ([]*entities.Speciality, error)
	GetSpeciality(ctx context.Context, id int64) (*entities.Speciality, error)
	CreateSpeciality(ctx context.Context, speciality *entities.Speciality) error
	DeleteSpeciality(ctx context.Context, id int64) error
	ListSpecialityDoctors(ctx context.Context, specialityID int64, page repositories.Pagination) ([]*entities.Doctor, error)
}

// SpecialityHandler handles speciality requests
type SpecialityHandler struct {
	service SpecialityService
}

// NewSpecialityHandler creates a new speciality handler
func NewSpecialityHandler(service SpecialityService) *SpecialityHandler {
	return &SpecialityHandler{service: service}
}

type specialityRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Icon        string `json:"icon" validate:"max=50"`
	IsActive    *bool  `json:"is_active"`
}

// ListSpecialities handles GET /api/specialities
func (h *SpecialityHandler) ListSpecialities(w http.ResponseWriter, r *http.Request) {
	specialities, err := h.service.ListSpecialities(r.Context(), true)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, specialities)
}

// GetSpeciality handles GET /api/specialities/{id}
func (h *SpecialityHandler) GetSpeciality(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	speciality, err := h.service.GetSpeciality(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, speciality)
}

// CreateSpeciality handles POST /api/specialities
func (h *SpecialityHandler) CreateSpeciality(w http.ResponseWriter, r *http.Request) {
	var req specialityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	speciality := &entities.Speciality{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := h.service.CreateSpeciality(r.Context(), speciality); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, speciality)
}

// DeleteSpeciality handles DELETE /api/specialities/{id}
func (h *SpecialityHandler) DeleteSpeciality(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSpeciality(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSpecialityDoctors handles GET /api/specialities/{id}/doctors
func (h *SpecialityHandler) ListSpecialityDoctors(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doctors, err := h.service.ListSpecialityDoctors(r.Context(), id, parsePagination(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doctors)
}
