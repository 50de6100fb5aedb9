package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

// PatientService defines the patient operations used by the handler
type PatientService interface {
	CreatePatient(ctx context.Context, patient *entities.Patient) error
	GetPatient(ctx context.Context, id int64) (*entities.Patient, error)
	UpdatePatient(ctx context.Context, patient *entities.Patient) error
	ListPatients(ctx context.Context, page repositories.Pagination) ([]*entities.Patient, error)
	SearchPatients(ctx context.Context, term string, page repositories.Pagination) ([]*entities.Patient, error)
}

// PatientHandler handles patient requests
type PatientHandler struct {
	service PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(service PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

type patientRequest struct {
	FirstName             string `json:"first_name" validate:"required,max=50"`
	LastName              string `json:"last_name" validate:"required,max=50"`
	Email                 string `json:"email" validate:"omitempty,email,max=100"`
	Phone                 string `json:"phone" validate:"required,max=20"`
	Address               string `json:"address" validate:"max=500"`
	City                  string `json:"city" validate:"max=50"`
	State                 string `json:"state" validate:"max=50"`
	PostalCode            string `json:"postal_code" validate:"max=10"`
	DateOfBirth           string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender                string `json:"gender" validate:"omitempty,oneof=male female other"`
	EmergencyContactName  string `json:"emergency_contact_name" validate:"max=100"`
	EmergencyContactPhone string `json:"emergency_contact_phone" validate:"max=20"`
	MedicalHistory        string `json:"medical_history"`
	Allergies             string `json:"allergies"`
	CurrentMedications    string `json:"current_medications"`
}

func (req *patientRequest) toEntity() *entities.Patient {
	patient := &entities.Patient{
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		Phone:                 req.Phone,
		Address:               req.Address,
		City:                  req.City,
		State:                 req.State,
		PostalCode:            req.PostalCode,
		Gender:                req.Gender,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		MedicalHistory:        req.MedicalHistory,
		Allergies:             req.Allergies,
		CurrentMedications:    req.CurrentMedications,
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		patient.Email = &email
	}
	if req.DateOfBirth != "" {
		// Already checked by the datetime tag.
		dob, _ := time.Parse(dateLayout, req.DateOfBirth)
		patient.DateOfBirth = &dob
	}
	return patient
}

// ListPatients handles GET /api/patients
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.ListPatients(r.Context(), parsePagination(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patients)
}

// SearchPatients handles GET /api/patients/search?q=
func (h *PatientHandler) SearchPatients(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	patients, err := h.service.SearchPatients(r.Context(), term, parsePagination(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patients)
}

// GetPatient handles GET /api/patients/{id}
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	patient, err := h.service.GetPatient(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patient)
}

// CreatePatient handles POST /api/patients
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	patient := req.toEntity()
	if err := h.service.CreatePatient(r.Context(), patient); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, patient)
}

// UpdatePatient handles PUT /api/patients/{id}
func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req patientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	patient := req.toEntity()
	patient.ID = id
	if err := h.service.UpdatePatient(r.Context(), patient); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patient)
}
