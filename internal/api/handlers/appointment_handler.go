package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

const dateLayout = "2006-01-02"

// AppointmentService defines the interface for appointment operations
type AppointmentService interface {
	BookAppointment(ctx context.Context, req *entities.AppointmentBookingRequest) (*entities.AppointmentConfirmation, error)
	GetAppointment(ctx context.Context, id int64) (*entities.Appointment, error)
	ListPatientAppointments(ctx context.Context, patientID int64, filter repositories.AppointmentFilter) ([]*entities.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status entities.AppointmentStatus) (*entities.Appointment, error)
}

// AppointmentHandler handles appointment requests
type AppointmentHandler struct {
	service AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(service AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
	}
}

type appointmentStatusRequest struct {
	Status entities.AppointmentStatus `json:"status" validate:"required,oneof=scheduled confirmed completed cancelled"`
}

// BookAppointment handles POST /api/appointments/book
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req entities.AppointmentBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	confirmation, err := h.service.BookAppointment(r.Context(), &req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, confirmation)
}

// GetAppointment handles GET /api/appointments/{id}
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	appointment, err := h.service.GetAppointment(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, appointment)
}

// ListPatientAppointments handles GET /api/patients/{id}/appointments
func (h *AppointmentHandler) ListPatientAppointments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := repositories.AppointmentFilter{
		Status:     entities.AppointmentStatus(query.Get("status")),
		Pagination: parsePagination(r),
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid "+name+" date format (use YYYY-MM-DD)")
			return
		}
		*dst = &day
	}
	if filter.To != nil {
		// Inclusive of the whole final day.
		end := filter.To.AddDate(0, 0, 1)
		filter.To = &end
	}

	appointments, err := h.service.ListPatientAppointments(r.Context(), id, filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, appointments)
}

// UpdateStatus handles PATCH /api/appointments/{id}/status
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req appointmentStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	appointment, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, appointment)
}
