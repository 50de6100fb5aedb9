package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/application/services"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

// HealthPackageService defines the package operations used by the handler
type HealthPackageService interface {
	ListPackages(ctx context.Context) ([]*entities.HealthPackage, error)
	GetPackage(ctx context.Context, id int64) (*entities.HealthPackage, error)
	BookPackage(ctx context.Context, packageID int64, req *services.PackageBookingRequest) (*entities.HealthPackageBooking, error)
	GetBooking(ctx context.Context, id int64) (*entities.HealthPackageBooking, error)
	ListBookings(ctx context.Context, filter repositories.PackageBookingFilter) ([]*entities.HealthPackageBooking, error)
	UpdateBooking(ctx context.Context, id int64, update *services.PackageBookingUpdate) (*entities.HealthPackageBooking, error)
}

// HealthPackageHandler handles health package and booking requests
type HealthPackageHandler struct {
	service HealthPackageService
}

// NewHealthPackageHandler creates a new health package handler
func NewHealthPackageHandler(service HealthPackageService) *HealthPackageHandler {
	return &HealthPackageHandler{service: service}
}

type packageBookingRequest struct {
	PatientName   string `json:"patient_name" validate:"required,max=100"`
	PatientEmail  string `json:"patient_email" validate:"required,email,max=100"`
	PatientPhone  string `json:"patient_phone" validate:"required,max=20"`
	PatientAge    *int   `json:"patient_age" validate:"omitempty,gte=0,lte=150"`
	PatientGender string `json:"patient_gender" validate:"omitempty,oneof=male female other"`
	PreferredDate string `json:"preferred_date" validate:"required"`
	PreferredTime string `json:"preferred_time"`
	Notes         string `json:"notes" validate:"max=2000"`
}

type packageBookingUpdateRequest struct {
	Status        *entities.PackageBookingStatus `json:"status" validate:"omitempty,oneof=confirmed completed cancelled"`
	PaymentStatus *entities.PaymentStatus        `json:"payment_status" validate:"omitempty,oneof=pending paid refunded"`
	Notes         *string                        `json:"notes" validate:"omitempty,max=2000"`
}

// ListPackages handles GET /api/health-packages
func (h *HealthPackageHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.service.ListPackages(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, packages)
}

// GetPackage handles GET /api/health-packages/{id}
func (h *HealthPackageHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	pkg, err := h.service.GetPackage(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pkg)
}

// BookPackage handles POST /api/health-packages/{id}/bookings
func (h *HealthPackageHandler) BookPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req packageBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.BookPackage(r.Context(), id, &services.PackageBookingRequest{
		PatientName:   req.PatientName,
		PatientEmail:  req.PatientEmail,
		PatientPhone:  req.PatientPhone,
		PatientAge:    req.PatientAge,
		PatientGender: req.PatientGender,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		Notes:         req.Notes,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, booking)
}

// ListBookings handles GET /api/health-package-bookings
func (h *HealthPackageHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	status := entities.PackageBookingStatus(r.URL.Query().Get("status"))
	switch status {
	case "", entities.PackageBookingStatusConfirmed, entities.PackageBookingStatusCompleted, entities.PackageBookingStatusCancelled:
	default:
		respondWithError(w, http.StatusBadRequest, "invalid status")
		return
	}

	bookings, err := h.service.ListBookings(r.Context(), repositories.PackageBookingFilter{
		Status:     status,
		Pagination: parsePagination(r),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, bookings)
}

// GetBooking handles GET /api/health-package-bookings/{id}
func (h *HealthPackageHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

// UpdateBooking handles PATCH /api/health-package-bookings/{id}
func (h *HealthPackageHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req packageBookingUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.UpdateBooking(r.Context(), id, &services.PackageBookingUpdate{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		Notes:         req.Notes,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}
