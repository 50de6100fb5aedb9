package entities

import (
	"time"
)

// AppointmentDateLayout is the wire format for appointment instants.
const AppointmentDateLayout = "2006-01-02 15:04"

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// OccupyingStatuses are the statuses that hold a doctor's slot.
var OccupyingStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// OccupiesSlot reports whether an appointment in this status blocks its slot.
func (s AppointmentStatus) OccupiesSlot() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

// Appointment represents a patient's booking with a doctor
type Appointment struct {
	ID                 int64             `json:"id" db:"id"`
	PatientID          int64             `json:"patient_id" db:"patient_id"`
	DoctorID           int64             `json:"doctor_id" db:"doctor_id"`
	AppointmentDate    time.Time         `json:"appointment_date" db:"appointment_date"`
	Status             AppointmentStatus `json:"status" db:"status"`
	Notes              string            `json:"notes,omitempty" db:"notes"`
	ConfirmationNumber string            `json:"confirmation_number" db:"confirmation_number"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" db:"updated_at"`
}

// AppointmentConfirmation is returned to the caller after a successful booking
type AppointmentConfirmation struct {
	AppointmentID      int64             `json:"appointment_id"`
	ConfirmationNumber string            `json:"confirmation_number"`
	DoctorName         string            `json:"doctor_name"`
	Speciality         string            `json:"speciality"`
	AppointmentDate    string            `json:"appointment_date"`
	Status             AppointmentStatus `json:"status"`
}

// AppointmentBookingRequest is the payload of a booking call
type AppointmentBookingRequest struct {
	PatientID       int64  `json:"patient_id" validate:"required,gt=0"`
	DoctorID        int64  `json:"doctor_id" validate:"required,gt=0"`
	AppointmentDate string `json:"appointment_date" validate:"required"`
	Notes           string `json:"notes,omitempty" validate:"max=2000"`
}
