package entities

import (
	"time"
)

// CallbackStatus tracks a callback request through the contact centre
type CallbackStatus string

const (
	CallbackStatusPending   CallbackStatus = "pending"
	CallbackStatusContacted CallbackStatus = "contacted"
	CallbackStatusCompleted CallbackStatus = "completed"
	CallbackStatusCancelled CallbackStatus = "cancelled"
)

// CallbackRequest is a visitor asking to be phoned back
type CallbackRequest struct {
	ID             int64          `json:"id" db:"id"`
	MobileNumber   string         `json:"mobile_number" db:"mobile_number"`
	Status         CallbackStatus `json:"status" db:"status"`
	PreferredTime  string         `json:"preferred_time,omitempty" db:"preferred_time"`
	Notes          string         `json:"notes,omitempty" db:"notes"`
	ContactedAt    *time.Time     `json:"contacted_at,omitempty" db:"contacted_at"`
	ExecutiveNotes string         `json:"executive_notes,omitempty" db:"executive_notes"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}
