package entities

import (
	"time"

	"github.com/google/uuid"
)

// DoctorEventType represents the type of doctor event
type DoctorEventType string

const (
	DoctorEventTypeSlotBooked      DoctorEventType = "slot_booked"
	DoctorEventTypeSlotReleased    DoctorEventType = "slot_released"
	DoctorEventTypeScheduleUpdated DoctorEventType = "schedule_updated"
	DoctorEventTypeProfileUpdated  DoctorEventType = "doctor_updated"
)

// DoctorEvent is a real-time change notification for one doctor
type DoctorEvent struct {
	ID            string                 `json:"id"`
	DoctorID      int64                  `json:"doctor_id"`
	EventType     DoctorEventType        `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	Date          string                 `json:"date,omitempty"`
	Time          string                 `json:"time,omitempty"`
	ChangedFields map[string]interface{} `json:"changed_fields,omitempty"`
}

// NewDoctorEvent creates a new doctor event
func NewDoctorEvent(doctorID int64, eventType DoctorEventType, changedFields map[string]interface{}) *DoctorEvent {
	return &DoctorEvent{
		ID:            uuid.NewString(),
		DoctorID:      doctorID,
		EventType:     eventType,
		Timestamp:     time.Now(),
		ChangedFields: changedFields,
	}
}

// NewSlotEvent creates a slot_booked or slot_released event for an appointment instant.
func NewSlotEvent(doctorID int64, eventType DoctorEventType, at time.Time) *DoctorEvent {
	event := NewDoctorEvent(doctorID, eventType, nil)
	event.Date = at.Format("2006-01-02")
	event.Time = at.Format("15:04")
	return event
}
