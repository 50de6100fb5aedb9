package entities

import (
	"time"
)

// ChatRequest is the payload accepted by the chat endpoint
type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=2000"`
	PatientID *int64 `json:"patient_id,omitempty" validate:"omitempty,gt=0"`
	DoctorID  *int64 `json:"doctor_id,omitempty" validate:"omitempty,gt=0"`
	SessionID *int64 `json:"session_id,omitempty" validate:"omitempty,gt=0"`
}

// RetrievedDocument is a knowledge snippet attached to a chat answer
type RetrievedDocument struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// ChatResponse is returned by the chat endpoint
type ChatResponse struct {
	Response           string              `json:"response"`
	PatientContext     *PatientContext     `json:"patient_context,omitempty"`
	DoctorContext      *DoctorContext      `json:"doctor_context,omitempty"`
	RetrievedDocuments []RetrievedDocument `json:"retrieved_documents"`
	CurrentQuestion    *string             `json:"current_question"`
	SessionID          *int64              `json:"session_id,omitempty"`
	FallbackMode       bool                `json:"fallback_mode"`
	AIConfidence       *float64            `json:"ai_confidence,omitempty"`
}

// ChatQuery is the input of one pipeline run
type ChatQuery struct {
	Message string
	Patient *PatientContext
	Doctor  *DoctorContext
}

// FallbackReason records why the deterministic path answered.
type FallbackReason string

const (
	FallbackReasonNone          FallbackReason = ""
	FallbackReasonLowConfidence FallbackReason = "low_confidence"
	FallbackReasonProviderError FallbackReason = "provider_error"
	FallbackReasonNoProvider    FallbackReason = "no_provider"
)

// PipelineResult is the outcome of one pipeline run
type PipelineResult struct {
	Response               string
	CurrentQuestion        *string
	CurrentQuestionnaireID *int64
	FallbackMode           bool
	AIConfidence           *float64
	Provider               string
	FallbackReason         FallbackReason
}

// ChatSessionStatus is the lifecycle state of a chat session
type ChatSessionStatus string

const (
	ChatSessionStatusActive ChatSessionStatus = "active"
	ChatSessionStatusClosed ChatSessionStatus = "closed"
)

// ChatTurn is one message exchanged within a session
type ChatTurn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ChatSession tracks the turns of one conversation
type ChatSession struct {
	ID                     int64             `json:"id" db:"id"`
	PatientID              *int64            `json:"patient_id,omitempty" db:"patient_id"`
	DoctorID               *int64            `json:"doctor_id,omitempty" db:"doctor_id"`
	SessionData            []ChatTurn        `json:"session_data" db:"session_data"`
	CurrentQuestionnaireID *int64            `json:"current_questionnaire_id,omitempty" db:"current_questionnaire_id"`
	Status                 ChatSessionStatus `json:"status" db:"status"`
	CreatedAt              time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at" db:"updated_at"`
}

// AppendTurns adds turns and keeps at most limit of the most recent ones.
func (s *ChatSession) AppendTurns(limit int, turns ...ChatTurn) {
	s.SessionData = append(s.SessionData, turns...)
	if limit > 0 && len(s.SessionData) > limit {
		s.SessionData = s.SessionData[len(s.SessionData)-limit:]
	}
}
