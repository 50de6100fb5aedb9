package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

// QueryResolver turns a chat query into a response.
type QueryResolver interface {
	Resolve(ctx context.Context, query *entities.ChatQuery) (*entities.PipelineResult, error)
}

// ChatService wraps the pipeline with context loading and session history.
type ChatService struct {
	resolver     QueryResolver
	patientRepo  repositories.PatientRepository
	doctorRepo   repositories.DoctorRepository
	sessionRepo  repositories.ChatSessionRepository
	historyLimit int
	now          func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(
	resolver QueryResolver,
	patientRepo repositories.PatientRepository,
	doctorRepo repositories.DoctorRepository,
	sessionRepo repositories.ChatSessionRepository,
	historyLimit int,
) *ChatService {
	return &ChatService{
		resolver:     resolver,
		patientRepo:  patientRepo,
		doctorRepo:   doctorRepo,
		sessionRepo:  sessionRepo,
		historyLimit: historyLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Handle answers one chat message and records both turns in the session.
func (s *ChatService) Handle(ctx context.Context, req *entities.ChatRequest) (*entities.ChatResponse, error) {
	logger := observability.LoggerFromContext(ctx)

	query := &entities.ChatQuery{Message: req.Message}
	if req.PatientID != nil {
		query.Patient = s.patientContext(ctx, *req.PatientID)
	}
	if req.DoctorID != nil {
		query.Doctor = s.doctorContext(ctx, *req.DoctorID)
	}

	session, err := s.loadSession(ctx, req, query)
	if err != nil {
		return nil, err
	}

	result, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session.AppendTurns(s.historyLimit,
		entities.ChatTurn{Role: "user", Content: req.Message, At: now},
		entities.ChatTurn{Role: "assistant", Content: result.Response, At: now},
	)
	session.CurrentQuestionnaireID = result.CurrentQuestionnaireID
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		logger.Error().Err(err).Int64("session_id", session.ID).Msg("failed to save chat session")
		return nil, err
	}

	sessionID := session.ID
	return &entities.ChatResponse{
		Response:           result.Response,
		PatientContext:     query.Patient,
		DoctorContext:      query.Doctor,
		RetrievedDocuments: []entities.RetrievedDocument{},
		CurrentQuestion:    result.CurrentQuestion,
		SessionID:          &sessionID,
		FallbackMode:       result.FallbackMode,
		AIConfidence:       result.AIConfidence,
	}, nil
}

// GetSession returns a stored chat session
func (s *ChatService) GetSession(ctx context.Context, id int64) (*entities.ChatSession, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

func (s *ChatService) loadSession(ctx context.Context, req *entities.ChatRequest, query *entities.ChatQuery) (*entities.ChatSession, error) {
	if req.SessionID != nil {
		return s.sessionRepo.GetByID(ctx, *req.SessionID)
	}

	// Only resolved ids are linked.
	session := &entities.ChatSession{
		SessionData: []entities.ChatTurn{},
		Status:      entities.ChatSessionStatusActive,
	}
	if query.Patient != nil {
		session.PatientID = &query.Patient.ID
	}
	if query.Doctor != nil {
		session.DoctorID = &query.Doctor.ID
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) patientContext(ctx context.Context, id int64) *entities.PatientContext {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		logContextMiss(ctx, "patient", id, err)
		return nil
	}
	return patient.Context(s.now())
}

func (s *ChatService) doctorContext(ctx context.Context, id int64) *entities.DoctorContext {
	doctor, err := s.doctorRepo.GetByID(ctx, id)
	if err != nil {
		logContextMiss(ctx, "doctor", id, err)
		return nil
	}
	return doctor.Context()
}

func logContextMiss(ctx context.Context, kind string, id int64, err error) {
	logger := observability.LoggerFromContext(ctx)
	level := zerolog.WarnLevel
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		level = zerolog.InfoLevel
	}
	logger.WithLevel(level).Err(err).Str("kind", kind).Int64("id", id).Msg("chat context unavailable")
}
