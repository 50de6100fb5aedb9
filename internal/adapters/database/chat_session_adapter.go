package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

// ChatSessionAdapter implements the ChatSessionRepository interface.
// Turns are stored as a JSONB array in session_data.
type ChatSessionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewChatSessionAdapter creates a new chat session adapter
func NewChatSessionAdapter(client *postgres.Client) repositories.ChatSessionRepository {
	return &ChatSessionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func encodeTurns(turns []entities.ChatTurn) (string, error) {
	if turns == nil {
		turns = []entities.ChatTurn{}
	}
	data, err := json.Marshal(turns)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *ChatSessionAdapter) Create(ctx context.Context, session *entities.ChatSession) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = entities.ChatSessionStatusActive
	}

	data, err := encodeTurns(session.SessionData)
	if err != nil {
		return apperrors.NewInternalError("failed to encode session data", err)
	}

	query, args, err := a.db.Insert("chat_sessions").Rows(goqu.Record{
		"patient_id":               session.PatientID,
		"doctor_id":                session.DoctorID,
		"session_data":             goqu.L("?::jsonb", data),
		"current_questionnaire_id": session.CurrentQuestionnaireID,
		"status":                   session.Status,
		"created_at":               session.CreatedAt,
		"updated_at":               session.UpdatedAt,
	}).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&session.ID); err != nil {
		return mapWriteError(err, "chat session")
	}
	return nil
}

func (a *ChatSessionAdapter) GetByID(ctx context.Context, id int64) (*entities.ChatSession, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "doctor_id", "session_data",
		"current_questionnaire_id", "status", "created_at", "updated_at",
	).From("chat_sessions").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	session := &entities.ChatSession{}
	var data []byte
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&session.ID, &session.PatientID, &session.DoctorID, &data,
		&session.CurrentQuestionnaireID, &session.Status, &session.CreatedAt, &session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("chat session with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get chat session", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &session.SessionData); err != nil {
			return nil, apperrors.NewInternalError("failed to decode session data", err)
		}
	}
	if session.SessionData == nil {
		session.SessionData = []entities.ChatTurn{}
	}
	return session, nil
}

func (a *ChatSessionAdapter) Update(ctx context.Context, session *entities.ChatSession) error {
	session.UpdatedAt = time.Now().UTC()

	data, err := encodeTurns(session.SessionData)
	if err != nil {
		return apperrors.NewInternalError("failed to encode session data", err)
	}

	query, args, err := a.db.Update("chat_sessions").Set(goqu.Record{
		"session_data":             goqu.L("?::jsonb", data),
		"current_questionnaire_id": session.CurrentQuestionnaireID,
		"status":                   session.Status,
		"updated_at":               session.UpdatedAt,
	}).Where(goqu.Ex{"id": session.ID}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, "chat session")
	}
	return expectAffected(result, "chat session", session.ID)
}
