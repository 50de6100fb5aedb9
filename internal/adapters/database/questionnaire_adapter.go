package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

var questionnaireColumns = []interface{}{
	"id", "trigger_keywords", "question", "response_template", "category",
	"priority", "is_active", "created_at", "updated_at",
}

// QuestionnaireAdapter implements the QuestionnaireRepository interface
type QuestionnaireAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewQuestionnaireAdapter creates a new questionnaire adapter
func NewQuestionnaireAdapter(client *postgres.Client) repositories.QuestionnaireRepository {
	return &QuestionnaireAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanQuestionnaire(row rowScanner) (*entities.Questionnaire, error) {
	q := &entities.Questionnaire{}
	err := row.Scan(
		&q.ID, &q.TriggerKeywords, &q.Question, &q.ResponseTemplate, &q.Category,
		&q.Priority, &q.IsActive, &q.CreatedAt, &q.UpdatedAt,
	)
	return q, err
}

func questionnaireRecord(q *entities.Questionnaire) goqu.Record {
	return goqu.Record{
		"trigger_keywords":  q.TriggerKeywords,
		"question":          q.Question,
		"response_template": q.ResponseTemplate,
		"category":          q.Category,
		"priority":          q.Priority,
		"is_active":         q.IsActive,
		"updated_at":        q.UpdatedAt,
	}
}

func (a *QuestionnaireAdapter) Create(ctx context.Context, questionnaire *entities.Questionnaire) error {
	now := time.Now().UTC()
	questionnaire.CreatedAt = now
	questionnaire.UpdatedAt = now

	record := questionnaireRecord(questionnaire)
	record["created_at"] = questionnaire.CreatedAt

	query, args, err := a.db.Insert("questionnaires").Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&questionnaire.ID); err != nil {
		return mapWriteError(err, "questionnaire")
	}
	return nil
}

func (a *QuestionnaireAdapter) GetByID(ctx context.Context, id int64) (*entities.Questionnaire, error) {
	query, args, err := a.db.Select(questionnaireColumns...).
		From("questionnaires").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	questionnaire, err := scanQuestionnaire(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("questionnaire with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get questionnaire", err)
	}
	return questionnaire, nil
}

func (a *QuestionnaireAdapter) Update(ctx context.Context, questionnaire *entities.Questionnaire) error {
	questionnaire.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("questionnaires").
		Set(questionnaireRecord(questionnaire)).
		Where(goqu.Ex{"id": questionnaire.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, "questionnaire")
	}
	return expectAffected(result, "questionnaire", questionnaire.ID)
}

func (a *QuestionnaireAdapter) List(ctx context.Context, filter repositories.QuestionnaireFilter) ([]*entities.Questionnaire, error) {
	where := goqu.Ex{}
	if filter.Category != "" {
		where["category"] = filter.Category
	}
	if filter.Active != nil {
		where["is_active"] = *filter.Active
	}
	return a.list(ctx, where)
}

// ListActive returns active questionnaires in matching order: priority, then id
func (a *QuestionnaireAdapter) ListActive(ctx context.Context) ([]*entities.Questionnaire, error) {
	return a.list(ctx, goqu.Ex{"is_active": true})
}

func (a *QuestionnaireAdapter) list(ctx context.Context, where goqu.Ex) ([]*entities.Questionnaire, error) {
	ds := a.db.Select(questionnaireColumns...).From("questionnaires")
	if len(where) > 0 {
		ds = ds.Where(where)
	}

	query, args, err := ds.Order(goqu.I("priority").Asc(), goqu.I("id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list questionnaires", err)
	}
	defer rows.Close()

	questionnaires := make([]*entities.Questionnaire, 0)
	for rows.Next() {
		questionnaire, err := scanQuestionnaire(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan questionnaire", err)
		}
		questionnaires = append(questionnaires, questionnaire)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate questionnaires", err)
	}
	return questionnaires, nil
}
