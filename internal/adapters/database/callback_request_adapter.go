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

var callbackColumns = []interface{}{
	"id", "mobile_number", "status", "preferred_time", "notes",
	"contacted_at", "executive_notes", "created_at", "updated_at",
}

// CallbackRequestAdapter implements the CallbackRequestRepository interface
type CallbackRequestAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCallbackRequestAdapter creates a new callback request adapter
func NewCallbackRequestAdapter(client *postgres.Client) repositories.CallbackRequestRepository {
	return &CallbackRequestAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanCallback(row rowScanner) (*entities.CallbackRequest, error) {
	c := &entities.CallbackRequest{}
	err := row.Scan(
		&c.ID, &c.MobileNumber, &c.Status, &c.PreferredTime, &c.Notes,
		&c.ContactedAt, &c.ExecutiveNotes, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (a *CallbackRequestAdapter) Create(ctx context.Context, request *entities.CallbackRequest) error {
	now := time.Now().UTC()
	request.CreatedAt = now
	request.UpdatedAt = now

	query, args, err := a.db.Insert("callback_requests").Rows(goqu.Record{
		"mobile_number":   request.MobileNumber,
		"status":          request.Status,
		"preferred_time":  request.PreferredTime,
		"notes":           request.Notes,
		"executive_notes": request.ExecutiveNotes,
		"created_at":      request.CreatedAt,
		"updated_at":      request.UpdatedAt,
	}).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&request.ID); err != nil {
		return mapWriteError(err, "callback request")
	}
	return nil
}

func (a *CallbackRequestAdapter) GetByID(ctx context.Context, id int64) (*entities.CallbackRequest, error) {
	query, args, err := a.db.Select(callbackColumns...).
		From("callback_requests").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	request, err := scanCallback(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("callback request with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get callback request", err)
	}
	return request, nil
}

// List returns callback requests, oldest first so the queue is worked in order
func (a *CallbackRequestAdapter) List(ctx context.Context, status entities.CallbackStatus, page repositories.Pagination) ([]*entities.CallbackRequest, error) {
	page = page.Normalize()

	ds := a.db.Select(callbackColumns...).From("callback_requests")
	if status != "" {
		ds = ds.Where(goqu.Ex{"status": status})
	}

	query, args, err := ds.Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list callback requests", err)
	}
	defer rows.Close()

	requests := make([]*entities.CallbackRequest, 0)
	for rows.Next() {
		request, err := scanCallback(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan callback request", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate callback requests", err)
	}
	return requests, nil
}

func (a *CallbackRequestAdapter) Update(ctx context.Context, request *entities.CallbackRequest) error {
	request.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("callback_requests").Set(goqu.Record{
		"status":          request.Status,
		"contacted_at":    request.ContactedAt,
		"executive_notes": request.ExecutiveNotes,
		"updated_at":      request.UpdatedAt,
	}).Where(goqu.Ex{"id": request.ID}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, "callback request")
	}
	return expectAffected(result, "callback request", request.ID)
}
