package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

// PostgreSQL SQLSTATE codes the adapters translate.
const (
	pqUniqueViolation     pq.ErrorCode = "23505"
	pqForeignKeyViolation pq.ErrorCode = "23503"
	pqCheckViolation      pq.ErrorCode = "23514"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func pqError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == pqUniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}

// mapWriteError translates integrity violations on insert or update into
// client errors and wraps everything else as internal.
func mapWriteError(err error, entity string) error {
	if pqErr, ok := pqError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			return apperrors.NewConflictError(fmt.Sprintf("%s already exists", entity))
		case pqForeignKeyViolation:
			return apperrors.NewValidationError(fmt.Sprintf("%s references a record that does not exist", entity))
		case pqCheckViolation:
			return apperrors.NewValidationError(fmt.Sprintf("%s violates constraint %s", entity, pqErr.Constraint))
		}
	}
	return apperrors.NewInternalError(fmt.Sprintf("failed to write %s", entity), err)
}

// expectAffected turns a zero-row update or delete into NotFound.
func expectAffected(result sql.Result, entity string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s with id %d not found", entity, id))
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
