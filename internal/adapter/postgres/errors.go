package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

// SQLSTATE codes handled by MapError.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNotNullViolation     = "23502"
	codeQueryCanceled        = "57014"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// MapError converts pgx/pgconn errors to domain errors. A zero id is left
// out of the message. Context errors are wrapped but not mapped.
//
// Check and not-null violations come back as a *domain.ValidationError
// naming the offending column, so the API can point at the field. A query
// killed by statement_timeout reports context.DeadlineExceeded.
func MapError(err error, entity string, id int64) error {
	if err == nil {
		return nil
	}

	label := entity
	if id != 0 {
		label = fmt.Sprintf("%s %d", entity, id)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", label, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", label, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", label, err)
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", label, domain.ErrAlreadyExists)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w", label, domain.ErrNotFound)
	case codeCheckViolation:
		field := constraintColumn(pgErr.TableName, pgErr.ConstraintName)
		return fmt.Errorf("%s: %w", label, domain.NewValidationError(field, "out of range"))
	case codeNotNullViolation:
		field := pgErr.ColumnName
		if field == "" {
			field = entity
		}
		return fmt.Errorf("%s: %w", label, domain.NewValidationError(field, "required"))
	case codeQueryCanceled:
		return fmt.Errorf("%s: statement timeout: %w", label, context.DeadlineExceeded)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w: %s", label, domain.ErrConflict, pgErr.Message)
	}

	return fmt.Errorf("%s: %w", label, err)
}

// constraintColumn recovers the column from Postgres' default check
// constraint name "<table>_<column>_check". Other names are returned as is.
func constraintColumn(table, constraint string) string {
	name := strings.TrimSuffix(constraint, "_check")
	if table != "" {
		name = strings.TrimPrefix(name, table+"_")
	}
	if name == "" {
		return constraint
	}
	return name
}
