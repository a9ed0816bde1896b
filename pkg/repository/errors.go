package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// MapError translates driver errors into domain errors: sql.ErrNoRows
// becomes notFound and a PostgreSQL unique violation becomes duplicate.
// A nil duplicate leaves unique violations unchanged. Other errors pass through.
func MapError(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case duplicate != nil && IsUniqueViolation(err):
		return duplicate
	default:
		return err
	}
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
