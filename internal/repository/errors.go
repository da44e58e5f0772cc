package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation, optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	return isPgError(err, pgUniqueViolation, constraint)
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key
// violation, optionally on a specific constraint.
func isForeignKeyViolation(err error, constraint string) bool {
	return isPgError(err, pgForeignKeyViolation, constraint)
}

func isPgError(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
