package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes classified by repositories.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
)

// ConstraintError returns the violated constraint name when err is a Postgres
// error carrying one of codes.
func ConstraintError(err error, codes ...string) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	for _, code := range codes {
		if pgErr.Code == code {
			return pgErr.ConstraintName, true
		}
	}
	return "", false
}

// IsUniqueViolation reports a unique constraint violation, optionally restricted to constraint.
func IsUniqueViolation(err error, constraint string) bool {
	name, ok := ConstraintError(err, CodeUniqueViolation)
	return ok && (constraint == "" || name == constraint)
}

// IsForeignKeyViolation reports a foreign key violation, optionally restricted to constraint.
func IsForeignKeyViolation(err error, constraint string) bool {
	name, ok := ConstraintError(err, CodeForeignKeyViolation)
	return ok && (constraint == "" || name == constraint)
}

// IsCheckViolation reports a CHECK constraint violation, optionally restricted to constraint.
func IsCheckViolation(err error, constraint string) bool {
	name, ok := ConstraintError(err, CodeCheckViolation)
	return ok && (constraint == "" || name == constraint)
}

// IsNoRows reports an empty single-row result.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
