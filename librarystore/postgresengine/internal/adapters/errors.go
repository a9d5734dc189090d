package adapters

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE class 23 constraint violation codes shared by all Postgres drivers.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// IsUniqueViolation reports whether err was caused by a unique constraint
// violation, regardless of which driver (pgx or lib/pq) produced it.
func IsUniqueViolation(err error) bool {
	return hasSQLState(err, uniqueViolationCode)
}

// IsForeignKeyViolation reports whether err was caused by a foreign key
// constraint violation, regardless of which driver produced it.
func IsForeignKeyViolation(err error) bool {
	return hasSQLState(err, foreignKeyViolationCode)
}

// ConstraintName returns the name of the constraint that caused err, or an
// empty string when err carries no constraint information.
func ConstraintName(err error) string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.ConstraintName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}

func hasSQLState(err error, code string) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}

	return false
}
