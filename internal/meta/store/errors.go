package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// Sentinel store errors. Driver-specific errors are normalized through
// ConvertDBError so callers can use errors.Is.
var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("metadata record not found")

	// ErrUniqueViolation is returned when an insert collides with the
	// composite uniqueness constraint.
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// ConvertDBError normalizes database driver errors to store sentinels.
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.Detail)
		}
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
			return fmt.Errorf("%w: %s", ErrUniqueViolation, sqliteErr.Error())
		}
	}

	return err
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
