package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Common repository errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrHandleExists    = errors.New("handle already exists")
	ErrListingNotFound = errors.New("listing not found")
	ErrNotOwner        = errors.New("listing is owned by another user")
	ErrOwnerMissing    = errors.New("listing owner does not exist")
)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
