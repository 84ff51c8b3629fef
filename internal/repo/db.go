// Package repo contains all database access logic for the trip booking API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/trip-booking/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Postgres SQLSTATE codes mapped onto domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// constraintMessages gives callers a readable reason for the named constraints.
var constraintMessages = map[string]string{
	"bookings_employee_date_key": "employee already has a booking on this date",
	"employees_username_key":     "username is already taken",
	"employees_email_key":        "email is already registered",
	"bookings_employee_id_fkey":  "employee does not exist",
	"bookings_trip_id_fkey":      "trip does not exist",
}

// mapWriteErr converts constraint violations into domain errors so the
// service and handler layers never need to know about SQLSTATE codes.
// Any other error is returned unchanged.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	msg, ok := constraintMessages[pgErr.ConstraintName]
	if !ok {
		msg = pgErr.ConstraintName
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case pgCheckViolation:
		if pgErr.ConstraintName == "trips_available_seats_range" {
			return fmt.Errorf("%w: seat counter out of range", domain.ErrCapacityExceeded)
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	}
	return err
}
