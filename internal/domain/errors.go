package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. seat count below one, booking date in the future).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrCapacityExceeded is returned when a trip does not have enough free
// seats for the requested change. Handlers should map this to HTTP 409.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrConflict is returned when a write collides with existing state, such
// as a second booking for the same employee and date, or a duplicate
// username. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// NotFoundError names the missing entity. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CapacityError reports how many seats were left when a request was refused.
// It matches ErrCapacityExceeded with errors.Is.
type CapacityError struct {
	TripID    uuid.UUID
	Requested int
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats on trip %s: requested %d, seats remaining %d",
		e.TripID, e.Requested, e.Remaining)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }
