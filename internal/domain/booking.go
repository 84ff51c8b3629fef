package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking reserves SeatCount seats on one trip for one employee.
// An employee holds at most one booking per BookingDate.
type Booking struct {
	ID          uuid.UUID `json:"id"`
	EmployeeID  uuid.UUID `json:"employee_id"`
	TripID      uuid.UUID `json:"trip_id"`
	SeatCount   int       `json:"seat_count"`
	BookingDate time.Time `json:"booking_date"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookingCommand carries the caller-supplied fields for creating or
// replacing a booking.
type BookingCommand struct {
	EmployeeID  uuid.UUID
	TripID      uuid.UUID
	SeatCount   int
	BookingDate time.Time
	Notes       string
}

// DateOnly truncates t to midnight UTC of its own calendar day.
// Dates coming from Postgres and from JSON are already in this form.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
