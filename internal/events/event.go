// Package events defines the booking lifecycle messages emitted after a
// reservation change commits, and the publishers that deliver them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-booking/backend/internal/domain"
)

// Type identifies what happened to a booking. It doubles as the AMQP
// message type.
type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingUpdated   Type = "booking.updated"
	BookingCancelled Type = "booking.cancelled"
)

// BookingEvent is the payload consumers (mail notification, reporting) receive.
// It is self-contained so they never need to query the booking database.
type BookingEvent struct {
	Type           Type       `json:"type"`
	BookingID      uuid.UUID  `json:"booking_id"`
	EmployeeID     uuid.UUID  `json:"employee_id"`
	TripID         uuid.UUID  `json:"trip_id"`
	PreviousTripID *uuid.UUID `json:"previous_trip_id,omitempty"`
	SeatCount      int        `json:"seat_count"`
	BookingDate    string     `json:"booking_date"`
	AvailableSeats int        `json:"available_seats"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// NewBookingEvent builds an event for b. trip is the trip the booking now
// holds seats on (or released them from, for cancellations).
func NewBookingEvent(t Type, b domain.Booking, trip domain.Trip, at time.Time) BookingEvent {
	return BookingEvent{
		Type:           t,
		BookingID:      b.ID,
		EmployeeID:     b.EmployeeID,
		TripID:         b.TripID,
		SeatCount:      b.SeatCount,
		BookingDate:    b.BookingDate.Format(time.DateOnly),
		AvailableSeats: trip.AvailableSeats,
		OccurredAt:     at.UTC(),
	}
}

// Publisher delivers booking events.
type Publisher interface {
	Publish(ctx context.Context, evt BookingEvent) error
}

// Discard is a Publisher that drops every event. It is used when no broker
// is configured.
type Discard struct{}

func (Discard) Publish(context.Context, BookingEvent) error { return nil }
