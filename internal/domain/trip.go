// Package domain contains the core data types for the trip booking API.
// Everything here is plain data and error kinds; it is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripPlanned   TripStatus = "PLANNED"
	TripOngoing   TripStatus = "ONGOING"
	TripCompleted TripStatus = "COMPLETED"
	TripCancelled TripStatus = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripPlanned, TripOngoing, TripCompleted, TripCancelled:
		return true
	}
	return false
}

// Trip is a scheduled journey with a seat inventory.
//
// Capacity is fixed when the trip is created. AvailableSeats is the running
// counter adjusted by every booking mutation; at rest it always equals
// Capacity minus the seats held by the trip's bookings.
type Trip struct {
	ID             uuid.UUID  `json:"id"`
	Destination    string     `json:"destination"`
	Date           time.Time  `json:"date"`
	Status         TripStatus `json:"status"`
	Capacity       int        `json:"capacity"`
	AvailableSeats int        `json:"available_seats"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
