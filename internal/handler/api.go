package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Wire types for the JSON API. Field names and formats follow spec/openapi.yaml.

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorDetail describes a failed request. SeatsRemaining is only set for
// capacity_exceeded errors.
type ErrorDetail struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	SeatsRemaining *int   `json:"seats_remaining,omitempty"`
}

// ErrorResponse wraps every non-2xx body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Pagination reports where a page sits in the full result set.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type Trip struct {
	Id             openapi_types.UUID `json:"id"`
	Destination    string             `json:"destination"`
	Date           openapi_types.Date `json:"date"`
	Status         string             `json:"status"`
	Capacity       int                `json:"capacity"`
	AvailableSeats int                `json:"available_seats"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type CreateTripRequest struct {
	Destination string              `json:"destination"`
	Date        *openapi_types.Date `json:"date"`
	Status      *string             `json:"status,omitempty"`
	Capacity    *int                `json:"capacity"`
}

type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Employee struct {
	Id        openapi_types.UUID `json:"id"`
	Username  string             `json:"username"`
	Name      string             `json:"name"`
	Surname   string             `json:"surname"`
	Email     string             `json:"email"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// CreateEmployeeRequest uses openapi_types.Email, which rejects malformed
// addresses while the body is decoded.
type CreateEmployeeRequest struct {
	Username string              `json:"username"`
	Name     string              `json:"name"`
	Surname  string              `json:"surname"`
	Email    openapi_types.Email `json:"email"`
}

type Booking struct {
	Id          openapi_types.UUID `json:"id"`
	EmployeeId  openapi_types.UUID `json:"employee_id"`
	TripId      openapi_types.UUID `json:"trip_id"`
	SeatCount   int                `json:"seat_count"`
	BookingDate openapi_types.Date `json:"booking_date"`
	Notes       *string            `json:"notes,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// BookingRequest is the body of POST /bookings and PUT /bookings/{id}.
// PUT replaces every field, so both share one shape.
type BookingRequest struct {
	EmployeeId  *openapi_types.UUID `json:"employee_id"`
	TripId      *openapi_types.UUID `json:"trip_id"`
	SeatCount   *int                `json:"seat_count"`
	BookingDate *openapi_types.Date `json:"booking_date"`
	Notes       *string             `json:"notes,omitempty"`
}

// BookingList is the body of GET /bookings. Pagination is omitted when the
// caller asked for every booking.
type BookingList struct {
	Data       []Booking   `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}
