package handler

import (
	"fmt"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-booking/backend/internal/domain"
)

// CreateBooking handles POST /bookings.
// A capacity failure is a 409 whose body carries seats_remaining.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var body BookingRequest
	if !decodeBody(w, r, &body) {
		return
	}
	cmd, msg := s.requestToCommand(body)
	if msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(msg))
		return
	}

	created, err := s.bookings.Create(r.Context(), cmd)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, bookingToResponse(created))
}

// ListBookings handles GET /bookings.
// Without page, limit or sort it returns every booking. With any of them it
// returns one page ordered by ?sort=field[,asc|desc] (default booking_date,desc).
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	params, paged, err := pageParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, badRequestBody(err.Error()))
		return
	}

	var rawSort string
	if err := bindOptionalString(r, "sort", &rawSort); err != nil {
		writeJSON(w, http.StatusBadRequest, badRequestBody(err.Error()))
		return
	}

	if !paged && rawSort == "" {
		bookings, err := s.bookings.List(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, BookingList{Data: bookingsToResponse(bookings)})
		return
	}

	sort, err := domain.ParseBookingSort(rawSort)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	bookings, total, err := s.bookings.ListPaged(r.Context(), params, sort)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BookingList{
		Data: bookingsToResponse(bookings),
		Pagination: &Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetBooking handles GET /bookings/{id}.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b, err := s.bookings.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bookingToResponse(b))
}

// UpdateBooking handles PUT /bookings/{id}. Every field is replaced.
func (s *Server) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body BookingRequest
	if !decodeBody(w, r, &body) {
		return
	}
	cmd, msg := s.requestToCommand(body)
	if msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(msg))
		return
	}

	updated, err := s.bookings.Update(r.Context(), id, cmd)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bookingToResponse(updated))
}

// CancelBooking handles DELETE /bookings/{id}.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.bookings.Cancel(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// requestToCommand checks that every required field is present and applies
// the request-layer seat minimum. Returns a non-empty message on failure.
func (s *Server) requestToCommand(body BookingRequest) (domain.BookingCommand, string) {
	switch {
	case body.EmployeeId == nil:
		return domain.BookingCommand{}, "employee_id is required"
	case body.TripId == nil:
		return domain.BookingCommand{}, "trip_id is required"
	case body.SeatCount == nil:
		return domain.BookingCommand{}, "seat_count is required"
	case body.BookingDate == nil:
		return domain.BookingCommand{}, "booking_date is required"
	case *body.SeatCount < s.minSeats:
		return domain.BookingCommand{}, fmt.Sprintf("seat_count must be at least %d", s.minSeats)
	}

	cmd := domain.BookingCommand{
		EmployeeID:  *body.EmployeeId,
		TripID:      *body.TripId,
		SeatCount:   *body.SeatCount,
		BookingDate: body.BookingDate.Time,
	}
	if body.Notes != nil {
		cmd.Notes = *body.Notes
	}
	return cmd, ""
}

func bookingToResponse(b domain.Booking) Booking {
	resp := Booking{
		Id:          b.ID,
		EmployeeId:  b.EmployeeID,
		TripId:      b.TripID,
		SeatCount:   b.SeatCount,
		BookingDate: openapi_types.Date{Time: b.BookingDate},
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.Notes != "" {
		resp.Notes = &b.Notes
	}
	return resp
}

func bookingsToResponse(bookings []domain.Booking) []Booking {
	out := make([]Booking, len(bookings))
	for i, b := range bookings {
		out[i] = bookingToResponse(b)
	}
	return out
}
