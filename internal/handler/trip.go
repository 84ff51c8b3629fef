package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-booking/backend/internal/domain"
)

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}
	trip, msg := requestToTrip(body)
	if msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(msg))
		return
	}

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params, _, err := pageParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, badRequestBody(err.Error()))
		return
	}

	trips, total, err := s.trips.ListPaged(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a CreateTripRequest body into a domain.Trip.
// Returns a non-empty message if required fields are missing.
func requestToTrip(body CreateTripRequest) (domain.Trip, string) {
	if body.Date == nil {
		return domain.Trip{}, "date is required"
	}
	if body.Capacity == nil {
		return domain.Trip{}, "capacity is required"
	}
	t := domain.Trip{
		Destination: body.Destination,
		Date:        body.Date.Time,
		Capacity:    *body.Capacity,
	}
	if body.Status != nil {
		t.Status = domain.TripStatus(*body.Status)
	}
	return t, ""
}

// tripToResponse converts a domain.Trip into its wire representation.
func tripToResponse(t domain.Trip) Trip {
	return Trip{
		Id:             t.ID,
		Destination:    t.Destination,
		Date:           openapi_types.Date{Time: t.Date},
		Status:         string(t.Status),
		Capacity:       t.Capacity,
		AvailableSeats: t.AvailableSeats,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
