// Package handler implements the HTTP handlers for the trip booking API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, booking.go, ...) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-booking/backend/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
}

// EmployeeServicer defines the business operations the employee handlers depend on.
type EmployeeServicer interface {
	Create(ctx context.Context, e domain.Employee) (domain.Employee, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Employee, error)
}

// BookingServicer defines the reservation operations the booking handlers depend on.
type BookingServicer interface {
	Create(ctx context.Context, cmd domain.BookingCommand) (domain.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	ListPaged(ctx context.Context, p domain.PaginationParams, sort domain.SortParams) ([]domain.Booking, int64, error)
	Update(ctx context.Context, id uuid.UUID, cmd domain.BookingCommand) (domain.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) error
}

// Server holds the dependencies of every API endpoint.
// Mount it in main.go via Routes.
type Server struct {
	trips     TripServicer
	employees EmployeeServicer
	bookings  BookingServicer
	log       *slog.Logger

	// minSeats is the request-layer floor for seat_count. It may be stricter
	// than the engine's own rule of one seat.
	minSeats int
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger used for unexpected errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMinRequestSeats rejects bookings asking for fewer than n seats with 422
// before they reach the booking service.
func WithMinRequestSeats(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.minSeats = n
		}
	}
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, employees EmployeeServicer, bookings BookingServicer, opts ...Option) *Server {
	s := &Server{
		trips:     trips,
		employees: employees,
		bookings:  bookings,
		log:       slog.Default(),
		minSeats:  1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns the chi router serving every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)
		r.Get("/{id}", s.GetTrip)
	})

	r.Route("/employees", func(r chi.Router) {
		r.Post("/", s.CreateEmployee)
		r.Get("/{id}", s.GetEmployee)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", s.CreateBooking)
		r.Get("/", s.ListBookings)
		r.Get("/{id}", s.GetBooking)
		r.Put("/{id}", s.UpdateBooking)
		r.Delete("/{id}", s.CancelBooking)
	})

	return r
}

// --- request helpers --------------------------------------------------------

// pathID binds the {id} path parameter as a UUID, writing a 400 response and
// returning false when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, badRequestBody(fmt.Sprintf("invalid id: %s", err)))
		return id, false
	}
	return id, true
}

// pageParams binds the optional page and limit query parameters.
// present reports whether either was supplied.
func pageParams(r *http.Request) (p domain.PaginationParams, present bool, err error) {
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		return p, false, fmt.Errorf("invalid page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		return p, false, fmt.Errorf("invalid limit: %w", err)
	}
	return domain.NewPaginationParams(page, limit), page != nil || limit != nil, nil
}

// bindOptionalString binds a single optional query parameter. dst is left
// untouched when the parameter is absent.
func bindOptionalString(r *http.Request, name string, dst *string) error {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if v != nil {
		*dst = *v
	}
	return nil
}

// decodeBody decodes the JSON request body into dst, writing the error
// response itself and returning false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		return false
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeJSON(w, http.StatusRequestEntityTooLarge,
			ErrorResponse{Error: ErrorDetail{Code: "body_too_large", Message: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)}})
	case errors.Is(err, openapi_types.ErrValidationEmail):
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("email is not a valid address"))
	default:
		writeJSON(w, http.StatusBadRequest, badRequestBody(fmt.Sprintf("malformed JSON body: %s", err)))
	}
	return false
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
