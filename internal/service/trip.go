// Package service contains the business logic for the trip booking API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here. Services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-booking/backend/internal/domain"
	"github.com/pkordes/trip-booking/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
// Seat counters are never written here; only ReservationService moves them.
type TripService struct {
	repo repo.TripRepo
	now  func() time.Time
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo) *TripService {
	return &TripService{repo: r, now: time.Now}
}

// Create validates and persists a new trip. AvailableSeats starts at Capacity
// regardless of what the caller sent. An empty status defaults to PLANNED.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if trip.Status == "" {
		trip.Status = domain.TripPlanned
	}
	if err := s.validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	trip.Destination = strings.TrimSpace(trip.Destination)
	trip.Date = domain.DateOnly(trip.Date)
	trip.AvailableSeats = trip.Capacity

	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single trip by ID.
// Returns a *domain.NotFoundError if it does not exist.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		err = &domain.NotFoundError{Entity: "trip", ID: id}
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of trips and the total number of trips.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.repo.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// validateTrip enforces the rules for a new trip.
//   - Destination must be non-empty (whitespace-only is rejected).
//   - Status must be one of the known lifecycle states.
//   - Capacity must not be negative.
//   - Date must not be before today.
func (s *TripService) validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if !trip.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, trip.Status)
	}
	if trip.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", domain.ErrValidation)
	}
	if domain.DateOnly(trip.Date).Before(domain.DateOnly(s.now())) {
		return fmt.Errorf("%w: trip date must not be in the past", domain.ErrValidation)
	}
	return nil
}
