package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-booking/backend/internal/domain"
	"github.com/pkordes/trip-booking/backend/internal/events"
	"github.com/pkordes/trip-booking/backend/internal/repo"
)

// maxRelockAttempts bounds how often Update and Cancel retry when the booking
// was moved to another trip between the initial read and taking the locks.
const maxRelockAttempts = 3

// errBookingMoved signals that the trip lock taken does not cover the
// booking any more and the operation must start over.
var errBookingMoved = errors.New("booking moved to another trip")

// ReservationService creates, edits and cancels bookings while keeping every
// trip's AvailableSeats counter equal to its capacity minus the seats held by
// its bookings.
//
// Each mutation runs as one transaction: trip rows (and the booking row) are
// locked, every capacity check happens before the first write, and the seat
// counter and booking are written together or not at all. Within the process
// the same trips are also guarded by a per-trip mutex, taken in ascending id
// order.
type ReservationService struct {
	bookings repo.BookingRepo
	tx       repo.TxRunner
	locks    *tripLocks
	events   events.Publisher
	log      *slog.Logger
	now      func() time.Time
}

// ReservationOption customises a ReservationService.
type ReservationOption func(*ReservationService)

// WithClock overrides the source of "today" for the booking date rule.
func WithClock(now func() time.Time) ReservationOption {
	return func(s *ReservationService) { s.now = now }
}

// WithPublisher sets where booking events go after a change commits.
func WithPublisher(p events.Publisher) ReservationOption {
	return func(s *ReservationService) { s.events = p }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) ReservationOption {
	return func(s *ReservationService) { s.log = l }
}

// NewReservationService constructs a ReservationService. bookings serves the
// read-only queries; every mutation goes through tx.
func NewReservationService(bookings repo.BookingRepo, tx repo.TxRunner, opts ...ReservationOption) *ReservationService {
	s := &ReservationService{
		bookings: bookings,
		tx:       tx,
		locks:    newTripLocks(),
		events:   events.Discard{},
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create books cmd.SeatCount seats on cmd.TripID for cmd.EmployeeID.
//
// Failures, in the order they are checked: domain.ErrValidation (future date,
// seat count below one), *domain.NotFoundError for the employee then the trip,
// *domain.CapacityError when the trip has fewer free seats than requested, and
// domain.ErrConflict when the employee already has a booking on that date.
func (s *ReservationService) Create(ctx context.Context, cmd domain.BookingCommand) (domain.Booking, error) {
	if err := s.validate(cmd); err != nil {
		return domain.Booking{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	created, trip, err := s.createLocked(ctx, cmd)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	s.log.InfoContext(ctx, "booking created",
		"booking_id", created.ID,
		"trip_id", trip.ID,
		"seats", created.SeatCount,
		"available_seats", trip.AvailableSeats,
	)
	s.publish(ctx, events.NewBookingEvent(events.BookingCreated, created, trip, s.now()))
	return created, nil
}

func (s *ReservationService) createLocked(ctx context.Context, cmd domain.BookingCommand) (domain.Booking, domain.Trip, error) {
	unlock := s.locks.Lock(cmd.TripID)
	defer unlock()

	var (
		created domain.Booking
		trip    domain.Trip
	)
	err := s.tx.InTx(ctx, func(st repo.Stores) error {
		if err := requireEmployee(ctx, st.Employees, cmd.EmployeeID); err != nil {
			return err
		}

		trips, err := st.Trips.LockByIDs(ctx, cmd.TripID)
		if err != nil {
			return err
		}
		t, ok := trips[cmd.TripID]
		if !ok {
			return &domain.NotFoundError{Entity: "trip", ID: cmd.TripID}
		}
		if t.AvailableSeats < cmd.SeatCount {
			return &domain.CapacityError{TripID: t.ID, Requested: cmd.SeatCount, Remaining: t.AvailableSeats}
		}

		if trip, err = st.Trips.SetAvailableSeats(ctx, t.ID, t.AvailableSeats-cmd.SeatCount); err != nil {
			return err
		}
		created, err = st.Bookings.Create(ctx, bookingFromCommand(cmd))
		return err
	})
	return created, trip, err
}

// GetByID returns a single booking.
// Returns a *domain.NotFoundError if it does not exist.
func (s *ReservationService) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.ReservationService.GetByID: %w", bookingLookupErr(id, err))
	}
	return b, nil
}

// List returns every booking.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ReservationService) List(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.List: %w", err)
	}
	if bookings == nil {
		return []domain.Booking{}, nil
	}
	return bookings, nil
}

// ListPaged returns one page of bookings in the given order and the total count.
func (s *ReservationService) ListPaged(ctx context.Context, p domain.PaginationParams, sort domain.SortParams) ([]domain.Booking, int64, error) {
	bookings, total, err := s.bookings.ListPaged(ctx, p, sort)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReservationService.ListPaged: %w", err)
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, total, nil
}

// Update replaces every field of booking id with cmd and moves its seat hold
// accordingly.
//
// On the same trip only the difference in seats is taken from (or given back
// to) the trip. When the trip changes, the old trip gets its seats back and
// the new trip gives up cmd.SeatCount seats; the new trip's capacity is checked
// before anything is written, so a refused move leaves both trips untouched.
func (s *ReservationService) Update(ctx context.Context, id uuid.UUID, cmd domain.BookingCommand) (domain.Booking, error) {
	for attempt := 0; attempt < maxRelockAttempts; attempt++ {
		current, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return domain.Booking{}, fmt.Errorf("service.ReservationService.Update: %w", bookingLookupErr(id, err))
		}

		res, err := s.updateLocked(ctx, id, current.TripID, cmd)
		if errors.Is(err, errBookingMoved) {
			continue
		}
		if err != nil {
			return domain.Booking{}, fmt.Errorf("service.ReservationService.Update: %w", err)
		}

		s.log.InfoContext(ctx, "booking updated",
			"booking_id", res.booking.ID,
			"from_trip_id", res.previous.ID,
			"to_trip_id", res.trip.ID,
			"seats", res.booking.SeatCount,
			"available_seats", res.trip.AvailableSeats,
		)
		evt := events.NewBookingEvent(events.BookingUpdated, res.booking, res.trip, s.now())
		if res.previous.ID != res.trip.ID {
			prev := res.previous.ID
			evt.PreviousTripID = &prev
		}
		s.publish(ctx, evt)
		return res.booking, nil
	}
	return domain.Booking{}, fmt.Errorf("service.ReservationService.Update: %w: booking %s changed trips concurrently, retry", domain.ErrConflict, id)
}

type updateResult struct {
	booking  domain.Booking
	trip     domain.Trip
	previous domain.Trip
}

func (s *ReservationService) updateLocked(ctx context.Context, id, lockedTripID uuid.UUID, cmd domain.BookingCommand) (updateResult, error) {
	unlock := s.locks.Lock(lockedTripID, cmd.TripID)
	defer unlock()

	var res updateResult
	err := s.tx.InTx(ctx, func(st repo.Stores) error {
		existing, err := st.Bookings.GetByIDForUpdate(ctx, id)
		if err != nil {
			return bookingLookupErr(id, err)
		}
		if existing.TripID != lockedTripID {
			return errBookingMoved
		}

		if err := requireEmployee(ctx, st.Employees, cmd.EmployeeID); err != nil {
			return err
		}
		trips, err := st.Trips.LockByIDs(ctx, existing.TripID, cmd.TripID)
		if err != nil {
			return err
		}
		next, ok := trips[cmd.TripID]
		if !ok {
			return &domain.NotFoundError{Entity: "trip", ID: cmd.TripID}
		}
		if err := s.validate(cmd); err != nil {
			return err
		}

		if existing.TripID == cmd.TripID {
			delta := cmd.SeatCount - existing.SeatCount
			if next.AvailableSeats < delta {
				return &domain.CapacityError{TripID: next.ID, Requested: delta, Remaining: next.AvailableSeats}
			}
			if delta != 0 {
				if next, err = st.Trips.SetAvailableSeats(ctx, next.ID, next.AvailableSeats-delta); err != nil {
					return err
				}
			}
			res.previous = next
		} else {
			if next.AvailableSeats < cmd.SeatCount {
				return &domain.CapacityError{TripID: next.ID, Requested: cmd.SeatCount, Remaining: next.AvailableSeats}
			}
			// A missing old trip is an integrity anomaly; there is nothing to give back.
			res.previous = domain.Trip{ID: existing.TripID}
			if prev, ok := trips[existing.TripID]; ok {
				if res.previous, err = st.Trips.SetAvailableSeats(ctx, prev.ID, prev.AvailableSeats+existing.SeatCount); err != nil {
					return err
				}
			}
			if next, err = st.Trips.SetAvailableSeats(ctx, next.ID, next.AvailableSeats-cmd.SeatCount); err != nil {
				return err
			}
		}
		res.trip = next

		b := bookingFromCommand(cmd)
		b.ID = id
		res.booking, err = st.Bookings.Update(ctx, b)
		return err
	})
	return res, err
}

// Cancel deletes booking id and gives its seats back to the trip. If the trip
// no longer exists the booking is still removed and nothing is restored.
func (s *ReservationService) Cancel(ctx context.Context, id uuid.UUID) error {
	for attempt := 0; attempt < maxRelockAttempts; attempt++ {
		current, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("service.ReservationService.Cancel: %w", bookingLookupErr(id, err))
		}

		cancelled, trip, restored, err := s.cancelLocked(ctx, id, current.TripID)
		if errors.Is(err, errBookingMoved) {
			continue
		}
		if err != nil {
			return fmt.Errorf("service.ReservationService.Cancel: %w", err)
		}

		if !restored {
			s.log.WarnContext(ctx, "cancelled booking referenced a missing trip; no seats restored",
				"booking_id", cancelled.ID,
				"trip_id", cancelled.TripID,
			)
		} else {
			s.log.InfoContext(ctx, "booking cancelled",
				"booking_id", cancelled.ID,
				"trip_id", trip.ID,
				"seats", cancelled.SeatCount,
				"available_seats", trip.AvailableSeats,
			)
		}
		s.publish(ctx, events.NewBookingEvent(events.BookingCancelled, cancelled, trip, s.now()))
		return nil
	}
	return fmt.Errorf("service.ReservationService.Cancel: %w: booking %s changed trips concurrently, retry", domain.ErrConflict, id)
}

func (s *ReservationService) cancelLocked(ctx context.Context, id, lockedTripID uuid.UUID) (domain.Booking, domain.Trip, bool, error) {
	unlock := s.locks.Lock(lockedTripID)
	defer unlock()

	var (
		b        domain.Booking
		trip     domain.Trip
		restored bool
	)
	err := s.tx.InTx(ctx, func(st repo.Stores) error {
		var err error
		if b, err = st.Bookings.GetByIDForUpdate(ctx, id); err != nil {
			return bookingLookupErr(id, err)
		}
		if b.TripID != lockedTripID {
			return errBookingMoved
		}

		trips, err := st.Trips.LockByIDs(ctx, b.TripID)
		if err != nil {
			return err
		}
		if t, ok := trips[b.TripID]; ok {
			if trip, err = st.Trips.SetAvailableSeats(ctx, t.ID, t.AvailableSeats+b.SeatCount); err != nil {
				return err
			}
			restored = true
		}
		return st.Bookings.Delete(ctx, id)
	})
	return b, trip, restored, err
}

// validate enforces the booking rules shared by Create and Update.
//   - BookingDate must not be after today.
//   - SeatCount must be at least 1.
func (s *ReservationService) validate(cmd domain.BookingCommand) error {
	today := domain.DateOnly(s.now())
	if domain.DateOnly(cmd.BookingDate).After(today) {
		return fmt.Errorf("%w: booking date must not be in the future", domain.ErrValidation)
	}
	if cmd.SeatCount < 1 {
		return fmt.Errorf("%w: seat count must be at least 1", domain.ErrValidation)
	}
	return nil
}

func (s *ReservationService) publish(ctx context.Context, evt events.BookingEvent) {
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.WarnContext(ctx, "publish booking event failed",
			"type", evt.Type,
			"booking_id", evt.BookingID,
			"error", err,
		)
	}
}

func requireEmployee(ctx context.Context, employees repo.EmployeeRepo, id uuid.UUID) error {
	ok, err := employees.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.NotFoundError{Entity: "employee", ID: id}
	}
	return nil
}

// bookingLookupErr names the booking in not-found errors and passes every
// other error through.
func bookingLookupErr(id uuid.UUID, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Entity: "booking", ID: id}
	}
	return err
}

func bookingFromCommand(cmd domain.BookingCommand) domain.Booking {
	return domain.Booking{
		EmployeeID:  cmd.EmployeeID,
		TripID:      cmd.TripID,
		SeatCount:   cmd.SeatCount,
		BookingDate: domain.DateOnly(cmd.BookingDate),
		Notes:       cmd.Notes,
	}
}
