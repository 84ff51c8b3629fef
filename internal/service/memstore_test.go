package service_test

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-booking/backend/internal/domain"
	"github.com/pkordes/trip-booking/backend/internal/repo"
)

// memStore is an in-memory stand-in for Postgres used by the reservation
// tests. Each InTx call reads committed state, buffers its own writes and
// applies them only when fn returns nil, so a failed operation leaves no trace.
//
// Row locks are not emulated: two transactions touching the same trip both
// see the same committed counter. Any serialization observed in tests comes
// from the service itself.
type memStore struct {
	mu        sync.Mutex
	trips     map[uuid.UUID]domain.Trip
	employees map[uuid.UUID]domain.Employee
	bookings  map[uuid.UUID]domain.Booking

	// failBookingWrite, when set, is returned by every booking write.
	failBookingWrite error
	// afterRead, when set, runs once right after a booking is read outside a
	// transaction. Tests use it to interleave a competing change.
	afterRead func()
}

var (
	_ repo.TxRunner     = (*memStore)(nil)
	_ repo.TripRepo     = (*memTrips)(nil)
	_ repo.EmployeeRepo = (*memEmployees)(nil)
	_ repo.BookingRepo  = (*memBookings)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		trips:     make(map[uuid.UUID]domain.Trip),
		employees: make(map[uuid.UUID]domain.Employee),
		bookings:  make(map[uuid.UUID]domain.Booking),
	}
}

// addTrip seeds a trip with every seat free.
func (s *memStore) addTrip(t *testing.T, capacity int) domain.Trip {
	t.Helper()
	trip := domain.Trip{
		ID:             uuid.New(),
		Destination:    fmt.Sprintf("Destination %d", capacity),
		Date:           today.AddDate(0, 1, 0),
		Status:         domain.TripPlanned,
		Capacity:       capacity,
		AvailableSeats: capacity,
	}
	s.mu.Lock()
	s.trips[trip.ID] = trip
	s.mu.Unlock()
	return trip
}

func (s *memStore) addEmployee(t *testing.T) domain.Employee {
	t.Helper()
	id := uuid.New()
	e := domain.Employee{
		ID:       id,
		Username: "user-" + id.String()[:8],
		Name:     "Test",
		Surname:  "Employee",
		Email:    id.String()[:8] + "@example.com",
	}
	s.mu.Lock()
	s.employees[e.ID] = e
	s.mu.Unlock()
	return e
}

func (s *memStore) removeTrip(id uuid.UUID) {
	s.mu.Lock()
	delete(s.trips, id)
	s.mu.Unlock()
}

func (s *memStore) trip(t *testing.T, id uuid.UUID) domain.Trip {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	trip, ok := s.trips[id]
	require.True(t, ok, "trip %s missing from store", id)
	return trip
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// requireSeatInvariant checks that every trip's counter equals its capacity
// minus the seats held by the bookings that reference it.
func (s *memStore) requireSeatInvariant(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	held := make(map[uuid.UUID]int)
	for _, b := range s.bookings {
		held[b.TripID] += b.SeatCount
	}
	for id, trip := range s.trips {
		require.GreaterOrEqual(t, trip.AvailableSeats, 0, "trip %s", id)
		require.Equal(t, trip.Capacity-held[id], trip.AvailableSeats, "trip %s", id)
	}
}

// readRepo is the non-transactional booking repo the service reads through.
func (s *memStore) readRepo() repo.BookingRepo {
	return &memBookings{tx: s.newTx(), direct: true}
}

func (s *memStore) InTx(_ context.Context, fn func(repo.Stores) error) error {
	tx := s.newTx()
	if err := fn(repo.Stores{
		Trips:     &memTrips{tx: tx},
		Employees: &memEmployees{tx: tx},
		Bookings:  &memBookings{tx: tx},
	}); err != nil {
		return err
	}
	return tx.commit()
}

// ---- transaction overlay ---------------------------------------------------

type memTx struct {
	s        *memStore
	trips    map[uuid.UUID]domain.Trip
	bookings map[uuid.UUID]domain.Booking
	deleted  map[uuid.UUID]bool
}

func (s *memStore) newTx() *memTx {
	return &memTx{
		s:        s,
		trips:    make(map[uuid.UUID]domain.Trip),
		bookings: make(map[uuid.UUID]domain.Booking),
		deleted:  make(map[uuid.UUID]bool),
	}
}

func (tx *memTx) trip(id uuid.UUID) (domain.Trip, bool) {
	if t, ok := tx.trips[id]; ok {
		return t, true
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	t, ok := tx.s.trips[id]
	return t, ok
}

func (tx *memTx) booking(id uuid.UUID) (domain.Booking, bool) {
	if tx.deleted[id] {
		return domain.Booking{}, false
	}
	if b, ok := tx.bookings[id]; ok {
		return b, true
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	b, ok := tx.s.bookings[id]
	return b, ok
}

// visibleBookings merges committed bookings with this transaction's writes.
func (tx *memTx) visibleBookings() []domain.Booking {
	tx.s.mu.Lock()
	merged := make(map[uuid.UUID]domain.Booking, len(tx.s.bookings))
	for id, b := range tx.s.bookings {
		merged[id] = b
	}
	tx.s.mu.Unlock()
	for id, b := range tx.bookings {
		merged[id] = b
	}
	out := make([]domain.Booking, 0, len(merged))
	for id, b := range merged {
		if !tx.deleted[id] {
			out = append(out, b)
		}
	}
	return out
}

// checkUnique mirrors the bookings_employee_date_key constraint.
func checkUnique(all []domain.Booking, b domain.Booking) error {
	for _, other := range all {
		if other.ID != b.ID && other.EmployeeID == b.EmployeeID && other.BookingDate.Equal(b.BookingDate) {
			return fmt.Errorf("%w: employee already has a booking on that date", domain.ErrConflict)
		}
	}
	return nil
}

func (tx *memTx) commit() error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	committed := make([]domain.Booking, 0, len(s.bookings))
	for id, b := range s.bookings {
		if _, overwritten := tx.bookings[id]; !overwritten && !tx.deleted[id] {
			committed = append(committed, b)
		}
	}
	for _, b := range tx.bookings {
		if err := checkUnique(committed, b); err != nil {
			return err
		}
	}

	for id, t := range tx.trips {
		s.trips[id] = t
	}
	for id := range tx.deleted {
		delete(s.bookings, id)
	}
	for id, b := range tx.bookings {
		s.bookings[id] = b
	}
	return nil
}

// ---- trips -----------------------------------------------------------------

type memTrips struct{ tx *memTx }

func (m *memTrips) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.ID = uuid.New()
	trip.AvailableSeats = trip.Capacity
	m.tx.trips[trip.ID] = trip
	return trip, nil
}

func (m *memTrips) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	t, ok := m.tx.trip(id)
	if !ok {
		return domain.Trip{}, fmt.Errorf("memTrips.GetByID: %w", domain.ErrNotFound)
	}
	return t, nil
}

func (m *memTrips) ListPaged(_ context.Context, _ domain.PaginationParams) ([]domain.Trip, int64, error) {
	return nil, 0, fmt.Errorf("memTrips.ListPaged: not supported")
}

func (m *memTrips) LockByIDs(_ context.Context, ids ...uuid.UUID) (map[uuid.UUID]domain.Trip, error) {
	out := make(map[uuid.UUID]domain.Trip, len(ids))
	for _, id := range ids {
		if t, ok := m.tx.trip(id); ok {
			out[id] = t
		}
	}
	return out, nil
}

func (m *memTrips) SetAvailableSeats(_ context.Context, id uuid.UUID, seats int) (domain.Trip, error) {
	t, ok := m.tx.trip(id)
	if !ok {
		return domain.Trip{}, fmt.Errorf("memTrips.SetAvailableSeats: %w", domain.ErrNotFound)
	}
	if seats < 0 || seats > t.Capacity {
		return domain.Trip{}, fmt.Errorf("memTrips.SetAvailableSeats: %w: %d outside 0..%d",
			domain.ErrCapacityExceeded, seats, t.Capacity)
	}
	t.AvailableSeats = seats
	m.tx.trips[id] = t
	return t, nil
}

// ---- employees -------------------------------------------------------------

type memEmployees struct{ tx *memTx }

func (m *memEmployees) Create(_ context.Context, e domain.Employee) (domain.Employee, error) {
	return domain.Employee{}, fmt.Errorf("memEmployees.Create: not supported")
}

func (m *memEmployees) GetByID(_ context.Context, id uuid.UUID) (domain.Employee, error) {
	m.tx.s.mu.Lock()
	defer m.tx.s.mu.Unlock()
	e, ok := m.tx.s.employees[id]
	if !ok {
		return domain.Employee{}, fmt.Errorf("memEmployees.GetByID: %w", domain.ErrNotFound)
	}
	return e, nil
}

func (m *memEmployees) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	m.tx.s.mu.Lock()
	defer m.tx.s.mu.Unlock()
	_, ok := m.tx.s.employees[id]
	return ok, nil
}

// ---- bookings --------------------------------------------------------------

type memBookings struct {
	tx *memTx
	// direct marks the repo handed to the service for plain reads.
	direct bool
}

func (m *memBookings) failure(op string) error {
	m.tx.s.mu.Lock()
	defer m.tx.s.mu.Unlock()
	if m.tx.s.failBookingWrite != nil {
		return fmt.Errorf("memBookings.%s: %w", op, m.tx.s.failBookingWrite)
	}
	return nil
}

func (m *memBookings) Create(_ context.Context, b domain.Booking) (domain.Booking, error) {
	if err := m.failure("Create"); err != nil {
		return domain.Booking{}, err
	}
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	if err := checkUnique(m.tx.visibleBookings(), b); err != nil {
		return domain.Booking{}, fmt.Errorf("memBookings.Create: %w", err)
	}
	m.tx.bookings[b.ID] = b
	return b, nil
}

func (m *memBookings) GetByID(_ context.Context, id uuid.UUID) (domain.Booking, error) {
	b, ok := m.tx.booking(id)
	if !ok {
		return domain.Booking{}, fmt.Errorf("memBookings.GetByID: %w", domain.ErrNotFound)
	}
	if m.direct {
		m.tx.s.mu.Lock()
		hook := m.tx.s.afterRead
		m.tx.s.afterRead = nil
		m.tx.s.mu.Unlock()
		if hook != nil {
			hook()
		}
	}
	return b, nil
}

func (m *memBookings) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	b, ok := m.tx.booking(id)
	if !ok {
		return domain.Booking{}, fmt.Errorf("memBookings.GetByIDForUpdate: %w", domain.ErrNotFound)
	}
	return b, nil
}

func (m *memBookings) List(_ context.Context) ([]domain.Booking, error) {
	all := m.tx.visibleBookings()
	slices.SortFunc(all, func(a, b domain.Booking) int { return b.BookingDate.Compare(a.BookingDate) })
	return all, nil
}

func (m *memBookings) ListPaged(_ context.Context, p domain.PaginationParams, sort domain.SortParams) ([]domain.Booking, int64, error) {
	all := m.tx.visibleBookings()
	slices.SortFunc(all, func(a, b domain.Booking) int {
		var c int
		switch sort.Field {
		case "seat_count":
			c = cmp.Compare(a.SeatCount, b.SeatCount)
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = a.BookingDate.Compare(b.BookingDate)
		}
		if sort.Desc {
			c = -c
		}
		return c
	})
	total := int64(len(all))
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end], total, nil
}

func (m *memBookings) Update(_ context.Context, b domain.Booking) (domain.Booking, error) {
	if err := m.failure("Update"); err != nil {
		return domain.Booking{}, err
	}
	existing, ok := m.tx.booking(b.ID)
	if !ok {
		return domain.Booking{}, fmt.Errorf("memBookings.Update: %w", domain.ErrNotFound)
	}
	if err := checkUnique(m.tx.visibleBookings(), b); err != nil {
		return domain.Booking{}, fmt.Errorf("memBookings.Update: %w", err)
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = time.Now()
	m.tx.bookings[b.ID] = b
	return b, nil
}

func (m *memBookings) Delete(_ context.Context, id uuid.UUID) error {
	if err := m.failure("Delete"); err != nil {
		return err
	}
	if _, ok := m.tx.booking(id); !ok {
		return fmt.Errorf("memBookings.Delete: %w", domain.ErrNotFound)
	}
	delete(m.tx.bookings, id)
	m.tx.deleted[id] = true
	return nil
}
