package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-booking/backend/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a fake.
type TripRepo interface {
	// Create inserts a new trip with AvailableSeats equal to Capacity and
	// returns the persisted record.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListPaged returns one page of trips ordered by date, and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// LockByIDs loads the given trips and takes a row lock on each of them,
	// in ascending id order, for the rest of the enclosing transaction.
	// Missing ids are simply absent from the result.
	LockByIDs(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]domain.Trip, error)

	// SetAvailableSeats overwrites the seat counter of a trip.
	// Returns domain.ErrNotFound if the trip does not exist.
	SetAvailableSeats(ctx context.Context, id uuid.UUID, seats int) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, destination, trip_date, status, capacity, available_seats, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (destination, trip_date, status, capacity, available_seats)
		VALUES (@destination, @trip_date, @status, @capacity, @capacity)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"destination": trip.Destination,
		"trip_date":   trip.Date,
		"status":      string(trip.Status),
		"capacity":    trip.Capacity,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapWriteErr(err))
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of trips ordered by trip_date ascending.
func (r *pgTripRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}

	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		ORDER BY trip_date, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: rows: %w", err)
	}
	return trips, total, nil
}

// LockByIDs selects the trips FOR UPDATE. ORDER BY id makes Postgres take the
// row locks in a fixed order, so two transactions touching the same pair of
// trips cannot deadlock.
func (r *pgTripRepo) LockByIDs(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = ANY(@ids::uuid[])
		ORDER BY id
		FOR UPDATE`

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": keys})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.LockByIDs: %w", err)
	}
	defer rows.Close()

	trips := make(map[uuid.UUID]domain.Trip, len(ids))
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.LockByIDs: scan: %w", err)
		}
		trips[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.LockByIDs: rows: %w", err)
	}
	return trips, nil
}

// SetAvailableSeats writes the seat counter. The table's check constraint
// rejects values outside [0, capacity].
func (r *pgTripRepo) SetAvailableSeats(ctx context.Context, id uuid.UUID, seats int) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET available_seats = @seats,
		    updated_at      = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "seats": seats}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.SetAvailableSeats: %w", mapWriteErr(err))
	}
	return result, nil
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t      domain.Trip
		id     pgtype.UUID
		date   pgtype.Date
		status string
	)

	err := s.Scan(&id, &t.Destination, &date, &status, &t.Capacity, &t.AvailableSeats, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Date = date.Time
	t.Status = domain.TripStatus(status)
	return t, nil
}
