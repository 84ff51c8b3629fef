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

// BookingRepo defines the persistence operations for Bookings.
type BookingRepo interface {
	// Create inserts a new booking and returns the persisted record.
	// Returns domain.ErrConflict if the employee already has a booking on
	// that date.
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// GetByID retrieves a single booking.
	// Returns domain.ErrNotFound if no booking with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)

	// GetByIDForUpdate is GetByID plus a row lock held until the enclosing
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Booking, error)

	// List returns every booking, newest booking date first.
	List(ctx context.Context) ([]domain.Booking, error)

	// ListPaged returns one page of bookings in the requested order and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams, sort domain.SortParams) ([]domain.Booking, int64, error)

	// Update overwrites every mutable field of a booking, including its trip
	// and employee references. Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// Delete removes a booking by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgBookingRepo is the Postgres implementation of BookingRepo.
type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `id, employee_id, trip_id, seat_count, booking_date, notes, created_at, updated_at`

// bookingOrderColumns whitelists the columns ListPaged may interpolate into ORDER BY.
var bookingOrderColumns = map[string]string{
	"booking_date": "booking_date",
	"seat_count":   "seat_count",
	"created_at":   "created_at",
}

func (r *pgBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings (employee_id, trip_id, seat_count, booking_date, notes)
		VALUES (@employee_id, @trip_id, @seat_count, @booking_date, @notes)
		RETURNING ` + bookingColumns

	result, err := scanBooking(r.db.QueryRow(ctx, q, bookingArgs(b)))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = @id`

	result, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = @id FOR UPDATE`

	result, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByIDForUpdate: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) List(ctx context.Context) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings ORDER BY booking_date DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.List: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.List: %w", err)
	}
	return bookings, nil
}

// ListPaged interpolates the sort column into the query; only names from
// bookingOrderColumns ever reach the SQL text.
func (r *pgBookingRepo) ListPaged(ctx context.Context, p domain.PaginationParams, sort domain.SortParams) ([]domain.Booking, int64, error) {
	col, ok := bookingOrderColumns[sort.Field]
	if !ok {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListPaged: %w: cannot sort by %q", domain.ErrValidation, sort.Field)
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListPaged: count: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		ORDER BY %s %s, id
		LIMIT @limit OFFSET @offset`, bookingColumns, col, dir)

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListPaged: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListPaged: %w", err)
	}
	return bookings, total, nil
}

func (r *pgBookingRepo) Update(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET employee_id  = @employee_id,
		    trip_id      = @trip_id,
		    seat_count   = @seat_count,
		    booking_date = @booking_date,
		    notes        = @notes,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + bookingColumns

	args := bookingArgs(b)
	args["id"] = b.ID

	result, err := scanBooking(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Update: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM bookings WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.BookingRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BookingRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func bookingArgs(b domain.Booking) pgx.NamedArgs {
	return pgx.NamedArgs{
		"employee_id":  b.EmployeeID,
		"trip_id":      b.TripID,
		"seat_count":   b.SeatCount,
		"booking_date": b.BookingDate,
		"notes":        b.Notes,
	}
}

// collectBookings drains rows and always returns a non-nil slice.
func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return bookings, nil
}

// scanBooking maps a single database row into a domain.Booking.
func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b          domain.Booking
		id         pgtype.UUID
		employeeID pgtype.UUID
		tripID     pgtype.UUID
		date       pgtype.Date
	)
	err := s.Scan(&id, &employeeID, &tripID, &b.SeatCount, &date, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}
	b.ID = uuid.UUID(id.Bytes)
	b.EmployeeID = uuid.UUID(employeeID.Bytes)
	b.TripID = uuid.UUID(tripID.Bytes)
	b.BookingDate = date.Time
	return b, nil
}
