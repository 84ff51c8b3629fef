package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Stores bundles one repo per resource, all bound to the same connection
// or transaction.
type Stores struct {
	Trips     TripRepo
	Employees EmployeeRepo
	Bookings  BookingRepo
}

// NewStores builds a Stores backed by db. In production pass *pgxpool.Pool;
// inside a transaction pass the pgx.Tx.
func NewStores(db db) Stores {
	return Stores{
		Trips:     NewTripRepo(db),
		Employees: NewEmployeeRepo(db),
		Bookings:  NewBookingRepo(db),
	}
}

// TxRunner runs fn inside a single database transaction. If fn returns an
// error the transaction is rolled back and the error is returned unchanged;
// otherwise the transaction is committed.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Stores) error) error
}

// beginner is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx (the latter
// opens a savepoint, which keeps rolled-back integration tests isolated).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgTxRunner struct {
	db beginner
}

// NewTxRunner constructs a TxRunner that opens transactions on db.
func NewTxRunner(db beginner) TxRunner {
	return &pgTxRunner{db: db}
}

func (r *pgTxRunner) InTx(ctx context.Context, fn func(Stores) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(NewStores(tx))
	})
}
