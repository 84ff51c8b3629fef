package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-booking/backend/internal/domain"
	"github.com/pkordes/trip-booking/backend/internal/repo"
	"github.com/pkordes/trip-booking/backend/testutil"
)

// newTestTx opens a transaction against the test database. The transaction is
// rolled back when the test finishes, giving free per-test isolation.
//
// Requires TEST_DATABASE_URL; the test is skipped otherwise.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test, so no cleanup SQL needed.
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// newTestStores returns all repos bound to one rolled-back transaction.
func newTestStores(t *testing.T) repo.Stores {
	t.Helper()
	return repo.NewStores(newTestTx(t))
}

func tripFixture() domain.Trip {
	return domain.Trip{
		Destination: "Lisbon",
		Date:        time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		Status:      domain.TripPlanned,
		Capacity:    5,
	}
}

func mustCreateTrip(t *testing.T, r repo.TripRepo, capacity int) domain.Trip {
	t.Helper()
	trip := tripFixture()
	trip.Capacity = capacity
	created, err := r.Create(context.Background(), trip)
	require.NoError(t, err, "create trip")
	return created
}

func mustCreateEmployee(t *testing.T, r repo.EmployeeRepo) domain.Employee {
	t.Helper()
	suffix := uuid.NewString()[:8]
	created, err := r.Create(context.Background(), domain.Employee{
		Username: "mrossi-" + suffix,
		Name:     "Mario",
		Surname:  "Rossi",
		Email:    fmt.Sprintf("mario.rossi+%s@example.com", suffix),
	})
	require.NoError(t, err, "create employee")
	return created
}
