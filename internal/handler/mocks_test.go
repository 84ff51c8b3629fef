package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-booking/backend/internal/domain"
	"github.com/pkordes/trip-booking/backend/internal/handler"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, p)
}

// mockEmployeeServicer is a test double for handler.EmployeeServicer.
type mockEmployeeServicer struct {
	create  func(ctx context.Context, e domain.Employee) (domain.Employee, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Employee, error)
}

func (m *mockEmployeeServicer) Create(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	return m.create(ctx, e)
}
func (m *mockEmployeeServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Employee, error) {
	return m.getByID(ctx, id)
}

// mockBookingServicer is a test double for handler.BookingServicer.
type mockBookingServicer struct {
	create    func(ctx context.Context, cmd domain.BookingCommand) (domain.Booking, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	list      func(ctx context.Context) ([]domain.Booking, error)
	listPaged func(ctx context.Context, p domain.PaginationParams, sort domain.SortParams) ([]domain.Booking, int64, error)
	update    func(ctx context.Context, id uuid.UUID, cmd domain.BookingCommand) (domain.Booking, error)
	cancel    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockBookingServicer) Create(ctx context.Context, cmd domain.BookingCommand) (domain.Booking, error) {
	return m.create(ctx, cmd)
}
func (m *mockBookingServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingServicer) List(ctx context.Context) ([]domain.Booking, error) {
	return m.list(ctx)
}
func (m *mockBookingServicer) ListPaged(ctx context.Context, p domain.PaginationParams, sort domain.SortParams) ([]domain.Booking, int64, error) {
	return m.listPaged(ctx, p, sort)
}
func (m *mockBookingServicer) Update(ctx context.Context, id uuid.UUID, cmd domain.BookingCommand) (domain.Booking, error) {
	return m.update(ctx, id, cmd)
}
func (m *mockBookingServicer) Cancel(ctx context.Context, id uuid.UUID) error {
	return m.cancel(ctx, id)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.TripServicer     = (*mockTripServicer)(nil)
	_ handler.EmployeeServicer = (*mockEmployeeServicer)(nil)
	_ handler.BookingServicer  = (*mockBookingServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}

func jsonRequest(method, target string, body *bytes.Buffer) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}
