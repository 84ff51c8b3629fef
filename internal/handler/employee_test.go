package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-booking/backend/internal/domain"
	"github.com/pkordes/trip-booking/backend/internal/handler"
)

func newEmployeeHandler(svc handler.EmployeeServicer) http.Handler {
	return handler.NewServer(nil, svc, nil).Routes()
}

func TestCreateEmployee_201(t *testing.T) {
	svc := &mockEmployeeServicer{
		create: func(_ context.Context, e domain.Employee) (domain.Employee, error) {
			e.ID = uuid.New()
			return e, nil
		},
	}
	body := jsonBody(t, map[string]any{
		"username": "jdoe",
		"name":     "Jane",
		"surname":  "Doe",
		"email":    "jane@example.com",
	})

	rec := httptest.NewRecorder()
	newEmployeeHandler(svc).ServeHTTP(rec, jsonRequest(http.MethodPost, "/employees", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp handler.Employee
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "jane@example.com", resp.Email)
	assert.NotEqual(t, uuid.Nil, resp.Id)
}

func TestCreateEmployee_422_MalformedEmail(t *testing.T) {
	body := jsonBody(t, map[string]any{
		"username": "jdoe",
		"name":     "Jane",
		"surname":  "Doe",
		"email":    "not-an-email",
	})

	rec := httptest.NewRecorder()
	newEmployeeHandler(&mockEmployeeServicer{}).ServeHTTP(rec, jsonRequest(http.MethodPost, "/employees", body))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateEmployee_409_Duplicate(t *testing.T) {
	svc := &mockEmployeeServicer{
		create: func(_ context.Context, _ domain.Employee) (domain.Employee, error) {
			return domain.Employee{}, fmt.Errorf("service.EmployeeService.Create: %w: username already taken", domain.ErrConflict)
		},
	}
	body := jsonBody(t, map[string]any{
		"username": "jdoe",
		"name":     "Jane",
		"surname":  "Doe",
		"email":    "jane@example.com",
	})

	rec := httptest.NewRecorder()
	newEmployeeHandler(svc).ServeHTTP(rec, jsonRequest(http.MethodPost, "/employees", body))

	assert.Equal(t, http.StatusConflict, rec.Code)
	detail := decodeError(t, rec.Body)
	assert.Equal(t, "conflict", detail.Code)
	assert.Equal(t, "username already taken", detail.Message)
}

func TestGetEmployee_404(t *testing.T) {
	id := uuid.New()
	svc := &mockEmployeeServicer{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Employee, error) {
			return domain.Employee{}, &domain.NotFoundError{Entity: "employee", ID: id}
		},
	}

	rec := httptest.NewRecorder()
	newEmployeeHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/employees/"+id.String(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeError(t, rec.Body).Message, "employee")
}
