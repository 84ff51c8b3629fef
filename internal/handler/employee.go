package handler

import (
	"net/http"

	"github.com/pkordes/trip-booking/backend/internal/domain"
)

// CreateEmployee handles POST /employees.
func (s *Server) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var body CreateEmployeeRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.employees.Create(r.Context(), domain.Employee{
		Username: body.Username,
		Name:     body.Name,
		Surname:  body.Surname,
		Email:    string(body.Email),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, employeeToResponse(created))
}

// GetEmployee handles GET /employees/{id}.
func (s *Server) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	e, err := s.employees.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, employeeToResponse(e))
}

func employeeToResponse(e domain.Employee) Employee {
	return Employee{
		Id:        e.ID,
		Username:  e.Username,
		Name:      e.Name,
		Surname:   e.Surname,
		Email:     e.Email,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
