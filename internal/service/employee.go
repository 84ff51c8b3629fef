package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-booking/backend/internal/domain"
	"github.com/pkordes/trip-booking/backend/internal/repo"
)

// EmployeeService implements business logic for Employee operations.
type EmployeeService struct {
	repo repo.EmployeeRepo
}

// NewEmployeeService constructs an EmployeeService backed by the provided EmployeeRepo.
func NewEmployeeService(r repo.EmployeeRepo) *EmployeeService {
	return &EmployeeService{repo: r}
}

// Create validates and persists a new employee.
// Returns domain.ErrValidation for missing or malformed fields and
// domain.ErrConflict if the username or email is already taken.
func (s *EmployeeService) Create(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	e.Username = strings.TrimSpace(e.Username)
	e.Name = strings.TrimSpace(e.Name)
	e.Surname = strings.TrimSpace(e.Surname)
	e.Email = strings.TrimSpace(e.Email)
	if err := validateEmployee(e); err != nil {
		return domain.Employee{}, err
	}

	result, err := s.repo.Create(ctx, e)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("service.EmployeeService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single employee by ID.
// Returns a *domain.NotFoundError if it does not exist.
func (s *EmployeeService) GetByID(ctx context.Context, id uuid.UUID) (domain.Employee, error) {
	result, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		err = &domain.NotFoundError{Entity: "employee", ID: id}
	}
	if err != nil {
		return domain.Employee{}, fmt.Errorf("service.EmployeeService.GetByID: %w", err)
	}
	return result, nil
}

func validateEmployee(e domain.Employee) error {
	switch {
	case e.Username == "":
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	case e.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case e.Surname == "":
		return fmt.Errorf("%w: surname is required", domain.ErrValidation)
	}
	addr, err := mail.ParseAddress(e.Email)
	if err != nil || addr.Address != e.Email {
		return fmt.Errorf("%w: email %q is not a valid address", domain.ErrValidation, e.Email)
	}
	return nil
}
