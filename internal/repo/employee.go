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

// EmployeeRepo defines the persistence operations for Employees.
type EmployeeRepo interface {
	// Create inserts a new employee. Returns domain.ErrConflict when the
	// username or email is already in use.
	Create(ctx context.Context, e domain.Employee) (domain.Employee, error)

	// GetByID retrieves a single employee.
	// Returns domain.ErrNotFound if no employee with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Employee, error)

	// Exists reports whether an employee with the given ID exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// pgEmployeeRepo is the Postgres implementation of EmployeeRepo.
type pgEmployeeRepo struct {
	db db
}

// NewEmployeeRepo constructs an EmployeeRepo backed by the provided db connection.
func NewEmployeeRepo(db db) EmployeeRepo {
	return &pgEmployeeRepo{db: db}
}

const employeeColumns = `id, username, name, surname, email, created_at, updated_at`

func (r *pgEmployeeRepo) Create(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	const q = `
		INSERT INTO employees (username, name, surname, email)
		VALUES (@username, @name, @surname, @email)
		RETURNING ` + employeeColumns

	args := pgx.NamedArgs{
		"username": e.Username,
		"name":     e.Name,
		"surname":  e.Surname,
		"email":    e.Email,
	}

	result, err := scanEmployee(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Employee{}, fmt.Errorf("repo.EmployeeRepo.Create: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgEmployeeRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Employee, error) {
	const q = `SELECT ` + employeeColumns + ` FROM employees WHERE id = @id`

	result, err := scanEmployee(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Employee{}, fmt.Errorf("repo.EmployeeRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgEmployeeRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM employees WHERE id = @id)`

	var ok bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&ok); err != nil {
		return false, fmt.Errorf("repo.EmployeeRepo.Exists: %w", err)
	}
	return ok, nil
}

func scanEmployee(s scanner) (domain.Employee, error) {
	var (
		e  domain.Employee
		id pgtype.UUID
	)
	err := s.Scan(&id, &e.Username, &e.Name, &e.Surname, &e.Email, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Employee{}, domain.ErrNotFound
		}
		return domain.Employee{}, err
	}
	e.ID = uuid.UUID(id.Bytes)
	return e, nil
}
