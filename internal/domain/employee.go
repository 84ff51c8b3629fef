package domain

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the person a booking is made for.
// Username and Email are unique across all employees.
type Employee struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
