package repositories

import (
	"context"

	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
)

// UserRepository defines the interface for patient and caregiver accounts
type UserRepository interface {
	// Create stores a new account. It fails with a conflict error if the
	// username is already taken.
	Create(ctx context.Context, user *entities.User) error

	// GetByUsername retrieves an account by username
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
}
