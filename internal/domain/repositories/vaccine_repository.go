package repositories

import (
	"context"

	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
)

// VaccineRepository defines the interface for the vaccine dose inventory.
// Implementations must make Adjust atomic per vaccine name so the
// non-negative dose invariant never transiently breaks under concurrency.
type VaccineRepository interface {
	// Upsert creates a new vaccine with an initial dose count. It fails with
	// a conflict error if the vaccine already exists; callers adding doses to
	// an existing vaccine must use Adjust.
	Upsert(ctx context.Context, name string, initialDoses int) (*entities.Vaccine, error)

	// Adjust atomically applies available_doses += delta and returns the
	// resulting count. A negative delta that would take the count below zero
	// fails with an insufficient stock error and leaves the count unchanged.
	Adjust(ctx context.Context, name string, delta int) (int, error)

	// GetByName retrieves a vaccine by name
	GetByName(ctx context.Context, name string) (*entities.Vaccine, error)

	// List retrieves all vaccines ordered by name
	List(ctx context.Context) ([]*entities.Vaccine, error)
}
