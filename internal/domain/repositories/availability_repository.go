package repositories

import (
	"context"
	"time"

	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
)

// AvailabilityRepository defines the interface for open caregiver slots.
// Publish, ClaimAny and Restore must be atomic with respect to each other
// for the same date: two concurrent claims must never be handed the same
// caregiver.
type AvailabilityRepository interface {
	// Publish inserts an open slot for (date, caregiver). It fails with a
	// conflict error if the caregiver already published that date.
	Publish(ctx context.Context, date time.Time, caregiverID string) error

	// ClaimAny atomically selects and removes exactly one open slot for the
	// date and returns the chosen caregiver. Among multiple open slots the
	// lowest caregiver id wins, for reproducibility. Fails with a no
	// availability error if the date has no open slot.
	ClaimAny(ctx context.Context, date time.Time) (string, error)

	// Restore re-inserts a previously claimed slot. A conflict means the
	// slot already exists, which under correct usage indicates an upstream
	// consistency problem and is surfaced, not ignored.
	Restore(ctx context.Context, date time.Time, caregiverID string) error

	// ListByDate retrieves the open slots for a date ordered by caregiver id
	ListByDate(ctx context.Context, date time.Time) ([]*entities.AvailabilitySlot, error)
}
