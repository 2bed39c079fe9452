package repositories

import (
	"context"

	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
)

// AppointmentRepository defines the interface for the appointment ledger
type AppointmentRepository interface {
	// Create stores a new appointment record. The id is minted by the caller
	// and must be unique for the record's lifetime.
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// Delete removes an appointment and returns the removed record
	Delete(ctx context.Context, id string) (*entities.Appointment, error)

	// ListByParticipant retrieves appointments where the username is the
	// patient or the caregiver, ordered by id ascending
	ListByParticipant(ctx context.Context, username string) ([]*entities.Appointment, error)
}
