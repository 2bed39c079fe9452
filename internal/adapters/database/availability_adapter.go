package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
	"github.com/openclinic/vaccine-scheduler/internal/domain/repositories"
	"github.com/openclinic/vaccine-scheduler/internal/infrastructure/clients/postgres"
	apperrors "github.com/openclinic/vaccine-scheduler/pkg/errors"
)

// claimQuery removes exactly one open slot for a date and returns the chosen
// caregiver. The subselect picks the lowest caregiver id; SKIP LOCKED makes
// concurrent claims for the same date land on different rows instead of
// blocking or double-claiming.
const claimQuery = `
DELETE FROM availabilities
WHERE ctid = (
    SELECT ctid FROM availabilities
    WHERE slot_date = $1
    ORDER BY caregiver_id
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING caregiver_id`

// AvailabilityAdapter implements the AvailabilityRepository interface
type AvailabilityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAvailabilityAdapter creates a new availability adapter
func NewAvailabilityAdapter(client *postgres.Client) repositories.AvailabilityRepository {
	return &AvailabilityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Publish inserts an open slot for (date, caregiver)
func (a *AvailabilityAdapter) Publish(ctx context.Context, date time.Time, caregiverID string) error {
	return a.insertSlot(ctx, date, caregiverID)
}

// Restore re-inserts a previously claimed slot
func (a *AvailabilityAdapter) Restore(ctx context.Context, date time.Time, caregiverID string) error {
	return a.insertSlot(ctx, date, caregiverID)
}

func (a *AvailabilityAdapter) insertSlot(ctx context.Context, date time.Time, caregiverID string) error {
	if caregiverID == "" {
		return apperrors.NewValidationError("caregiver id is required")
	}

	record := goqu.Record{
		"slot_date":    date,
		"caregiver_id": caregiverID,
		"created_at":   time.Now(),
	}

	query, args, err := a.db.Insert("availabilities").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf(
				"caregiver %s already has a slot on %s", caregiverID, date.Format(entities.DateFormat)))
		}
		return apperrors.NewInternalError("failed to insert availability slot", err)
	}

	return nil
}

// ClaimAny atomically selects and removes one open slot for the date
func (a *AvailabilityAdapter) ClaimAny(ctx context.Context, date time.Time) (string, error) {
	var caregiverID string
	err := a.client.DB().QueryRowContext(ctx, claimQuery, date).Scan(&caregiverID)
	if err == sql.ErrNoRows {
		return "", apperrors.NewNoAvailabilityError(fmt.Sprintf(
			"no caregiver is available on %s", date.Format(entities.DateFormat)))
	}
	if err != nil {
		return "", apperrors.NewInternalError("failed to claim availability slot", err)
	}

	return caregiverID, nil
}

// ListByDate retrieves the open slots for a date ordered by caregiver id
func (a *AvailabilityAdapter) ListByDate(ctx context.Context, date time.Time) ([]*entities.AvailabilitySlot, error) {
	query, args, err := a.db.Select(
		"slot_date", "caregiver_id", "created_at",
	).From("availabilities").
		Where(goqu.Ex{"slot_date": date}).
		Order(goqu.I("caregiver_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list availability slots", err)
	}
	defer rows.Close()

	var slots []*entities.AvailabilitySlot
	for rows.Next() {
		slot := &entities.AvailabilitySlot{}
		if err := rows.Scan(&slot.Date, &slot.CaregiverID, &slot.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan availability slot", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate availability slots", err)
	}

	return slots, nil
}
