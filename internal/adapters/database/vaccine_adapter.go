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

// VaccineAdapter implements the VaccineRepository interface
type VaccineAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewVaccineAdapter creates a new vaccine adapter
func NewVaccineAdapter(client *postgres.Client) repositories.VaccineRepository {
	return &VaccineAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Upsert creates a new vaccine with an initial dose count
func (a *VaccineAdapter) Upsert(ctx context.Context, name string, initialDoses int) (*entities.Vaccine, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("vaccine name is required")
	}
	if initialDoses < 0 {
		return nil, apperrors.NewValidationError("initial dose count must not be negative")
	}

	now := time.Now()
	record := goqu.Record{
		"name":            name,
		"available_doses": initialDoses,
		"created_at":      now,
		"updated_at":      now,
	}

	query, args, err := a.db.Insert("vaccines").Rows(record).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("vaccine %s already exists", name))
		}
		return nil, apperrors.NewInternalError("failed to create vaccine", err)
	}

	return &entities.Vaccine{
		Name:           name,
		AvailableDoses: initialDoses,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Adjust atomically applies available_doses += delta and returns the result.
// The guard in the WHERE clause makes the statement a no-op when a debit
// would take the count negative, so the invariant holds without a
// read-modify-write cycle.
func (a *VaccineAdapter) Adjust(ctx context.Context, name string, delta int) (int, error) {
	query, args, err := a.db.Update("vaccines").
		Set(goqu.Record{
			"available_doses": goqu.L("available_doses + ?", delta),
			"updated_at":      time.Now(),
		}).
		Where(
			goqu.Ex{"name": name},
			goqu.L("available_doses + ? >= 0", delta),
		).
		Returning("available_doses").
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build adjust query", err)
	}

	var doses int
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&doses)
	if err == sql.ErrNoRows {
		// Either the vaccine is unknown or the guard rejected the debit.
		if _, gerr := a.GetByName(ctx, name); gerr != nil {
			return 0, gerr
		}
		return 0, apperrors.NewInsufficientStockError(fmt.Sprintf("not enough doses of %s", name))
	}
	if err != nil {
		return 0, apperrors.NewInternalError("failed to adjust doses", err)
	}

	return doses, nil
}

// GetByName retrieves a vaccine by name
func (a *VaccineAdapter) GetByName(ctx context.Context, name string) (*entities.Vaccine, error) {
	query, args, err := a.db.Select(
		"name", "available_doses", "created_at", "updated_at",
	).From("vaccines").
		Where(goqu.Ex{"name": name}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	vaccine := &entities.Vaccine{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&vaccine.Name,
		&vaccine.AvailableDoses,
		&vaccine.CreatedAt,
		&vaccine.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("vaccine %s not found", name))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get vaccine", err)
	}

	return vaccine, nil
}

// List retrieves all vaccines ordered by name
func (a *VaccineAdapter) List(ctx context.Context) ([]*entities.Vaccine, error) {
	query, args, err := a.db.Select(
		"name", "available_doses", "created_at", "updated_at",
	).From("vaccines").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list vaccines", err)
	}
	defer rows.Close()

	var vaccines []*entities.Vaccine
	for rows.Next() {
		vaccine := &entities.Vaccine{}
		if err := rows.Scan(
			&vaccine.Name,
			&vaccine.AvailableDoses,
			&vaccine.CreatedAt,
			&vaccine.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan vaccine", err)
		}
		vaccines = append(vaccines, vaccine)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate vaccines", err)
	}

	return vaccines, nil
}
