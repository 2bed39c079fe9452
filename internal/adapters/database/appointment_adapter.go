package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
	"github.com/openclinic/vaccine-scheduler/internal/domain/repositories"
	"github.com/openclinic/vaccine-scheduler/internal/infrastructure/clients/postgres"
	apperrors "github.com/openclinic/vaccine-scheduler/pkg/errors"
)

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create stores a new appointment record
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	record := goqu.Record{
		"id":               appointment.ID,
		"patient_id":       appointment.PatientID,
		"caregiver_id":     appointment.CaregiverID,
		"vaccine_name":     appointment.VaccineName,
		"appointment_date": appointment.Date,
		"created_at":       appointment.CreatedAt,
	}

	query, args, err := a.db.Insert("appointments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("appointment %s already exists", appointment.ID))
		}
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "caregiver_id", "vaccine_name", "appointment_date", "created_at",
	).From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointment := &entities.Appointment{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.CaregiverID,
		&appointment.VaccineName,
		&appointment.Date,
		&appointment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}

	return appointment, nil
}

// Delete removes an appointment and returns the removed record
func (a *AppointmentAdapter) Delete(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Delete("appointments").
		Where(goqu.Ex{"id": id}).
		Returning("id", "patient_id", "caregiver_id", "vaccine_name", "appointment_date", "created_at").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build delete query", err)
	}

	appointment := &entities.Appointment{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.CaregiverID,
		&appointment.VaccineName,
		&appointment.Date,
		&appointment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to delete appointment", err)
	}

	return appointment, nil
}

// ListByParticipant retrieves appointments where the username is the patient
// or the caregiver, ordered by id ascending
func (a *AppointmentAdapter) ListByParticipant(ctx context.Context, username string) ([]*entities.Appointment, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "caregiver_id", "vaccine_name", "appointment_date", "created_at",
	).From("appointments").
		Where(goqu.Or(
			goqu.Ex{"patient_id": username},
			goqu.Ex{"caregiver_id": username},
		)).
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment := &entities.Appointment{}
		if err := rows.Scan(
			&appointment.ID,
			&appointment.PatientID,
			&appointment.CaregiverID,
			&appointment.VaccineName,
			&appointment.Date,
			&appointment.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate appointments", err)
	}

	return appointments, nil
}
