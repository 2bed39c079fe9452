package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
	"github.com/openclinic/vaccine-scheduler/internal/domain/providers"
	"github.com/openclinic/vaccine-scheduler/internal/domain/repositories"
	"github.com/openclinic/vaccine-scheduler/internal/infrastructure/observability"
	apperrors "github.com/openclinic/vaccine-scheduler/pkg/errors"
)

// BookingService coordinates reservations and cancellations across the
// availability registry, the dose inventory and the appointment ledger. The
// three stores are not covered by one transaction; consistency comes from
// the call ordering plus explicit compensation when a later step fails.
type BookingService struct {
	appointments repositories.AppointmentRepository
	availability repositories.AvailabilityRepository
	vaccines     repositories.VaccineRepository
	eventBus     providers.EventBus
}

// NewBookingService creates a new booking service
func NewBookingService(
	appointments repositories.AppointmentRepository,
	availability repositories.AvailabilityRepository,
	vaccines repositories.VaccineRepository,
) *BookingService {
	return &BookingService{
		appointments: appointments,
		availability: availability,
		vaccines:     vaccines,
	}
}

// SetEventBus enables best-effort booking event publication
func (s *BookingService) SetEventBus(eventBus providers.EventBus) {
	s.eventBus = eventBus
}

// Reserve books an appointment for the patient on the given date. The slot
// claim runs first and doubles as the serialization point: once a caregiver
// is handed out, no concurrent reservation can get the same one. The dose
// debit follows; if it fails the claimed slot is restored so inventory
// exhaustion never silently eats availability.
func (s *BookingService) Reserve(ctx context.Context, patientID string, date time.Time, vaccineName string) (*entities.Appointment, error) {
	if patientID == "" {
		return nil, apperrors.NewValidationError("patient id is required")
	}
	if vaccineName == "" {
		return nil, apperrors.NewValidationError("vaccine name is required")
	}

	caregiverID, err := s.availability.ClaimAny(ctx, date)
	if err != nil {
		return nil, err
	}

	if _, err := s.vaccines.Adjust(ctx, vaccineName, -1); err != nil {
		if rerr := s.availability.Restore(ctx, date, caregiverID); rerr != nil {
			logger := observability.LoggerFromContext(ctx)
			logger.Error().
				Err(rerr).
				Str("caregiver_id", caregiverID).
				Str("date", date.Format(entities.DateFormat)).
				Msg("failed to restore claimed slot after dose debit failure")
			return nil, apperrors.NewConsistencyError("claimed slot could not be restored", rerr)
		}
		return nil, err
	}

	appointment := &entities.Appointment{
		ID:          uuid.New().String(),
		PatientID:   patientID,
		CaregiverID: caregiverID,
		VaccineName: vaccineName,
		Date:        date,
		CreatedAt:   time.Now(),
	}

	if err := s.appointments.Create(ctx, appointment); err != nil {
		// Unwind both earlier steps so the slot and the dose come back.
		logger := observability.LoggerFromContext(ctx)
		if _, cerr := s.vaccines.Adjust(ctx, vaccineName, 1); cerr != nil {
			logger.Error().
				Err(cerr).
				Str("vaccine", vaccineName).
				Msg("failed to re-credit dose after appointment insert failure")
			return nil, apperrors.NewConsistencyError("dose could not be re-credited", cerr)
		}
		if rerr := s.availability.Restore(ctx, date, caregiverID); rerr != nil {
			logger.Error().
				Err(rerr).
				Str("caregiver_id", caregiverID).
				Str("date", date.Format(entities.DateFormat)).
				Msg("failed to restore claimed slot after appointment insert failure")
			return nil, apperrors.NewConsistencyError("claimed slot could not be restored", rerr)
		}
		return nil, err
	}

	s.publish(ctx, entities.NewBookingEvent(entities.BookingEventTypeBooked, appointment))

	return appointment, nil
}

// Cancel reverses a reservation: the appointment record goes first, then the
// slot is re-opened and the dose re-credited. A failure after the record is
// gone leaves the system inconsistent, so it is reported as a consistency
// error and logged, never swallowed.
func (s *BookingService) Cancel(ctx context.Context, appointmentID string, requestedBy string) error {
	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}

	if requestedBy != "" && !appointment.Involves(requestedBy) {
		return apperrors.NewUnauthorizedError("only the patient or caregiver on an appointment may cancel it")
	}

	if _, err := s.appointments.Delete(ctx, appointmentID); err != nil {
		return err
	}

	logger := observability.LoggerFromContext(ctx)

	if err := s.availability.Restore(ctx, appointment.Date, appointment.CaregiverID); err != nil {
		logger.Error().
			Err(err).
			Str("appointment_id", appointmentID).
			Str("caregiver_id", appointment.CaregiverID).
			Msg("appointment removed but slot not restored")
		return apperrors.NewConsistencyError("cancelled appointment's slot could not be restored", err)
	}

	if _, err := s.vaccines.Adjust(ctx, appointment.VaccineName, 1); err != nil {
		logger.Error().
			Err(err).
			Str("appointment_id", appointmentID).
			Str("vaccine", appointment.VaccineName).
			Msg("appointment removed but dose not re-credited")
		return apperrors.NewConsistencyError("cancelled appointment's dose could not be re-credited", err)
	}

	s.publish(ctx, entities.NewBookingEvent(entities.BookingEventTypeCancelled, appointment))

	return nil
}

// AddDoses adds doses to a vaccine, creating it on first upload. The debit
// path never pre-checks the count; Adjust's own guard is the single source
// of truth for whether inventory suffices.
func (s *BookingService) AddDoses(ctx context.Context, vaccineName string, count int) (int, error) {
	if vaccineName == "" {
		return 0, apperrors.NewValidationError("vaccine name is required")
	}
	if count < 0 {
		return 0, apperrors.NewValidationError("dose count must not be negative")
	}

	if _, err := s.vaccines.GetByName(ctx, vaccineName); err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return 0, err
		}
		vaccine, uerr := s.vaccines.Upsert(ctx, vaccineName, count)
		if uerr == nil {
			s.publish(ctx, entities.NewInventoryEvent(vaccineName))
			return vaccine.AvailableDoses, nil
		}
		// Lost the creation race; fall through to the adjust path.
		if !apperrors.IsType(uerr, apperrors.ErrorTypeConflict) {
			return 0, uerr
		}
	}

	doses, err := s.vaccines.Adjust(ctx, vaccineName, count)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, entities.NewInventoryEvent(vaccineName))

	return doses, nil
}

func (s *BookingService) publish(ctx context.Context, event *entities.BookingEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, providers.EventChannelBookingUpdates, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("event_type", string(event.EventType)).
			Msg("failed to publish booking event")
		return
	}
	if event.Date != "" {
		if err := s.eventBus.Publish(ctx, providers.GetDateChannel(event.Date), event); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("event_type", string(event.EventType)).
				Msg("failed to publish booking event to date channel")
		}
	}
}
