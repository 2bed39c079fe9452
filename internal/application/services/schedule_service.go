package services

import (
	"context"
	"time"

	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
	"github.com/openclinic/vaccine-scheduler/internal/domain/repositories"
)

// DaySchedule is the read model for a date: the caregivers still open for
// booking and the current dose counts across all vaccines.
type DaySchedule struct {
	Date       string              `json:"date"`
	Caregivers []string            `json:"caregivers"`
	Vaccines   []*entities.Vaccine `json:"vaccines"`
}

// ScheduleService serves the read-only queries over the three ledgers
type ScheduleService struct {
	availability repositories.AvailabilityRepository
	vaccines     repositories.VaccineRepository
	appointments repositories.AppointmentRepository
}

// NewScheduleService creates a new schedule service
func NewScheduleService(
	availability repositories.AvailabilityRepository,
	vaccines repositories.VaccineRepository,
	appointments repositories.AppointmentRepository,
) *ScheduleService {
	return &ScheduleService{
		availability: availability,
		vaccines:     vaccines,
		appointments: appointments,
	}
}

// SearchSchedule returns the open caregivers for a date alongside current
// vaccine dose counts
func (s *ScheduleService) SearchSchedule(ctx context.Context, date time.Time) (*DaySchedule, error) {
	slots, err := s.availability.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	vaccines, err := s.vaccines.List(ctx)
	if err != nil {
		return nil, err
	}

	caregivers := make([]string, 0, len(slots))
	for _, slot := range slots {
		caregivers = append(caregivers, slot.CaregiverID)
	}

	return &DaySchedule{
		Date:       date.Format(entities.DateFormat),
		Caregivers: caregivers,
		Vaccines:   vaccines,
	}, nil
}

// ListAppointments returns the appointments the username participates in,
// as patient or caregiver, ordered by id ascending
func (s *ScheduleService) ListAppointments(ctx context.Context, username string) ([]*entities.Appointment, error) {
	return s.appointments.ListByParticipant(ctx, username)
}

// GetVaccine returns the current inventory record for a vaccine
func (s *ScheduleService) GetVaccine(ctx context.Context, name string) (*entities.Vaccine, error) {
	return s.vaccines.GetByName(ctx, name)
}

// PublishAvailability opens a slot for the caregiver on the given date
func (s *ScheduleService) PublishAvailability(ctx context.Context, date time.Time, caregiverID string) error {
	return s.availability.Publish(ctx, date, caregiverID)
}
