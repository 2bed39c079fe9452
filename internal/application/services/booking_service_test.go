package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/openclinic/vaccine-scheduler/internal/application/services"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
	apperrors "github.com/openclinic/vaccine-scheduler/pkg/errors"
)

// Mocks

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByParticipant(ctx context.Context, username string) ([]*entities.Appointment, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

type MockAvailabilityRepository struct {
	mock.Mock
}

func (m *MockAvailabilityRepository) Publish(ctx context.Context, date time.Time, caregiverID string) error {
	args := m.Called(ctx, date, caregiverID)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) ClaimAny(ctx context.Context, date time.Time) (string, error) {
	args := m.Called(ctx, date)
	return args.String(0), args.Error(1)
}

func (m *MockAvailabilityRepository) Restore(ctx context.Context, date time.Time, caregiverID string) error {
	args := m.Called(ctx, date, caregiverID)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) ListByDate(ctx context.Context, date time.Time) ([]*entities.AvailabilitySlot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AvailabilitySlot), args.Error(1)
}

type MockVaccineRepository struct {
	mock.Mock
}

func (m *MockVaccineRepository) Upsert(ctx context.Context, name string, initialDoses int) (*entities.Vaccine, error) {
	args := m.Called(ctx, name, initialDoses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Vaccine), args.Error(1)
}

func (m *MockVaccineRepository) Adjust(ctx context.Context, name string, delta int) (int, error) {
	args := m.Called(ctx, name, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockVaccineRepository) GetByName(ctx context.Context, name string) (*entities.Vaccine, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Vaccine), args.Error(1)
}

func (m *MockVaccineRepository) List(ctx context.Context) ([]*entities.Vaccine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Vaccine), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.BookingEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.BookingEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newBookingService() (*services.BookingService, *MockAppointmentRepository, *MockAvailabilityRepository, *MockVaccineRepository) {
	appointments := new(MockAppointmentRepository)
	availability := new(MockAvailabilityRepository)
	vaccines := new(MockVaccineRepository)
	service := services.NewBookingService(appointments, availability, vaccines)
	return service, appointments, availability, vaccines
}

// Tests

func TestBookingService_Reserve(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	t.Run("books the claimed caregiver and debits one dose", func(t *testing.T) {
		service, appointments, availability, vaccines := newBookingService()

		availability.On("ClaimAny", mock.Anything, date).Return("alice", nil)
		vaccines.On("Adjust", mock.Anything, "Moderna", -1).Return(4, nil)
		appointments.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.ID != "" &&
				a.PatientID == "dave" &&
				a.CaregiverID == "alice" &&
				a.VaccineName == "Moderna" &&
				a.Date.Equal(date)
		})).Return(nil)

		appointment, err := service.Reserve(context.Background(), "dave", date, "Moderna")

		assert.NoError(t, err)
		assert.NotNil(t, appointment)
		assert.Equal(t, "alice", appointment.CaregiverID)
		assert.NotEmpty(t, appointment.ID)
		appointments.AssertExpectations(t)
		availability.AssertExpectations(t)
		vaccines.AssertExpectations(t)
	})

	t.Run("fails without touching inventory when no caregiver is open", func(t *testing.T) {
		service, appointments, availability, vaccines := newBookingService()

		availability.On("ClaimAny", mock.Anything, date).
			Return("", apperrors.NewNoAvailabilityError("no caregiver is available on 2026-09-10"))

		appointment, err := service.Reserve(context.Background(), "dave", date, "Moderna")

		assert.Nil(t, appointment)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNoAvailability))
		vaccines.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
		appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("restores the claimed slot when doses run out", func(t *testing.T) {
		service, appointments, availability, vaccines := newBookingService()

		availability.On("ClaimAny", mock.Anything, date).Return("alice", nil)
		vaccines.On("Adjust", mock.Anything, "Moderna", -1).
			Return(0, apperrors.NewInsufficientStockError("not enough doses of Moderna"))
		availability.On("Restore", mock.Anything, date, "alice").Return(nil)

		appointment, err := service.Reserve(context.Background(), "dave", date, "Moderna")

		assert.Nil(t, appointment)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInsufficientStock))
		availability.AssertCalled(t, "Restore", mock.Anything, date, "alice")
		appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("restores the claimed slot when the vaccine is unknown", func(t *testing.T) {
		service, _, availability, vaccines := newBookingService()

		availability.On("ClaimAny", mock.Anything, date).Return("alice", nil)
		vaccines.On("Adjust", mock.Anything, "Nonexistent", -1).
			Return(0, apperrors.NewNotFoundError("vaccine Nonexistent not found"))
		availability.On("Restore", mock.Anything, date, "alice").Return(nil)

		_, err := service.Reserve(context.Background(), "dave", date, "Nonexistent")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		availability.AssertExpectations(t)
	})

	t.Run("reports a consistency error when compensation fails", func(t *testing.T) {
		service, _, availability, vaccines := newBookingService()

		availability.On("ClaimAny", mock.Anything, date).Return("alice", nil)
		vaccines.On("Adjust", mock.Anything, "Moderna", -1).
			Return(0, apperrors.NewInsufficientStockError("not enough doses of Moderna"))
		availability.On("Restore", mock.Anything, date, "alice").
			Return(apperrors.NewInternalError("connection lost", nil))

		_, err := service.Reserve(context.Background(), "dave", date, "Moderna")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConsistency))
	})

	t.Run("publishes a booked event when the event bus is configured", func(t *testing.T) {
		service, appointments, availability, vaccines := newBookingService()
		eventBus := new(MockEventBus)
		service.SetEventBus(eventBus)

		availability.On("ClaimAny", mock.Anything, date).Return("alice", nil)
		vaccines.On("Adjust", mock.Anything, "Moderna", -1).Return(4, nil)
		appointments.On("Create", mock.Anything, mock.Anything).Return(nil)
		eventBus.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(e *entities.BookingEvent) bool {
			return e.EventType == entities.BookingEventTypeBooked && e.CaregiverID == "alice"
		})).Return(nil)

		_, err := service.Reserve(context.Background(), "dave", date, "Moderna")

		assert.NoError(t, err)
		eventBus.AssertExpectations(t)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	appointment := &entities.Appointment{
		ID:          "appt-1",
		PatientID:   "dave",
		CaregiverID: "alice",
		VaccineName: "Moderna",
		Date:        date,
	}

	t.Run("reverses the reservation end to end", func(t *testing.T) {
		service, appointments, availability, vaccines := newBookingService()

		appointments.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)
		appointments.On("Delete", mock.Anything, "appt-1").Return(appointment, nil)
		availability.On("Restore", mock.Anything, date, "alice").Return(nil)
		vaccines.On("Adjust", mock.Anything, "Moderna", 1).Return(5, nil)

		err := service.Cancel(context.Background(), "appt-1", "dave")

		assert.NoError(t, err)
		appointments.AssertExpectations(t)
		availability.AssertExpectations(t)
		vaccines.AssertExpectations(t)
	})

	t.Run("unknown appointment fails with not found and no side effects", func(t *testing.T) {
		service, appointments, availability, vaccines := newBookingService()

		appointments.On("GetByID", mock.Anything, "missing").
			Return(nil, apperrors.NewNotFoundError("appointment with id missing not found"))

		err := service.Cancel(context.Background(), "missing", "dave")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		appointments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		availability.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything, mock.Anything)
		vaccines.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a requester who is not on the appointment", func(t *testing.T) {
		service, appointments, _, _ := newBookingService()

		appointments.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)

		err := service.Cancel(context.Background(), "appt-1", "mallory")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
		appointments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("surfaces a consistency error when the slot cannot be restored", func(t *testing.T) {
		service, appointments, availability, vaccines := newBookingService()

		appointments.On("GetByID", mock.Anything, "appt-1").Return(appointment, nil)
		appointments.On("Delete", mock.Anything, "appt-1").Return(appointment, nil)
		availability.On("Restore", mock.Anything, date, "alice").
			Return(apperrors.NewConflictError("caregiver alice already has a slot on 2026-09-10"))

		err := service.Cancel(context.Background(), "appt-1", "alice")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConsistency))
		vaccines.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBookingService_AddDoses(t *testing.T) {
	t.Run("creates an unknown vaccine with the uploaded count", func(t *testing.T) {
		service, _, _, vaccines := newBookingService()

		vaccines.On("GetByName", mock.Anything, "Janssen").
			Return(nil, apperrors.NewNotFoundError("vaccine Janssen not found"))
		vaccines.On("Upsert", mock.Anything, "Janssen", 10).
			Return(&entities.Vaccine{Name: "Janssen", AvailableDoses: 10}, nil)

		doses, err := service.AddDoses(context.Background(), "Janssen", 10)

		assert.NoError(t, err)
		assert.Equal(t, 10, doses)
		vaccines.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("adds to an existing vaccine", func(t *testing.T) {
		service, _, _, vaccines := newBookingService()

		vaccines.On("GetByName", mock.Anything, "Janssen").
			Return(&entities.Vaccine{Name: "Janssen", AvailableDoses: 10}, nil)
		vaccines.On("Adjust", mock.Anything, "Janssen", 5).Return(15, nil)

		doses, err := service.AddDoses(context.Background(), "Janssen", 5)

		assert.NoError(t, err)
		assert.Equal(t, 15, doses)
	})

	t.Run("falls back to adjust when losing the creation race", func(t *testing.T) {
		service, _, _, vaccines := newBookingService()

		vaccines.On("GetByName", mock.Anything, "Janssen").
			Return(nil, apperrors.NewNotFoundError("vaccine Janssen not found"))
		vaccines.On("Upsert", mock.Anything, "Janssen", 10).
			Return(nil, apperrors.NewConflictError("vaccine Janssen already exists"))
		vaccines.On("Adjust", mock.Anything, "Janssen", 10).Return(22, nil)

		doses, err := service.AddDoses(context.Background(), "Janssen", 10)

		assert.NoError(t, err)
		assert.Equal(t, 22, doses)
	})

	t.Run("rejects a negative count", func(t *testing.T) {
		service, _, _, vaccines := newBookingService()

		_, err := service.AddDoses(context.Background(), "Janssen", -3)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		vaccines.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	})
}
