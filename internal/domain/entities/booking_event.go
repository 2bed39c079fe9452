package entities

import (
	"time"

	"github.com/google/uuid"
)

// BookingEventType represents the type of booking event
type BookingEventType string

const (
	BookingEventTypeBooked     BookingEventType = "appointment_booked"
	BookingEventTypeCancelled  BookingEventType = "appointment_cancelled"
	BookingEventTypeDosesAdded BookingEventType = "doses_added"
)

// BookingEvent represents a real-time update emitted after a booking
// operation commits. Events are advisory; the ledgers remain the source of
// truth.
type BookingEvent struct {
	ID            string           `json:"id"`
	EventType     BookingEventType `json:"event_type"`
	AppointmentID string           `json:"appointment_id,omitempty"`
	PatientID     string           `json:"patient_id,omitempty"`
	CaregiverID   string           `json:"caregiver_id,omitempty"`
	VaccineName   string           `json:"vaccine_name,omitempty"`
	Date          string           `json:"date,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// NewBookingEvent creates a new booking event for an appointment
func NewBookingEvent(eventType BookingEventType, appointment *Appointment) *BookingEvent {
	return &BookingEvent{
		ID:            uuid.New().String(),
		EventType:     eventType,
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		CaregiverID:   appointment.CaregiverID,
		VaccineName:   appointment.VaccineName,
		Date:          appointment.Date.Format(DateFormat),
		Timestamp:     time.Now(),
	}
}

// NewInventoryEvent creates a new booking event for an inventory change
func NewInventoryEvent(vaccineName string) *BookingEvent {
	return &BookingEvent{
		ID:          uuid.New().String(),
		EventType:   BookingEventTypeDosesAdded,
		VaccineName: vaccineName,
		Timestamp:   time.Now(),
	}
}
