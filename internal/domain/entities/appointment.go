package entities

import (
	"time"
)

// Appointment is the authoritative record of a booking. Every live
// appointment corresponds to one dose debited from its vaccine and one slot
// removed from the availability registry at creation time.
type Appointment struct {
	ID          string    `json:"id" db:"id"`
	PatientID   string    `json:"patient_id" db:"patient_id"`
	CaregiverID string    `json:"caregiver_id" db:"caregiver_id"`
	VaccineName string    `json:"vaccine_name" db:"vaccine_name"`
	Date        time.Time `json:"date" db:"appointment_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Involves reports whether the given username is the patient or the
// caregiver on this appointment.
func (a *Appointment) Involves(username string) bool {
	return a.PatientID == username || a.CaregiverID == username
}
