package entities

import (
	"time"
)

// DateFormat is the wire format for scheduling dates. Slots and appointments
// are keyed by calendar date, not by time of day.
const DateFormat = "2006-01-02"

// AvailabilitySlot represents an open, unbooked (date, caregiver) pairing.
// The pair is unique: a caregiver has at most one open slot per date. A slot
// is destroyed when a reservation claims it and re-created when a
// cancellation restores it.
type AvailabilitySlot struct {
	Date        time.Time `json:"date" db:"slot_date"`
	CaregiverID string    `json:"caregiver_id" db:"caregiver_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
