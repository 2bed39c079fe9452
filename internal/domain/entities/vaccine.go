package entities

import (
	"time"
)

// Vaccine represents a named vaccine product and its remaining dose inventory.
// AvailableDoses is never negative; it is only mutated through the inventory
// repository's atomic Adjust operation.
type Vaccine struct {
	Name           string    `json:"name" db:"name"`
	AvailableDoses int       `json:"available_doses" db:"available_doses"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
