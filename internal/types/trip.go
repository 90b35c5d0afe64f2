package types

import (
	"time"

	"github.com/google/uuid"
)

type Trip struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Activities  string    `json:"activities,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateTripParams struct {
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // YYYY-MM-DD
	Activities  string `json:"activities,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type UpdateTripParams struct {
	Destination *string `json:"destination,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	Activities  *string `json:"activities,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}
