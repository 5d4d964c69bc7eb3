package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type values used by the order subsystem.
const (
	TypeOrder = "order"
)

// Notification is an internal alert for the admin console.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"     validate:"required"`
	Message   string    `json:"message"   validate:"required"`
	Type      string    `json:"type"      validate:"required"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"createdAt"`
}
