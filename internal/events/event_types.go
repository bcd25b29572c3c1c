package events

import (
	"time"

	"github.com/reciclamais/waste-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventWasteRecorded  EventType = "waste_recorded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// WasteRecordedPayload payload.
type WasteRecordedPayload struct {
	WasteID  string           `json:"waste_id"`
	Type     domain.WasteType `json:"type"`
	Weight   float64          `json:"weight"`
	Recycled bool             `json:"recycled"`
	Date     string           `json:"date"`
}
