package events

import (
	"time"

	"github.com/spec-kit/signals-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignalCreated         EventType = "signal_created"
	EventSignalStatusChanged   EventType = "signal_status_changed"
	EventSignalCategoryChanged EventType = "signal_category_changed"
	EventSignalPriorityChanged EventType = "signal_priority_changed"
	EventSignalLocationChanged EventType = "signal_location_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SignalID  int64       `json:"signal_id"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SignalCreatedPayload payload.
type SignalCreatedPayload struct {
	PublicID   string                 `json:"public_id"`
	State      domain.StatusState     `json:"state"`
	CategoryID int64                  `json:"category_id"`
	Stadsdeel  domain.Stadsdeel       `json:"stadsdeel,omitempty"`
	Priority   domain.PriorityLevel   `json:"priority"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldState  domain.StatusState `json:"old_state"`
	NewState  domain.StatusState `json:"new_state"`
	Text      string             `json:"text,omitempty"`
	TargetAPI string             `json:"target_api,omitempty"`
}

// CategoryChangedPayload payload.
type CategoryChangedPayload struct {
	OldCategoryID int64 `json:"old_category_id"`
	NewCategoryID int64 `json:"new_category_id"`
}

// PriorityChangedPayload payload.
type PriorityChangedPayload struct {
	OldPriority domain.PriorityLevel `json:"old_priority"`
	NewPriority domain.PriorityLevel `json:"new_priority"`
}

// LocationChangedPayload payload.
type LocationChangedPayload struct {
	LocationID int64            `json:"location_id"`
	Stadsdeel  domain.Stadsdeel `json:"stadsdeel,omitempty"`
}
