package domain

import "time"

// PriorityLevel enumerates handling urgency.
type PriorityLevel string

const (
	PriorityNormal PriorityLevel = "normal"
	PriorityHigh   PriorityLevel = "high"
)

// IsValid reports whether the level is a member of the closed enum.
func (p PriorityLevel) IsValid() bool {
	return p == PriorityNormal || p == PriorityHigh
}

// Priority is one immutable priority entry in a signal's history.
type Priority struct {
	ID        int64
	SignalID  int64
	Priority  PriorityLevel
	CreatedBy string
	CreatedAt time.Time
}
