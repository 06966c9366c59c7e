package domain

import "time"

// Signal is the root aggregate for an incident report. All child
// entities (Status, CategoryAssignment, Priority, Location, Reporter)
// are append-only rows owned by exactly one signal; the pointers here
// always reference the most recently created row of each kind.
type Signal struct {
	ID       int64
	SignalID string
	Source   string

	Text      string
	TextExtra string
	Image     string

	IncidentDateStart time.Time
	IncidentDateEnd   *time.Time
	OperationalDate   *time.Time

	ExtraProperties map[string]any

	Status             *Status
	CategoryAssignment *CategoryAssignment
	Priority           *Priority
	Location           *Location
	Reporter           *Reporter

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasImage reports whether an image has already been attached.
func (s *Signal) HasImage() bool {
	return s.Image != ""
}
