package domain

import "time"

// Reporter holds the contact details of whoever filed a signal.
// History-tracked like the other signal children; RemoveAt drives
// anonymization of personal data after the retention window.
type Reporter struct {
	ID              int64
	SignalID        int64
	Email           string
	Phone           string
	RemoveAt        *time.Time
	ExtraProperties map[string]any
	CreatedAt       time.Time
}

// IsAnonymous reports whether the signal was filed without contact
// details.
func (r *Reporter) IsAnonymous() bool {
	return r == nil || (r.Email == "" && r.Phone == "")
}
