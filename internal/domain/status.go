package domain

import "time"

// StatusState enumerates workflow states for signals.
type StatusState string

const (
	StateGemeld            StatusState = "m"
	StateAfwachting        StatusState = "i"
	StateBehandeling       StatusState = "b"
	StateOnHold            StatusState = "h"
	StateTeVerzenden       StatusState = "ready to send"
	StateVerzonden         StatusState = "sent"
	StateVerzendenMislukt  StatusState = "send failed"
	StateAfgehandeldExtern StatusState = "done external"
	StateAfgehandeld       StatusState = "o"
	StateGeannuleerd       StatusState = "a"
	StateHeropend          StatusState = "reopened"
	StateGesplitst         StatusState = "s"
)

// statusStateNames maps states to their display names.
var statusStateNames = map[StatusState]string{
	StateGemeld:            "Gemeld",
	StateAfwachting:        "In afwachting van behandeling",
	StateBehandeling:       "In behandeling",
	StateOnHold:            "On hold",
	StateTeVerzenden:       "Te verzenden naar extern systeem",
	StateVerzonden:         "Verzonden naar extern systeem",
	StateVerzendenMislukt:  "Verzending naar extern systeem mislukt",
	StateAfgehandeldExtern: "Melding is afgehandeld in extern systeem",
	StateAfgehandeld:       "Afgehandeld",
	StateGeannuleerd:       "Geannuleerd",
	StateHeropend:          "Heropend",
	StateGesplitst:         "Gesplitst",
}

// IsValid reports whether the state is a member of the closed enum.
func (s StatusState) IsValid() bool {
	_, ok := statusStateNames[s]
	return ok
}

// DisplayName returns the human readable name of the state.
func (s StatusState) DisplayName() string {
	return statusStateNames[s]
}

// Status is one immutable entry in a signal's workflow history. A new
// status is always a new row; the previous row becomes history.
type Status struct {
	ID              int64
	SignalID        int64
	State           StatusState
	Text            string
	User            string
	TargetAPI       string
	ExtraProperties map[string]any
	CreatedAt       time.Time
}
