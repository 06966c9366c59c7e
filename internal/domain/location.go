package domain

import "time"

// Stadsdeel identifies an Amsterdam city district, used as a routing
// and notification criterion.
type Stadsdeel string

const (
	StadsdeelCentrum   Stadsdeel = "A"
	StadsdeelWestpoort Stadsdeel = "B"
	StadsdeelWest      Stadsdeel = "E"
	StadsdeelNieuwWest Stadsdeel = "F"
	StadsdeelZuid      Stadsdeel = "K"
	StadsdeelOost      Stadsdeel = "M"
	StadsdeelNoord     Stadsdeel = "N"
	StadsdeelZuidoost  Stadsdeel = "T"
)

var stadsdeelNames = map[Stadsdeel]string{
	StadsdeelCentrum:   "Centrum",
	StadsdeelWestpoort: "Westpoort",
	StadsdeelWest:      "West",
	StadsdeelNieuwWest: "Nieuw-West",
	StadsdeelZuid:      "Zuid",
	StadsdeelOost:      "Oost",
	StadsdeelNoord:     "Noord",
	StadsdeelZuidoost:  "Zuidoost",
}

// IsValid reports whether the district code is known.
func (s Stadsdeel) IsValid() bool {
	_, ok := stadsdeelNames[s]
	return ok
}

// DisplayName returns the district's human readable name.
func (s Stadsdeel) DisplayName() string {
	return stadsdeelNames[s]
}

// Location records where a signal was reported. History-tracked: a
// location change appends a new row.
type Location struct {
	ID              int64
	SignalID        int64
	Stadsdeel       Stadsdeel
	Address         map[string]any
	AddressText     string
	BuurtCode       string
	Latitude        float64
	Longitude       float64
	ExtraProperties map[string]any
	CreatedAt       time.Time
}
