package notification

import "time"

// Clock returns the current wall-clock time; injectable for tests.
type Clock func() time.Time

// IsBusinessHour reports whether t falls inside business hours,
// Monday through Friday 09:00-17:00 local time.
func IsBusinessHour(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return t.Hour() >= 9 && t.Hour() < 17
}
