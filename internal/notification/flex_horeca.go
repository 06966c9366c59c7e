package notification

import (
	"time"

	"github.com/spec-kit/signals-service/internal/domain"
)

const flexHorecaMainCategory = "Overlast Bedrijven en Horeca"

// NewFlexHoreca builds the integration for the Flex Horeca team:
// nuisance reports about businesses and bars, forwarded during
// weekend evenings and nights when the team is on duty.
func NewFlexHoreca(recipient, frontendURL string, now Clock) Integration {
	return Integration{
		Name:      "flex_horeca",
		Recipient: recipient,
		Subject:   SubjectNewSignal,
		Applicable: func(signal *domain.Signal) bool {
			if !isFlexHorecaShift(now()) {
				return false
			}
			assignment := signal.CategoryAssignment
			if assignment == nil || assignment.Category == nil || assignment.Category.Parent == nil {
				return false
			}
			return assignment.Category.Parent.Name == flexHorecaMainCategory
		},
		Render: func(signal *domain.Signal) string {
			return DefaultNotificationMessage(signal, frontendURL)
		},
	}
}

// isFlexHorecaShift covers Friday and Saturday from 18:00 until 04:00
// the following morning.
func isFlexHorecaShift(t time.Time) bool {
	switch t.Weekday() {
	case time.Friday:
		return t.Hour() >= 18
	case time.Saturday:
		return t.Hour() >= 18 || t.Hour() < 4
	case time.Sunday:
		return t.Hour() < 4
	}
	return false
}
