package notification

import (
	"github.com/spec-kit/signals-service/internal/domain"
)

// Subject line used by the district integrations.
const SubjectNewSignal = "Nieuwe melding op meldingen.amsterdam.nl"

// Sub categories (within "Overlast in de openbare ruimte") handled by
// the enforcement department of district Oost.
var handhavingOROostSubCategories = map[string]struct{}{
	"Parkeeroverlast":                          {},
	"Fietswrak":                                {},
	"Stank- / geluidsoverlast":                 {},
	"Bouw- / sloopoverlast":                    {},
	"Auto- / scooter- / bromfiets(wrak)":       {},
	"Hinderlijk geplaatst object":              {},
	"Overlast van fietsers, brommers en autos": {},
}

const handhavingOROostMainCategory = "Overlast in de openbare ruimte"

// NewHandhavingOROost builds the integration for the enforcement team
// of district Oost: it applies only to signals in a fixed category
// allow-list, located in stadsdeel Oost, reported outside business
// hours.
func NewHandhavingOROost(recipient, frontendURL string, now Clock) Integration {
	return Integration{
		Name:      "handhaving_or_oost",
		Recipient: recipient,
		Subject:   SubjectNewSignal,
		Applicable: func(signal *domain.Signal) bool {
			if IsBusinessHour(now()) {
				return false
			}
			if signal.Location == nil || signal.Location.Stadsdeel != domain.StadsdeelOost {
				return false
			}
			assignment := signal.CategoryAssignment
			if assignment == nil || assignment.Category == nil || assignment.Category.Parent == nil {
				return false
			}
			if assignment.Category.Parent.Name != handhavingOROostMainCategory {
				return false
			}
			_, ok := handhavingOROostSubCategories[assignment.Category.Name]
			return ok
		},
		Render: func(signal *domain.Signal) string {
			return DefaultNotificationMessage(signal, frontendURL)
		},
	}
}
