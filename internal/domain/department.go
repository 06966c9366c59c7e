package domain

import "time"

// DepartmentCodeMaxLength bounds the short code used in exports and
// routing tables.
const DepartmentCodeMaxLength = 3

// MsgDepartmentCodeTooLong is the Dutch validation message surfaced on
// the `code` field when the length bound is violated.
const MsgDepartmentCodeTooLong = "Zorg ervoor dat dit veld niet meer dan 3 karakters bevat."

// Department is an organizational unit responsible for handling
// signals in the categories it is linked to.
type Department struct {
	ID        int64
	Name      string
	Code      string
	IsIntern  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	Categories []CategoryDepartment
}

// ValidateDepartmentCode checks the ≤3 character bound on department
// codes. The returned message goes verbatim into the `code` field of
// the validation error body.
func ValidateDepartmentCode(code string) (string, bool) {
	if len([]rune(code)) > DepartmentCodeMaxLength {
		return MsgDepartmentCodeTooLong, false
	}
	return "", true
}
