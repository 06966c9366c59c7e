package domain

import "time"

// Well-known permission codenames gating the private API.
const (
	PermSignalWrite     = "sia_write"
	PermDepartmentRead  = "sia_department_read"
	PermDepartmentWrite = "sia_department_write"
)

// UserStatus enumerates account states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusDisabled UserStatus = "DISABLED"
)

// User is an authenticated official. Citizens use the public endpoints
// and have no account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       UserStatus
	IsSuperuser  bool
	Permissions  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPermission reports whether the user carries the given permission.
// Superusers hold every permission implicitly.
func (u *User) HasPermission(codename string) bool {
	if u == nil {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	for _, p := range u.Permissions {
		if p == codename {
			return true
		}
	}
	return false
}
