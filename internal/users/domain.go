package users

import "time"

// Roles a principal can hold. A user has exactly one role; per-user
// permission grants refine what the role allows.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Account statuses. Deleted is a soft state: rows referenced by audit
// history are never removed physically.
const (
	StatusActive  = "active"
	StatusBanned  = "banned"
	StatusDeleted = "deleted"
)

// User represents a platform principal.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the account may act on the platform.
func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// ValidRole reports whether the given role name is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}
