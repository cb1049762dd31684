package users

import (
	"time"

	"github.com/accessdeck/accessdeck/internal/roles"
)

// User statuses. Enforced by request validation, not by the schema.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// User is a managed account. RoleID references a single role by identifier
// and is never validated against the roles collection at write time, so it
// may point at a role that no longer exists.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RoleID       string    `json:"roleId"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ExpandedUser is a user with its role reference resolved. Role is nil when
// the referenced role has been deleted; callers must handle that absence.
type ExpandedUser struct {
	User
	Role *roles.Role `json:"role"`
}
