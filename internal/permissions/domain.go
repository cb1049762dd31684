package permissions

import "time"

// Actions a permission may grant. Enforced by request validation, not by the
// schema, so stored rows can only ever contain these values.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Permission represents an atomic capability that roles reference. Names are
// not unique: two permissions may share a name, and name-based resolution
// picks whichever matches first.
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Actions     []string  `json:"actions"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
