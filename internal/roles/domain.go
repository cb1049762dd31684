package roles

import (
	"time"

	"github.com/accessdeck/accessdeck/internal/permissions"
)

// Role groups permissions under a name. PermissionIDs holds shared references:
// a role never owns its permissions, and the ids are only guaranteed to have
// resolved at the time of the most recent write. Deleting a permission later
// leaves a dangling id here on purpose.
type Role struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	PermissionIDs []string  `json:"permissionIds"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ExpandedRole is a role with its permission references resolved. Ids that no
// longer resolve are absent from Permissions.
type ExpandedRole struct {
	Role
	Permissions []permissions.Permission `json:"permissions"`
}
