package member

import (
	"time"

	"github.com/google/uuid"
)

// Role is a member's permission tier on a project.
type Role string

const (
	RoleNone       Role = ""
	RoleReporter   Role = "REPORTER"
	RoleMaintainer Role = "MAINTAINER"
	RoleOwner      Role = "OWNER"
)

// rank defines the total order OWNER > MAINTAINER > REPORTER used for
// threshold checks. RoleNone ranks below every membership tier.
func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleMaintainer:
		return 2
	case RoleReporter:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the closed set of membership roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleMaintainer, RoleReporter:
		return true
	default:
		return false
	}
}

// ProjectMember grants a user a role on a project. At most one row exists
// per (project, user) pair.
type ProjectMember struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
