package member

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MemberRepo handles database operations for project memberships
type MemberRepo struct {
	db *sqlx.DB
}

func NewMemberRepo(db *sqlx.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

// RoleOf returns the caller's role on a project, or RoleNone when no
// membership row exists.
func (r *MemberRepo) RoleOf(ctx context.Context, projectID, userID uuid.UUID) (Role, error) {
	query := `
		SELECT role
		FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`

	var role Role
	err := r.db.GetContext(ctx, &role, query, projectID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return RoleNone, nil
		}
		return RoleNone, fmt.Errorf("failed to get member role: %w", err)
	}

	return role, nil
}

// ListByProject returns every membership row of a project.
func (r *MemberRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*ProjectMember, error) {
	query := `
		SELECT id, project_id, user_id, role, created_at
		FROM project_members
		WHERE project_id = $1
		ORDER BY created_at
	`

	var members []*ProjectMember
	err := r.db.SelectContext(ctx, &members, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return members, nil
}
