package member

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrAccessDenied = errors.New("access denied")

// RoleFinder resolves a user's role on a project. RoleNone means no
// membership.
type RoleFinder interface {
	RoleOf(ctx context.Context, projectID, userID uuid.UUID) (Role, error)
}

// Policy centralizes every authorization decision so workflow services
// never inline their own role comparisons.
type Policy struct {
	roles RoleFinder
}

func NewPolicy(roles RoleFinder) *Policy {
	return &Policy{roles: roles}
}

func (p *Policy) RoleOf(ctx context.Context, projectID, userID uuid.UUID) (Role, error) {
	return p.roles.RoleOf(ctx, projectID, userID)
}

// RequireMember fails with ErrAccessDenied unless the user holds any role
// on the project. Gates reads, issue creation, and issue updates.
func (p *Policy) RequireMember(ctx context.Context, projectID, userID uuid.UUID) error {
	return p.require(ctx, projectID, userID, RoleReporter)
}

// RequireElevated fails with ErrAccessDenied unless the user is an OWNER
// or MAINTAINER. Gates issue deletion.
func (p *Policy) RequireElevated(ctx context.Context, projectID, userID uuid.UUID) error {
	return p.require(ctx, projectID, userID, RoleMaintainer)
}

// RequireOwner fails with ErrAccessDenied unless the user is the OWNER.
// Gates project rename and deletion.
func (p *Policy) RequireOwner(ctx context.Context, projectID, userID uuid.UUID) error {
	return p.require(ctx, projectID, userID, RoleOwner)
}

func (p *Policy) require(ctx context.Context, projectID, userID uuid.UUID, threshold Role) error {
	role, err := p.roles.RoleOf(ctx, projectID, userID)
	if err != nil {
		return err
	}

	if role.rank() < threshold.rank() {
		return ErrAccessDenied
	}

	return nil
}
