package member

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeRoleFinder struct {
	roleOfFn func(ctx context.Context, projectID, userID uuid.UUID) (Role, error)
}

func (f *fakeRoleFinder) RoleOf(ctx context.Context, projectID, userID uuid.UUID) (Role, error) {
	if f.roleOfFn != nil {
		return f.roleOfFn(ctx, projectID, userID)
	}
	return RoleNone, nil
}

func policyWithRole(role Role) *Policy {
	return NewPolicy(&fakeRoleFinder{
		roleOfFn: func(context.Context, uuid.UUID, uuid.UUID) (Role, error) {
			return role, nil
		},
	})
}

func TestPolicyThresholds(t *testing.T) {
	cases := []struct {
		name     string
		role     Role
		member   bool
		elevated bool
		owner    bool
	}{
		{name: "owner", role: RoleOwner, member: true, elevated: true, owner: true},
		{name: "maintainer", role: RoleMaintainer, member: true, elevated: true, owner: false},
		{name: "reporter", role: RoleReporter, member: true, elevated: false, owner: false},
		{name: "non-member", role: RoleNone, member: false, elevated: false, owner: false},
	}

	ctx := context.Background()
	projectID := uuid.New()
	userID := uuid.New()

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := policyWithRole(tc.role)

			checks := []struct {
				name  string
				check func(context.Context, uuid.UUID, uuid.UUID) error
				allow bool
			}{
				{"member", p.RequireMember, tc.member},
				{"elevated", p.RequireElevated, tc.elevated},
				{"owner", p.RequireOwner, tc.owner},
			}

			for _, c := range checks {
				err := c.check(ctx, projectID, userID)
				if c.allow {
					require.NoError(t, err, c.name)
				} else {
					require.ErrorIs(t, err, ErrAccessDenied, c.name)
				}
			}
		})
	}
}

func TestPolicyPropagatesLookupError(t *testing.T) {
	boom := errors.New("db down")
	p := NewPolicy(&fakeRoleFinder{
		roleOfFn: func(context.Context, uuid.UUID, uuid.UUID) (Role, error) {
			return RoleNone, boom
		},
	})

	err := p.RequireMember(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrAccessDenied)
}

func TestRoleValid(t *testing.T) {
	require.True(t, RoleOwner.Valid())
	require.True(t, RoleMaintainer.Valid())
	require.True(t, RoleReporter.Valid())
	require.False(t, RoleNone.Valid())
	require.False(t, Role("ADMIN").Valid())
}
