package project

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/member"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/user"
	"github.com/stretchr/testify/require"
)

type fakeProjectStore struct {
	createWithOwnerFn func(ctx context.Context, name string, ownerID uuid.UUID) (*Project, error)
	getByIDFn         func(ctx context.Context, id uuid.UUID) (*Project, error)
	listByMemberFn    func(ctx context.Context, userID uuid.UUID) ([]*Project, error)
	renameFn          func(ctx context.Context, id uuid.UUID, name string) (*Project, error)
	deleteFn          func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeProjectStore) CreateWithOwner(ctx context.Context, name string, ownerID uuid.UUID) (*Project, error) {
	return f.createWithOwnerFn(ctx, name, ownerID)
}

func (f *fakeProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeProjectStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]*Project, error) {
	return f.listByMemberFn(ctx, userID)
}

func (f *fakeProjectStore) Rename(ctx context.Context, id uuid.UUID, name string) (*Project, error) {
	return f.renameFn(ctx, id, name)
}

func (f *fakeProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

type fakeUserFinder struct {
	getByIDFn   func(ctx context.Context, id uuid.UUID) (*user.User, error)
	listByIDsFn func(ctx context.Context, ids []uuid.UUID) ([]*user.User, error)
}

func (f *fakeUserFinder) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeUserFinder) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*user.User, error) {
	return f.listByIDsFn(ctx, ids)
}

type staticRoles map[uuid.UUID]member.Role

func (s staticRoles) RoleOf(ctx context.Context, projectID, userID uuid.UUID) (member.Role, error) {
	role, ok := s[userID]
	if !ok {
		return member.RoleNone, nil
	}
	return role, nil
}

func TestCreateResolvesOwnerName(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()

	store := &fakeProjectStore{
		createWithOwnerFn: func(ctx context.Context, name string, id uuid.UUID) (*Project, error) {
			require.Equal(t, ownerID, id)
			return &Project{ID: projectID, Name: name, OwnerID: id}, nil
		},
	}
	users := &fakeUserFinder{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			return &user.User{ID: id, Name: "Ada"}, nil
		},
	}

	svc := NewProjectService(store, users, member.NewPolicy(staticRoles{}))

	resp, err := svc.Create(context.Background(), &CreateProjectRequest{Name: "Apollo"}, ownerID)
	require.NoError(t, err)
	require.Equal(t, projectID, resp.ID)
	require.Equal(t, "Apollo", resp.Name)
	require.Equal(t, "Ada", resp.OwnerName)
}

func TestGetOrdersNotFoundBeforeAccessDenied(t *testing.T) {
	ownerID := uuid.New()
	outsiderID := uuid.New()
	projectID := uuid.New()

	stored := &Project{ID: projectID, Name: "Apollo", OwnerID: ownerID}
	store := &fakeProjectStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*Project, error) {
			if id == projectID {
				return stored, nil
			}
			return nil, ErrProjectNotFound
		},
	}
	users := &fakeUserFinder{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			return &user.User{ID: id, Name: "Ada"}, nil
		},
	}
	policy := member.NewPolicy(staticRoles{ownerID: member.RoleOwner})
	svc := NewProjectService(store, users, policy)

	t.Run("member sees project", func(t *testing.T) {
		resp, err := svc.Get(context.Background(), projectID, ownerID)
		require.NoError(t, err)
		require.Equal(t, projectID, resp.ID)
	})

	t.Run("non-member of existing project is denied", func(t *testing.T) {
		_, err := svc.Get(context.Background(), projectID, outsiderID)
		require.ErrorIs(t, err, member.ErrAccessDenied)
	})

	t.Run("missing project is not found even for non-member", func(t *testing.T) {
		_, err := svc.Get(context.Background(), uuid.New(), outsiderID)
		require.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestUpdateRequiresOwner(t *testing.T) {
	ownerID := uuid.New()
	maintainerID := uuid.New()
	projectID := uuid.New()

	store := &fakeProjectStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*Project, error) {
			return &Project{ID: projectID, Name: "Apollo", OwnerID: ownerID}, nil
		},
		renameFn: func(ctx context.Context, id uuid.UUID, name string) (*Project, error) {
			return &Project{ID: projectID, Name: name, OwnerID: ownerID}, nil
		},
	}
	users := &fakeUserFinder{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			return &user.User{ID: id, Name: "Ada"}, nil
		},
	}
	policy := member.NewPolicy(staticRoles{
		ownerID:      member.RoleOwner,
		maintainerID: member.RoleMaintainer,
	})
	svc := NewProjectService(store, users, policy)

	t.Run("owner renames", func(t *testing.T) {
		resp, err := svc.Update(context.Background(), projectID, &UpdateProjectRequest{Name: "Artemis"}, ownerID)
		require.NoError(t, err)
		require.Equal(t, "Artemis", resp.Name)
	})

	t.Run("maintainer is denied", func(t *testing.T) {
		_, err := svc.Update(context.Background(), projectID, &UpdateProjectRequest{Name: "Artemis"}, maintainerID)
		require.ErrorIs(t, err, member.ErrAccessDenied)
	})
}

func TestDeleteRequiresOwner(t *testing.T) {
	ownerID := uuid.New()
	reporterID := uuid.New()
	projectID := uuid.New()

	deleted := false
	store := &fakeProjectStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*Project, error) {
			return &Project{ID: projectID, Name: "Apollo", OwnerID: ownerID}, nil
		},
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	policy := member.NewPolicy(staticRoles{
		ownerID:    member.RoleOwner,
		reporterID: member.RoleReporter,
	})
	svc := NewProjectService(store, &fakeUserFinder{}, policy)

	require.ErrorIs(t, svc.Delete(context.Background(), projectID, reporterID), member.ErrAccessDenied)
	require.False(t, deleted)

	require.NoError(t, svc.Delete(context.Background(), projectID, ownerID))
	require.True(t, deleted)
}

func TestListForUserResolvesOwnerNamesInBatch(t *testing.T) {
	userID := uuid.New()
	ownerA := uuid.New()
	ownerB := uuid.New()

	store := &fakeProjectStore{
		listByMemberFn: func(ctx context.Context, id uuid.UUID) ([]*Project, error) {
			return []*Project{
				{ID: uuid.New(), Name: "Apollo", OwnerID: ownerA},
				{ID: uuid.New(), Name: "Artemis", OwnerID: ownerB},
				{ID: uuid.New(), Name: "Gemini", OwnerID: ownerA},
			}, nil
		},
	}

	var batches int
	users := &fakeUserFinder{
		listByIDsFn: func(ctx context.Context, ids []uuid.UUID) ([]*user.User, error) {
			batches++
			require.ElementsMatch(t, []uuid.UUID{ownerA, ownerB}, ids)
			return []*user.User{
				{ID: ownerA, Name: "Ada"},
				{ID: ownerB, Name: "Grace"},
			}, nil
		},
	}

	svc := NewProjectService(store, users, member.NewPolicy(staticRoles{}))

	resps, err := svc.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, resps, 3)
	require.Equal(t, 1, batches)
	require.Equal(t, "Ada", resps[0].OwnerName)
	require.Equal(t, "Grace", resps[1].OwnerName)
	require.Equal(t, "Ada", resps[2].OwnerName)
}

func TestListForUserPropagatesStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	store := &fakeProjectStore{
		listByMemberFn: func(ctx context.Context, id uuid.UUID) ([]*Project, error) {
			return nil, boom
		},
	}

	svc := NewProjectService(store, &fakeUserFinder{}, member.NewPolicy(staticRoles{}))

	_, err := svc.ListForUser(context.Background(), uuid.New())
	require.ErrorIs(t, err, boom)
}
