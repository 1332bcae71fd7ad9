package issue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/member"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/project"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/user"
	"github.com/stretchr/testify/require"
)

type fakeIssueStore struct {
	createFn          func(ctx context.Context, in *Issue) (*Issue, error)
	getByIDFn         func(ctx context.Context, id uuid.UUID) (*Issue, error)
	updateVersionedFn func(ctx context.Context, in *Issue) (*Issue, error)
	deleteFn          func(ctx context.Context, id uuid.UUID) error
	listFilteredFn    func(ctx context.Context, f Filter) ([]*Issue, int64, error)
}

func (f *fakeIssueStore) Create(ctx context.Context, in *Issue) (*Issue, error) {
	return f.createFn(ctx, in)
}

func (f *fakeIssueStore) GetByID(ctx context.Context, id uuid.UUID) (*Issue, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeIssueStore) UpdateVersioned(ctx context.Context, in *Issue) (*Issue, error) {
	return f.updateVersionedFn(ctx, in)
}

func (f *fakeIssueStore) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeIssueStore) ListFiltered(ctx context.Context, f2 Filter) ([]*Issue, int64, error) {
	return f.listFilteredFn(ctx, f2)
}

type fakeProjectFinder struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*project.Project, error)
}

func (f *fakeProjectFinder) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	return f.getByIDFn(ctx, id)
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

// capturingPublisher records every publish so tests can assert on topics
// and payloads.
type capturingPublisher struct {
	topics   []string
	payloads []any
	err      error
}

func (p *capturingPublisher) Publish(ctx context.Context, topic string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

type fixture struct {
	svc    *IssueService
	events *capturingPublisher

	projectID  uuid.UUID
	ownerID    uuid.UUID
	reporterID uuid.UUID
	outsiderID uuid.UUID
}

func newFixture(store *fakeIssueStore) *fixture {
	f := &fixture{
		events:     &capturingPublisher{},
		projectID:  uuid.New(),
		ownerID:    uuid.New(),
		reporterID: uuid.New(),
		outsiderID: uuid.New(),
	}

	projects := &fakeProjectFinder{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*project.Project, error) {
			if id == f.projectID {
				return &project.Project{ID: id, Name: "Apollo", OwnerID: f.ownerID}, nil
			}
			return nil, project.ErrProjectNotFound
		},
	}
	users := &fakeUserFinder{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			return &user.User{ID: id, Name: "Grace"}, nil
		},
		listByIDsFn: func(ctx context.Context, ids []uuid.UUID) ([]*user.User, error) {
			out := make([]*user.User, 0, len(ids))
			for _, id := range ids {
				out = append(out, &user.User{ID: id, Name: "Grace"})
			}
			return out, nil
		},
	}
	policy := member.NewPolicy(staticRoles{
		f.ownerID:    member.RoleOwner,
		f.reporterID: member.RoleReporter,
	})

	f.svc = NewIssueService(store, projects, users, policy, f.events)
	return f
}

func TestCreateAppliesDefaults(t *testing.T) {
	var stored *Issue
	store := &fakeIssueStore{
		createFn: func(ctx context.Context, in *Issue) (*Issue, error) {
			stored = in
			out := *in
			out.ID = uuid.New()
			out.Version = 1
			return &out, nil
		},
	}
	f := newFixture(store)

	resp, err := f.svc.Create(context.Background(), &CreateIssueRequest{
		ProjectID: f.projectID,
		Title:     "Login fails on Safari",
	}, f.reporterID)
	require.NoError(t, err)

	require.Equal(t, StatusOpen, stored.Status)
	require.Equal(t, PriorityMedium, stored.Priority)
	require.NotNil(t, stored.Tags)
	require.Empty(t, stored.Tags)

	require.Equal(t, StatusOpen, resp.Status)
	require.Equal(t, int64(1), resp.Version)
	require.Equal(t, "Apollo", resp.ProjectName)
}

func TestCreateHonorsExplicitStatusAndPriority(t *testing.T) {
	store := &fakeIssueStore{
		createFn: func(ctx context.Context, in *Issue) (*Issue, error) {
			out := *in
			out.ID = uuid.New()
			out.Version = 1
			return &out, nil
		},
	}
	f := newFixture(store)

	status := StatusInProgress
	priority := PriorityCritical
	resp, err := f.svc.Create(context.Background(), &CreateIssueRequest{
		ProjectID: f.projectID,
		Title:     "Data loss on save",
		Status:    &status,
		Priority:  &priority,
		Tags:      []string{"data", "urgent"},
	}, f.reporterID)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, resp.Status)
	require.Equal(t, PriorityCritical, resp.Priority)
	require.Equal(t, []string{"data", "urgent"}, resp.Tags)
}

func TestCreateChecksProjectAndMembership(t *testing.T) {
	store := &fakeIssueStore{
		createFn: func(ctx context.Context, in *Issue) (*Issue, error) {
			t.Fatal("create should not reach the store")
			return nil, nil
		},
	}
	f := newFixture(store)

	t.Run("unknown project", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), &CreateIssueRequest{
			ProjectID: uuid.New(),
			Title:     "Phantom",
		}, f.reporterID)
		require.ErrorIs(t, err, project.ErrProjectNotFound)
	})

	t.Run("non-member", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), &CreateIssueRequest{
			ProjectID: f.projectID,
			Title:     "Phantom",
		}, f.outsiderID)
		require.ErrorIs(t, err, member.ErrAccessDenied)
	})

	require.Empty(t, f.events.topics)
}

func TestCreateBroadcastsToProjectTopic(t *testing.T) {
	store := &fakeIssueStore{
		createFn: func(ctx context.Context, in *Issue) (*Issue, error) {
			out := *in
			out.ID = uuid.New()
			out.Version = 1
			return &out, nil
		},
	}
	f := newFixture(store)

	resp, err := f.svc.Create(context.Background(), &CreateIssueRequest{
		ProjectID: f.projectID,
		Title:     "Login fails on Safari",
	}, f.reporterID)
	require.NoError(t, err)

	require.Equal(t, []string{fmt.Sprintf("projects/%s/issues", f.projectID)}, f.events.topics)
	require.Equal(t, resp, f.events.payloads[0])
}

func TestUpdatePartialSemantics(t *testing.T) {
	issueID := uuid.New()
	assignee := uuid.New()

	current := func() *Issue {
		return &Issue{
			ID:          issueID,
			Title:       "Old title",
			Description: "Old description",
			Status:      StatusOpen,
			Priority:    PriorityHigh,
			AssigneeID:  &assignee,
			Tags:        []string{"auth"},
			Version:     3,
		}
	}

	var written *Issue
	store := &fakeIssueStore{
		updateVersionedFn: func(ctx context.Context, in *Issue) (*Issue, error) {
			written = in
			out := *in
			out.Version = in.Version + 1
			return &out, nil
		},
	}
	f := newFixture(store)
	store.getByIDFn = func(ctx context.Context, id uuid.UUID) (*Issue, error) {
		i := current()
		i.ProjectID = f.projectID
		return i, nil
	}

	t.Run("title and description always overwrite", func(t *testing.T) {
		resp, err := f.svc.Update(context.Background(), issueID, &UpdateIssueRequest{
			Title:       "New title",
			Description: "",
		}, f.reporterID)
		require.NoError(t, err)

		require.Equal(t, "New title", written.Title)
		require.Equal(t, "", written.Description)
		// Absent pointer fields keep their stored values.
		require.Equal(t, StatusOpen, written.Status)
		require.Equal(t, PriorityHigh, written.Priority)
		require.Equal(t, &assignee, written.AssigneeID)
		require.Equal(t, []string(written.Tags), []string{"auth"})
		require.Equal(t, int64(4), resp.Version)
	})

	t.Run("present pointer fields overwrite", func(t *testing.T) {
		status := StatusResolved
		tags := []string{"auth", "regression"}
		_, err := f.svc.Update(context.Background(), issueID, &UpdateIssueRequest{
			Title:       "New title",
			Description: "Still broken",
			Status:      &status,
			Tags:        &tags,
		}, f.reporterID)
		require.NoError(t, err)

		require.Equal(t, StatusResolved, written.Status)
		require.Equal(t, []string(written.Tags), tags)
		require.Equal(t, PriorityHigh, written.Priority)
	})
}

func TestUpdateSurfacesVersionConflict(t *testing.T) {
	issueID := uuid.New()
	store := &fakeIssueStore{
		updateVersionedFn: func(ctx context.Context, in *Issue) (*Issue, error) {
			return nil, ErrVersionConflict
		},
	}
	f := newFixture(store)
	store.getByIDFn = func(ctx context.Context, id uuid.UUID) (*Issue, error) {
		return &Issue{ID: issueID, ProjectID: f.projectID, Version: 3}, nil
	}

	_, err := f.svc.Update(context.Background(), issueID, &UpdateIssueRequest{Title: "x"}, f.reporterID)
	require.ErrorIs(t, err, ErrVersionConflict)
	require.Empty(t, f.events.topics)
}

func TestDeleteRequiresElevatedRole(t *testing.T) {
	issueID := uuid.New()

	deleted := false
	store := &fakeIssueStore{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	f := newFixture(store)
	store.getByIDFn = func(ctx context.Context, id uuid.UUID) (*Issue, error) {
		return &Issue{ID: issueID, ProjectID: f.projectID}, nil
	}

	t.Run("reporter is denied", func(t *testing.T) {
		err := f.svc.Delete(context.Background(), issueID, f.reporterID)
		require.ErrorIs(t, err, member.ErrAccessDenied)
		require.False(t, deleted)
	})

	t.Run("owner deletes and the id is broadcast", func(t *testing.T) {
		require.NoError(t, f.svc.Delete(context.Background(), issueID, f.ownerID))
		require.True(t, deleted)
		require.Equal(t, []string{fmt.Sprintf("projects/%s/issues/deleted", f.projectID)}, f.events.topics)
		require.Equal(t, issueID, f.events.payloads[0])
	})
}

func TestBroadcastFailureDoesNotFailMutation(t *testing.T) {
	store := &fakeIssueStore{
		createFn: func(ctx context.Context, in *Issue) (*Issue, error) {
			out := *in
			out.ID = uuid.New()
			out.Version = 1
			return &out, nil
		},
	}
	f := newFixture(store)
	f.events.err = errors.New("broker unavailable")

	resp, err := f.svc.Create(context.Background(), &CreateIssueRequest{
		ProjectID: f.projectID,
		Title:     "Login fails on Safari",
	}, f.reporterID)
	require.NoError(t, err)
	require.NotNil(t, resp)
}

func TestListRequiresMembershipAndPaginates(t *testing.T) {
	assignee := uuid.New()
	var gotFilter Filter
	store := &fakeIssueStore{
		listFilteredFn: func(ctx context.Context, f2 Filter) ([]*Issue, int64, error) {
			gotFilter = f2
			return []*Issue{
				{ID: uuid.New(), ProjectID: f2.ProjectID, Title: "A", AssigneeID: &assignee},
				{ID: uuid.New(), ProjectID: f2.ProjectID, Title: "B"},
			}, 42, nil
		},
	}
	f := newFixture(store)

	status := StatusOpen
	filter := Filter{
		ProjectID: f.projectID,
		Status:    &status,
		Page:      2,
		Size:      20,
		SortBy:    "priority",
		SortDesc:  true,
	}

	t.Run("non-member is denied", func(t *testing.T) {
		_, err := f.svc.List(context.Background(), filter, f.outsiderID)
		require.ErrorIs(t, err, member.ErrAccessDenied)
	})

	t.Run("member gets a page", func(t *testing.T) {
		page, err := f.svc.List(context.Background(), filter, f.reporterID)
		require.NoError(t, err)
		require.Equal(t, filter, gotFilter)
		require.Equal(t, int64(42), page.Total)
		require.Equal(t, 2, page.Page)
		require.Equal(t, 20, page.Size)
		require.Len(t, page.Items, 2)
		require.Equal(t, "Apollo", page.Items[0].ProjectName)
		require.Equal(t, "Grace", page.Items[0].AssigneeName)
		require.Empty(t, page.Items[1].AssigneeName)
	})
}

func TestGetEnrichmentDegradesGracefully(t *testing.T) {
	issueID := uuid.New()
	assignee := uuid.New()

	store := &fakeIssueStore{}
	f := newFixture(store)
	store.getByIDFn = func(ctx context.Context, id uuid.UUID) (*Issue, error) {
		return &Issue{ID: issueID, ProjectID: f.projectID, Title: "A", AssigneeID: &assignee}, nil
	}

	// The assignee row is gone; the response simply omits the name.
	f.svc.users = &fakeUserFinder{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			return nil, user.ErrUserNotFound
		},
	}

	resp, err := f.svc.Get(context.Background(), issueID, f.reporterID)
	require.NoError(t, err)
	require.Equal(t, "Apollo", resp.ProjectName)
	require.Empty(t, resp.AssigneeName)
}
