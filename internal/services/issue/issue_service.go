package issue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rabnra2016/issue-tracker-mvp/internal/pubsub"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/member"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/project"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/user"
)

type issueStore interface {
	Create(ctx context.Context, in *Issue) (*Issue, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Issue, error)
	UpdateVersioned(ctx context.Context, in *Issue) (*Issue, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListFiltered(ctx context.Context, f Filter) ([]*Issue, int64, error)
}

type projectFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
}

type userFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*user.User, error)
}

// IssueService contains business logic for issues. Reads and writes are
// gated by the membership policy; every mutation is broadcast to the
// project's topic after it commits.
type IssueService struct {
	repo     issueStore
	projects projectFinder
	users    userFinder
	policy   *member.Policy
	events   pubsub.Publisher
}

func NewIssueService(repo issueStore, projects projectFinder, users userFinder, policy *member.Policy, events pubsub.Publisher) *IssueService {
	return &IssueService{
		repo:     repo,
		projects: projects,
		users:    users,
		policy:   policy,
		events:   events,
	}
}

// issuesTopic is the per-project channel carrying created and updated
// issue representations.
func issuesTopic(projectID uuid.UUID) string {
	return fmt.Sprintf("projects/%s/issues", projectID)
}

// deletedTopic carries the ids of deleted issues.
func deletedTopic(projectID uuid.UUID) string {
	return fmt.Sprintf("projects/%s/issues/deleted", projectID)
}

// Create persists a new issue on a project the caller is a member of.
// Status defaults to OPEN and priority to MEDIUM when unspecified.
func (s *IssueService) Create(ctx context.Context, req *CreateIssueRequest, userID uuid.UUID) (*IssueResponse, error) {
	if _, err := s.projects.GetByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	if err := s.policy.RequireMember(ctx, req.ProjectID, userID); err != nil {
		return nil, err
	}

	in := &Issue{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusOpen,
		Priority:    PriorityMedium,
		AssigneeID:  req.AssigneeID,
		Tags:        req.Tags,
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	resp := s.toResponse(ctx, created)
	s.broadcast(ctx, issuesTopic(created.ProjectID), resp)

	return resp, nil
}

// List returns one page of a project's issues matching the filter.
func (s *IssueService) List(ctx context.Context, f Filter, userID uuid.UUID) (*IssuePage, error) {
	if err := s.policy.RequireMember(ctx, f.ProjectID, userID); err != nil {
		return nil, err
	}

	issues, total, err := s.repo.ListFiltered(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}

	return &IssuePage{
		Items: s.toResponses(ctx, issues),
		Total: total,
		Page:  f.Page,
		Size:  f.Size,
	}, nil
}

// Get returns a single issue the caller can see.
func (s *IssueService) Get(ctx context.Context, issueID, userID uuid.UUID) (*IssueResponse, error) {
	i, err := s.repo.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireMember(ctx, i.ProjectID, userID); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, i), nil
}

// Update applies a partial update. Title and description are always
// overwritten from the request; the remaining fields only when present.
// The write is conditional on the version read here, so a racing writer
// that committed first surfaces as ErrVersionConflict.
func (s *IssueService) Update(ctx context.Context, issueID uuid.UUID, req *UpdateIssueRequest, userID uuid.UUID) (*IssueResponse, error) {
	i, err := s.repo.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireMember(ctx, i.ProjectID, userID); err != nil {
		return nil, err
	}

	i.Title = req.Title
	i.Description = req.Description
	if req.Status != nil {
		i.Status = *req.Status
	}
	if req.Priority != nil {
		i.Priority = *req.Priority
	}
	if req.AssigneeID != nil {
		i.AssigneeID = req.AssigneeID
	}
	if req.Tags != nil {
		i.Tags = *req.Tags
	}

	updated, err := s.repo.UpdateVersioned(ctx, i)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(ctx, updated)
	s.broadcast(ctx, issuesTopic(updated.ProjectID), resp)

	return resp, nil
}

// Delete removes an issue. OWNER or MAINTAINER only.
func (s *IssueService) Delete(ctx context.Context, issueID, userID uuid.UUID) error {
	i, err := s.repo.GetByID(ctx, issueID)
	if err != nil {
		return err
	}

	if err := s.policy.RequireElevated(ctx, i.ProjectID, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, issueID); err != nil {
		return err
	}

	s.broadcast(ctx, deletedTopic(i.ProjectID), issueID)

	return nil
}

// broadcast is fire-and-forget: a failed publish is logged and never rolls
// back or fails the mutation it follows.
func (s *IssueService) broadcast(ctx context.Context, topic string, payload any) {
	if err := s.events.Publish(ctx, topic, payload); err != nil {
		slog.WarnContext(ctx, "Failed to broadcast issue event", slog.String("topic", topic), slog.Any("error", err))
	}
}

// toResponse resolves project and assignee display names via point
// lookups. A miss omits the name and never fails the operation.
func (s *IssueService) toResponse(ctx context.Context, i *Issue) *IssueResponse {
	resp := baseResponse(i)

	if p, err := s.projects.GetByID(ctx, i.ProjectID); err == nil {
		resp.ProjectName = p.Name
	}

	if i.AssigneeID != nil {
		if u, err := s.users.GetByID(ctx, *i.AssigneeID); err == nil {
			resp.AssigneeName = u.Name
		}
	}

	return resp
}

// toResponses enriches a page of issues with two batch lookups instead of
// a pair of point lookups per row.
func (s *IssueService) toResponses(ctx context.Context, issues []*Issue) []*IssueResponse {
	responses := make([]*IssueResponse, 0, len(issues))
	if len(issues) == 0 {
		return responses
	}

	projectName := ""
	if p, err := s.projects.GetByID(ctx, issues[0].ProjectID); err == nil {
		projectName = p.Name
	}

	assigneeIDs := make([]uuid.UUID, 0, len(issues))
	seen := make(map[uuid.UUID]bool)
	for _, i := range issues {
		if i.AssigneeID != nil && !seen[*i.AssigneeID] {
			seen[*i.AssigneeID] = true
			assigneeIDs = append(assigneeIDs, *i.AssigneeID)
		}
	}

	names := make(map[uuid.UUID]string)
	if users, err := s.users.ListByIDs(ctx, assigneeIDs); err == nil {
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}

	for _, i := range issues {
		resp := baseResponse(i)
		resp.ProjectName = projectName
		if i.AssigneeID != nil {
			resp.AssigneeName = names[*i.AssigneeID]
		}
		responses = append(responses, resp)
	}

	return responses
}

func baseResponse(i *Issue) *IssueResponse {
	return &IssueResponse{
		ID:          i.ID,
		ProjectID:   i.ProjectID,
		Title:       i.Title,
		Description: i.Description,
		Status:      i.Status,
		Priority:    i.Priority,
		AssigneeID:  i.AssigneeID,
		Tags:        i.Tags,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
		Version:     i.Version,
	}
}
