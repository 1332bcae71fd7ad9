package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/member"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/user"
)

type projectStore interface {
	CreateWithOwner(ctx context.Context, name string, ownerID uuid.UUID) (*Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*Project, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*user.User, error)
}

// ProjectService contains business logic for projects. Every operation
// except Create is gated by the membership policy.
type ProjectService struct {
	repo   projectStore
	users  userFinder
	policy *member.Policy
}

func NewProjectService(repo projectStore, users userFinder, policy *member.Policy) *ProjectService {
	return &ProjectService{repo: repo, users: users, policy: policy}
}

// Create inserts a project together with the creator's OWNER membership.
func (s *ProjectService) Create(ctx context.Context, req *CreateProjectRequest, ownerID uuid.UUID) (*ProjectResponse, error) {
	p, err := s.repo.CreateWithOwner(ctx, req.Name, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.toResponse(ctx, p), nil
}

// ListForUser returns every project the caller is a member of.
func (s *ProjectService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*ProjectResponse, error) {
	projects, err := s.repo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return s.toResponses(ctx, projects), nil
}

// Get returns a project the caller is a member of. Existence is checked
// before membership so a non-member sees access denied, not a 404, for a
// project that exists.
func (s *ProjectService) Get(ctx context.Context, projectID, userID uuid.UUID) (*ProjectResponse, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, p), nil
}

// Update renames a project. Owner only.
func (s *ProjectService) Update(ctx context.Context, projectID uuid.UUID, req *UpdateProjectRequest, userID uuid.UUID) (*ProjectResponse, error) {
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	if err := s.policy.RequireOwner(ctx, projectID, userID); err != nil {
		return nil, err
	}

	p, err := s.repo.Rename(ctx, projectID, req.Name)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.toResponse(ctx, p), nil
}

// Delete removes a project and, through the store's cascade, its issues
// and memberships. Owner only.
func (s *ProjectService) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return err
	}

	if err := s.policy.RequireOwner(ctx, projectID, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, projectID); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// toResponse resolves the owner display name. A lookup miss leaves the
// name empty rather than failing the operation.
func (s *ProjectService) toResponse(ctx context.Context, p *Project) *ProjectResponse {
	resp := &ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	if owner, err := s.users.GetByID(ctx, p.OwnerID); err == nil {
		resp.OwnerName = owner.Name
	}

	return resp
}

// toResponses resolves owner names for a batch of projects in one lookup.
func (s *ProjectService) toResponses(ctx context.Context, projects []*Project) []*ProjectResponse {
	ownerIDs := make([]uuid.UUID, 0, len(projects))
	seen := make(map[uuid.UUID]bool)
	for _, p := range projects {
		if !seen[p.OwnerID] {
			seen[p.OwnerID] = true
			ownerIDs = append(ownerIDs, p.OwnerID)
		}
	}

	names := make(map[uuid.UUID]string)
	if owners, err := s.users.ListByIDs(ctx, ownerIDs); err == nil {
		for _, o := range owners {
			names[o.ID] = o.Name
		}
	}

	responses := make([]*ProjectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, &ProjectResponse{
			ID:        p.ID,
			Name:      p.Name,
			OwnerID:   p.OwnerID,
			OwnerName: names[p.OwnerID],
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}

	return responses
}
