package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/member"
)

var ErrProjectNotFound = errors.New("project not found")

// ProjectRepo handles database operations for projects
type ProjectRepo struct {
	db *sqlx.DB
}

func NewProjectRepo(db *sqlx.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// CreateWithOwner inserts the project row and the creator's OWNER
// membership row in a single transaction. Either both rows become visible
// or neither does.
func (r *ProjectRepo) CreateWithOwner(ctx context.Context, name string, ownerID uuid.UUID) (*Project, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id, created_at, updated_at
	`

	var p Project
	if err := tx.GetContext(ctx, &p, query, name, ownerID); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	memberQuery := `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, memberQuery, p.ID, ownerID, member.RoleOwner); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit project creation: %w", err)
	}

	return &p, nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var p Project
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}

// ListByMember retrieves every project the user has a membership row on.
func (r *ProjectRepo) ListByMember(ctx context.Context, userID uuid.UUID) ([]*Project, error) {
	query := `
		SELECT p.id, p.name, p.owner_id, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members pm ON pm.project_id = p.id
		WHERE pm.user_id = $1
		ORDER BY p.created_at DESC
	`

	var projects []*Project
	err := r.db.SelectContext(ctx, &projects, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// Rename updates the project name
func (r *ProjectRepo) Rename(ctx context.Context, id uuid.UUID, name string) (*Project, error) {
	query := `
		UPDATE projects
		SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, name, owner_id, created_at, updated_at
	`

	var p Project
	err := r.db.GetContext(ctx, &p, query, name, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to rename project: %w", err)
	}

	return &p, nil
}

// Delete removes a project by ID. Membership and issue rows cascade at the
// schema level.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProjectNotFound
	}

	return nil
}
