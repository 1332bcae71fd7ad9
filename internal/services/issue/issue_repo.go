package issue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrIssueNotFound   = errors.New("issue not found")
	ErrVersionConflict = errors.New("issue was modified concurrently")
)

// sortColumns whitelists the sortable fields. Keys are the API spelling.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
}

// IssueRepo handles database operations for issues
type IssueRepo struct {
	db *sqlx.DB
}

func NewIssueRepo(db *sqlx.DB) *IssueRepo {
	return &IssueRepo{db: db}
}

func (r *IssueRepo) Create(ctx context.Context, in *Issue) (*Issue, error) {
	query := `
		INSERT INTO issues (project_id, title, description, status, priority, assignee_id, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, project_id, title, description, status, priority, assignee_id, tags, created_at, updated_at, version
	`

	var created Issue
	err := r.db.GetContext(ctx, &created, query,
		in.ProjectID,
		in.Title,
		in.Description,
		in.Status,
		in.Priority,
		in.AssigneeID,
		in.Tags,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	return &created, nil
}

func (r *IssueRepo) GetByID(ctx context.Context, id uuid.UUID) (*Issue, error) {
	query := `
		SELECT id, project_id, title, description, status, priority, assignee_id, tags, created_at, updated_at, version
		FROM issues
		WHERE id = $1
	`

	var i Issue
	err := r.db.GetContext(ctx, &i, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}

	return &i, nil
}

// UpdateVersioned writes the issue conditionally on its version being
// unchanged since it was read, bumping the counter on success. A stale
// version yields ErrVersionConflict; the losing writer never overwrites
// the committed row.
func (r *IssueRepo) UpdateVersioned(ctx context.Context, in *Issue) (*Issue, error) {
	query := `
		UPDATE issues
		SET title = $1, description = $2, status = $3, priority = $4, assignee_id = $5, tags = $6,
		    updated_at = NOW(), version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING id, project_id, title, description, status, priority, assignee_id, tags, created_at, updated_at, version
	`

	var updated Issue
	err := r.db.GetContext(ctx, &updated, query,
		in.Title,
		in.Description,
		in.Status,
		in.Priority,
		in.AssigneeID,
		in.Tags,
		in.ID,
		in.Version,
	)
	if err == nil {
		return &updated, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}

	// No row matched: either the issue is gone or the version is stale.
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM issues WHERE id = $1)`, in.ID); err != nil {
		return nil, fmt.Errorf("failed to check issue: %w", err)
	}
	if exists {
		return nil, ErrVersionConflict
	}

	return nil, ErrIssueNotFound
}

func (r *IssueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM issues WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrIssueNotFound
	}

	return nil
}

// ListFiltered returns one page of a project's issues plus the total count
// across all pages. Filters combine with AND; absent filters match
// everything.
func (r *IssueRepo) ListFiltered(ctx context.Context, f Filter) ([]*Issue, int64, error) {
	whereParts := []string{"project_id = $1"}
	args := []interface{}{f.ProjectID}

	if f.Status != nil {
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *f.Status)
	}

	if f.Priority != nil {
		whereParts = append(whereParts, fmt.Sprintf("priority = $%d", len(args)+1))
		args = append(args, *f.Priority)
	}

	if f.AssigneeID != nil {
		whereParts = append(whereParts, fmt.Sprintf("assignee_id = $%d", len(args)+1))
		args = append(args, *f.AssigneeID)
	}

	if f.Search != "" {
		whereParts = append(whereParts, fmt.Sprintf("title ILIKE $%d", len(args)+1))
		args = append(args, "%"+f.Search+"%")
	}

	where := strings.Join(whereParts, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM issues WHERE %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count issues: %w", err)
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, project_id, title, description, status, priority, assignee_id, tags, created_at, updated_at, version
		FROM issues
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, column, direction, len(args)+1, len(args)+2)
	args = append(args, f.Size, f.Page*f.Size)

	var issues []*Issue
	if err := r.db.SelectContext(ctx, &issues, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}

	return issues, total, nil
}
