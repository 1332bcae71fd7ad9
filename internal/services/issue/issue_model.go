package issue

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Issue is the stored row. Version is a compare-and-swap counter bumped by
// the store on every successful update.
type Issue struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	ProjectID   uuid.UUID      `db:"project_id" json:"project_id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Status      Status         `db:"status" json:"status"`
	Priority    Priority       `db:"priority" json:"priority"`
	AssigneeID  *uuid.UUID     `db:"assignee_id" json:"assignee_id,omitempty"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
	Version     int64          `db:"version" json:"version"`
}

// CreateIssueRequest captures payload for creating an issue. Status and
// priority default to OPEN/MEDIUM when omitted.
type CreateIssueRequest struct {
	ProjectID   uuid.UUID  `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// UpdateIssueRequest captures payload for a partial update. Title and
// description always overwrite the stored values; the pointer fields only
// apply when present, so a client can move just a status without resending
// the whole issue.
type UpdateIssueRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
}

// IssueResponse is the enriched representation returned to clients and
// broadcast to subscribers. Display names are omitted when the referenced
// row is gone.
type IssueResponse struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	ProjectName  string     `json:"project_name,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	AssigneeID   *uuid.UUID `json:"assignee_id,omitempty"`
	AssigneeName string     `json:"assignee_name,omitempty"`
	Tags         []string   `json:"tags"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Version      int64      `json:"version"`
}

// Filter narrows a project's issue listing. Nil fields match everything;
// Search matches the title case-insensitively.
type Filter struct {
	ProjectID  uuid.UUID
	Status     *Status
	Priority   *Priority
	AssigneeID *uuid.UUID
	Search     string

	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

// IssuePage is one page of a filtered listing.
type IssuePage struct {
	Items []*IssueResponse `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}
