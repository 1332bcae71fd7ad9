package project

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateProjectRequest captures payload for creating a project
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// UpdateProjectRequest captures payload for renaming a project
type UpdateProjectRequest struct {
	Name string `json:"name"`
}

// ProjectResponse is the enriched representation returned to clients.
// OwnerName is resolved from the owner row and omitted when the lookup
// misses.
type ProjectResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	OwnerName string    `json:"owner_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
