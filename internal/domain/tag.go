package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tag is an administrator-curated label attachable to issues.
// Name is unique (case-sensitive). Inactive tags stay attached to existing
// issues but are excluded from resident-facing selection listings.
// IssueCount is populated by query operations that join the membership table;
// it is zero on freshly created tags.
type Tag struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	IssueCount  int64     `json:"issue_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpdateTag carries the fields for a tag update. Name and Active fully
// overwrite; Description is only overwritten when non-nil.
type UpdateTag struct {
	Name        string
	Description *string
	Active      bool
}
