package domain

import "github.com/google/uuid"

// Location is a node in the administrative geographic hierarchy
// (province → district → sector → cell → village). The hierarchy itself is
// maintained by an external collaborator; the core only resolves references.
type Location struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Kind     string     `json:"kind,omitempty"`
	Code     *int       `json:"code,omitempty"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}
