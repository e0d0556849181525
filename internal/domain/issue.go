// Package domain contains the core data types for the Community Alert backend.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an issue. Every status is reachable from
// every other status — there is no transition table and no terminal state.
// Administrators use this to manually correct mis-set states.
type Status string

const (
	StatusReported   Status = "REPORTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusReported, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Issue represents a resident-submitted report of a local problem.
// Location and ReportedBy are nullable references, eagerly populated by the
// repo so no caller ever has to chase a half-loaded relation.
// DateResolved is stamped on every transition into RESOLVED and never
// cleared afterwards, even if the issue later leaves RESOLVED.
type Issue struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Category     string     `json:"category,omitempty"`
	Status       Status     `json:"status"`
	Location     *Location  `json:"location,omitempty"`
	ReportedBy   *User      `json:"reported_by,omitempty"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	DateReported time.Time  `json:"date_reported"`
	DateResolved *time.Time `json:"date_resolved,omitempty"`
	Tags         []Tag      `json:"tags,omitempty"`
}

// CreateIssue carries the caller-supplied fields for issue creation.
// Status and DateReported are never taken from the caller — the service
// stamps them itself.
type CreateIssue struct {
	Title        string
	Description  string
	Category     string
	LocationID   *uuid.UUID
	ReportedByID *uuid.UUID
	PhotoURL     string
	TagIDs       []uuid.UUID
}

// UpdateIssue carries the fields replaceable via the plain update operation.
// Status, dates, reporter, and tags are deliberately absent: they change only
// through their dedicated operations.
type UpdateIssue struct {
	Title       string
	Description string
	Category    string
	LocationID  *uuid.UUID
}
