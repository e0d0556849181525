package domain

import "github.com/google/uuid"

// Scope is the single visibility decision applied to every list, count,
// aggregate, and search in both the issue and notification flows.
// It is derived once per request from the caller and handed down, so the
// ADMIN/RESIDENT branch lives here and nowhere else.
//
// The three shapes:
//   - none: no caller identity — nothing is visible. Callers must
//     short-circuit to an empty result instead of hitting storage.
//   - all:  caller is an administrator — everything is visible.
//   - own:  caller is a resident — only records they own are visible
//     (reported_by for issues, recipient_id for notifications).
type Scope struct {
	all    bool
	userID uuid.UUID
	some   bool
}

// ScopeFor derives the visibility scope for the given caller.
// A nil user yields the empty scope.
func ScopeFor(u *User) Scope {
	if u == nil {
		return Scope{}
	}
	if u.Role == RoleAdmin {
		return Scope{all: true}
	}
	return Scope{userID: u.ID, some: true}
}

// IsNone reports whether nothing is in scope. Callers must return an
// empty page / zero count without touching storage when this is true.
func (s Scope) IsNone() bool { return !s.all && !s.some }

// IsAll reports whether everything is in scope (administrator caller).
func (s Scope) IsAll() bool { return s.all }

// OwnerID returns the resident's user id when the scope is owner-limited.
// The second return is false for the none and all scopes.
func (s Scope) OwnerID() (uuid.UUID, bool) {
	if s.some {
		return s.userID, true
	}
	return uuid.UUID{}, false
}

// Allows reports whether an entity owned by owner is visible in this scope.
// A nil owner reference is visible only to administrators.
func (s Scope) Allows(owner *uuid.UUID) bool {
	if s.all {
		return true
	}
	if !s.some || owner == nil {
		return false
	}
	return *owner == s.userID
}
