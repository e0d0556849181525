package domain

import "errors"

// ErrNotFound is returned by repo and service functions when a referenced
// resource (issue, tag, user, location, notification) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. unknown status value, inactive tag selected at
// issue creation). Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a mutation would violate a uniqueness rule,
// such as creating or renaming a tag to a name another tag already holds.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller is authenticated but not allowed
// to perform the operation (non-admin tag management, marking someone else's
// notification as read). Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthenticated is returned when an operation requires a resolvable
// caller identity and none was presented. Read paths never return this —
// they degrade to empty results instead. Handlers should map this to HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")
