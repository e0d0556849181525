package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role partitions users into the two visibility classes the scope resolver
// understands: administrators see everything, residents see their own records.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleResident Role = "RESIDENT"
)

// User is read-only context supplied by the authentication collaborator.
// The core never creates or mutates users; it resolves them by id to scope
// queries and address notifications.
type User struct {
	ID          uuid.UUID  `json:"id"`
	FullName    string     `json:"full_name,omitempty"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Role        Role       `json:"role"`
	LocationID  *uuid.UUID `json:"location_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DisplayName returns the user's full name, falling back to the email
// address when no name is set. Used when composing notification messages.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
