package models

import (
	"strings"
	"time"
)

// User is the profile returned by the backend's current user endpoint.
type User struct {
	// ID is the backend identifier of the user.
	ID ID `json:"id" validate:"required"`
	// Email is the login email address.
	Email string `json:"email" validate:"required,email"`
	// FirstName is the user's given name.
	FirstName string `json:"firstName"`
	// LastName is the user's family name.
	LastName string `json:"lastName"`
	// Role is the canonical role, normalised when the payload was decoded.
	Role Role `json:"role"`
	// PhoneNumber is optional.
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	// CompanyName is an optional profile field shown in the shell header.
	CompanyName string `json:"companyName,omitempty"`
	// CreatedAt is when the account was created on the backend.
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// FullName joins first and last name, falling back to the email address.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}

	return name
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}

// ApplyEmailHeuristic promotes the user to admin when the email address
// contains "admin". Only used when explicitly enabled in the configuration.
func (u *User) ApplyEmailHeuristic() {
	if u == nil || u.Role.IsAdmin() {
		return
	}

	if strings.Contains(strings.ToLower(u.Email), "admin") {
		u.Role = RoleAdmin
	}
}
