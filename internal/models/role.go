package models

import (
	"encoding/json"
	"strings"
)

// Role is the canonical user role. The backend representations are mapped
// onto one of the two values once, when a payload is decoded.
type Role string

const (
	// RoleUser is a regular user whose access is decided by screen permissions.
	RoleUser Role = "User"
	// RoleAdmin bypasses every screen permission check.
	RoleAdmin Role = "Admin"
)

// adminSpellings lists the lower-cased role names the backend uses for admins.
var adminSpellings = map[string]struct{}{ //nolint:gochecknoglobals
	"admin":         {},
	"administrator": {},
	"role_admin":    {},
	"superadmin":    {},
	"super_admin":   {},
}

// ParseRole maps a raw role name onto the canonical Role.
// Anything that is not a known admin spelling is a regular user.
func ParseRole(raw string) Role {
	if _, ok := adminSpellings[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return RoleAdmin
	}

	return RoleUser
}

// UnmarshalJSON accepts a role name ("Admin", "ADMIN", "role_admin", ...),
// a role object ({"name": "admin"}) or null.
func (r *Role) UnmarshalJSON(b []byte) error {
	switch {
	case string(b) == "null":
		*r = RoleUser
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err //nolint:wrapcheck
		}

		*r = ParseRole(s)

		return nil
	case len(b) > 0 && b[0] == '{':
		var obj struct {
			Name string `json:"name"`
			Role string `json:"role"`
		}

		if err := json.Unmarshal(b, &obj); err != nil {
			return err //nolint:wrapcheck
		}

		if obj.Name == "" {
			obj.Name = obj.Role
		}

		*r = ParseRole(obj.Name)

		return nil
	}

	return ErrInvalidRole
}

// IsAdmin reports whether the role is the admin role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
