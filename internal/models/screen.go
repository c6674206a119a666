package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ScreenStatus is the lifecycle state of a screen.
type ScreenStatus string

const (
	// ScreenActive screens are reachable by users holding a permission for them.
	ScreenActive ScreenStatus = "ACTIVE"
	// ScreenInactive screens are unreachable even when a permission exists.
	ScreenInactive ScreenStatus = "INACTIVE"
)

// UnmarshalJSON upper-cases the status so "active" and "ACTIVE" are equal.
func (s *ScreenStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err //nolint:wrapcheck
	}

	*s = ScreenStatus(strings.ToUpper(strings.TrimSpace(raw)))

	return nil
}

// Screen is a catalog entry for one navigable application surface.
type Screen struct {
	// ID is the backend identifier of the screen.
	ID ID `json:"id" validate:"required"`
	// Name is the display name used in menus.
	Name string `json:"name" validate:"required"`
	// Description explains what the screen shows.
	Description string `json:"description"`
	// Route is the application route the screen is mounted on. Matching is exact.
	Route string `json:"route" validate:"required"`
	// Status decides whether the screen is reachable at all.
	Status ScreenStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	// CreatedAt is when the screen was added to the catalog.
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// IsActive reports whether the screen can be reached.
func (s *Screen) IsActive() bool {
	return s.Status == ScreenActive
}
