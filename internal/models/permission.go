package models

import "time"

const (
	// UnknownUserLabel is rendered for permissions whose user is not loaded.
	UnknownUserLabel = "Unknown User"
	// UnknownScreenLabel is rendered for permissions whose screen is not loaded.
	UnknownScreenLabel = "Unknown Screen"
)

// Permission grants one user access to one screen. There is no access level,
// only presence or absence of the edge.
type Permission struct {
	ID        ID        `json:"id" validate:"required"`
	UserID    ID        `json:"userId" validate:"required"`
	ScreenID  ID        `json:"screenId" validate:"required"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}
