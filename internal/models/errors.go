package models

import "errors"

var (
	// ErrInvalidID is returned when an identifier is neither a JSON string nor a JSON number.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidRole is returned when a role payload has an unsupported JSON shape.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidPayload is returned when a decoded record fails validation.
	ErrInvalidPayload = errors.New("invalid payload")
)
