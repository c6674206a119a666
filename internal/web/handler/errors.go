package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/PropDesk/PropDesk-Console/internal/backend"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/token"
)

var (
	// ErrNilDependency is returned by Init when app, cfg or session is nil.
	ErrNilDependency = errors.New(ErrNilACSFatalLogMsg)

	// ErrInvalidBody is returned when a request body can't be decoded or validated.
	ErrInvalidBody = errors.New("invalid request body")
)

// Messages shown for the errors that backend.UserMessage does not cover.
const (
	MsgForbidden   = "You do not have access to this screen."
	MsgInvalidBody = "The request is incomplete or malformed."
)

// Error converts err into a *fiber.Error with the status code and the user
// facing message of its category.
func Error(err error) *fiber.Error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}

	switch {
	case errors.Is(err, session.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, MsgForbidden)
	case errors.Is(err, ErrInvalidBody):
		return fiber.NewError(fiber.StatusBadRequest, MsgInvalidBody)
	case errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, token.ErrAuthenticationRequired):
		return fiber.NewError(fiber.StatusUnauthorized, backend.UserMessage(backend.ErrUnauthorized))
	case errors.Is(err, backend.ErrRefreshTokenExpired),
		errors.Is(err, backend.ErrUnauthorized):
		return fiber.NewError(fiber.StatusUnauthorized, backend.UserMessage(err))
	case errors.Is(err, backend.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, backend.UserMessage(err))
	case errors.Is(err, backend.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, backend.UserMessage(err))
	case errors.Is(err, backend.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, backend.UserMessage(err))
	case errors.Is(err, backend.ErrNetworkUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, backend.UserMessage(err))
	default:
		return fiber.NewError(fiber.StatusInternalServerError, backend.UserMessage(err))
	}
}
