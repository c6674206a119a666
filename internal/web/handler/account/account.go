// Package account provides the endpoints that report and renew the session.
package account

import (
	"github.com/gofiber/fiber/v3"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler"
)

const (
	// Path is the root of the session endpoints.
	Path = handler.APIPrefix + "/session"
	// RefreshPath renews the access token.
	RefreshPath = "/refresh"
	// PermissionsPath reloads the permissions of the current user.
	PermissionsPath = "/permissions"
)

// Service is the account handler service.
type Service struct {
	sess *session.Session
}

// Init initializes the account handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sess *session.Session) error {
	if app == nil || cfg == nil || sess == nil {
		return handler.ErrNilDependency
	}

	s.sess = sess

	router := app.Group(Path)
	router.Get(handler.RootPath, s.Get)
	router.Post(RefreshPath, s.PostRefresh)
	router.Post(PermissionsPath, s.PostPermissions)

	return nil
}

// Get returns the session state. It answers for anonymous callers too.
func (s *Service) Get(c fiber.Ctx) error {
	return c.JSON(handler.NewState(s.sess))
}

// PostRefresh exchanges the refresh token now.
func (s *Service) PostRefresh(c fiber.Ctx) error {
	if err := s.sess.RefreshToken(c.Context()); err != nil {
		return handler.Error(err)
	}

	return c.JSON(handler.NewState(s.sess))
}

// PostPermissions reloads the screen catalog and the user's permissions.
func (s *Service) PostPermissions(c fiber.Ctx) error {
	if err := s.sess.RefreshPermissions(c.Context()); err != nil {
		return handler.Error(err)
	}

	return c.JSON(handler.NewState(s.sess))
}
