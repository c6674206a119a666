// Package logout provides the endpoint that ends a session.
package logout

import (
	"github.com/gofiber/fiber/v3"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler"
)

const (
	// Path is the path of the logout endpoint.
	Path = handler.APIPrefix + "/session/logout"
)

// Service is the logout handler service.
type Service struct {
	sess *session.Session
}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sess *session.Session) error {
	if app == nil || cfg == nil || sess == nil {
		return handler.ErrNilDependency
	}

	s.sess = sess

	app.Post(Path, s.Post)

	return nil
}

// Post ends the session. Logging out twice is not an error.
func (s *Service) Post(c fiber.Ctx) error {
	s.sess.Logout(c.Context())

	state := handler.NewState(s.sess)
	state.Redirect = s.sess.LoginRoute()

	return c.JSON(state)
}
