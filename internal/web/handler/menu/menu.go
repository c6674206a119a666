// Package menu provides the navigation endpoint of the shell.
package menu

import (
	"github.com/gofiber/fiber/v3"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler"
	"github.com/PropDesk/PropDesk-Console/internal/web/navigation"
)

const (
	// Path is the path of the navigation endpoint.
	Path = handler.APIPrefix + "/navigation"
	// QueryRoute selects the active page; the home route when empty.
	QueryRoute = "route"
)

// Service is the menu handler service.
type Service struct {
	sess *session.Session
}

// Init initializes the menu handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sess *session.Session) error {
	if app == nil || cfg == nil || sess == nil {
		return handler.ErrNilDependency
	}

	s.sess = sess

	app.Get(Path, s.Get)

	return nil
}

// Get returns the menu and breadcrumbs for the requested page.
func (s *Service) Get(c fiber.Ctx) error {
	return c.JSON(Context(s.sess, c.Query(QueryRoute)))
}

// Context builds the navigation context of route for the current user.
func Context(sess *session.Session, route string) *navigation.Context {
	if route == "" {
		route = sess.HomeRoute()
	}

	return navigation.Build(route, sess.HomeRoute(), sess.Snapshot().Screens(), sess.AccessibleRoutes())
}
