// Package page serves the screen routes of the shell. The route guard has
// already decided access when a request gets here.
package page

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler/menu"
	"github.com/PropDesk/PropDesk-Console/internal/web/navigation"
)

// LoginTitle is the page title of the login route.
const LoginTitle = "Log in"

// View is the payload of a page route.
type View struct {
	Route      string              `json:"route"`
	Navigation *navigation.Context `json:"navigation"`
	State      handler.State       `json:"session"`
}

// Service is the page handler service.
type Service struct {
	sess *session.Session
}

// Init initializes the page handler. It registers a catch-all and must run
// after every other handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sess *session.Session) error {
	if app == nil || cfg == nil || sess == nil {
		return handler.ErrNilDependency
	}

	s.sess = sess

	app.Get(handler.RootPath, s.Root)
	app.Get(handler.RootPath+"*", s.Get)

	return nil
}

// Root redirects to the home route.
func (s *Service) Root(c fiber.Ctx) error {
	return c.Redirect().Status(fiber.StatusFound).To(s.sess.HomeRoute())
}

// Get renders the page of a screen route.
func (s *Service) Get(c fiber.Ctx) error {
	route := c.Path()

	if strings.HasPrefix(route, handler.APIPrefix+"/") {
		return fiber.ErrNotFound
	}

	if route == s.sess.LoginRoute() {
		return c.JSON(View{
			Route:      route,
			Navigation: navigation.NewContext(LoginTitle, "", route),
			State:      handler.NewState(s.sess),
		})
	}

	return c.JSON(View{
		Route:      route,
		Navigation: menu.Context(s.sess, route),
		State:      handler.NewState(s.sess),
	})
}
