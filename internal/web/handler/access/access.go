// Package access provides the endpoint that answers canAccess for a route.
package access

import (
	"github.com/gofiber/fiber/v3"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler"
)

const (
	// Path is the path of the access endpoint.
	Path = handler.APIPrefix + "/access"
	// QueryRoute names the route to check.
	QueryRoute = "route"
)

// Result is the answer for one route.
type Result struct {
	Route   string `json:"route"`
	Allowed bool   `json:"allowed"`
}

// Service is the access handler service.
type Service struct {
	sess *session.Session
}

// Init initializes the access handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sess *session.Session) error {
	if app == nil || cfg == nil || sess == nil {
		return handler.ErrNilDependency
	}

	s.sess = sess

	app.Get(Path, s.Get)

	return nil
}

// Get reports whether the current user may open the route in the query.
func (s *Service) Get(c fiber.Ctx) error {
	route := c.Query(QueryRoute)
	if route == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing route")
	}

	return c.JSON(Result{Route: route, Allowed: s.sess.CanAccess(route)})
}
