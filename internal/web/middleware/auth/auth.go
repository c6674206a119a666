package auth

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	coreauth "github.com/PropDesk/PropDesk-Console/internal/auth"
	"github.com/PropDesk/PropDesk-Console/internal/backend"
	adapter "github.com/PropDesk/PropDesk-Console/internal/logger/adapter/fiber"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler"
)

// Config configures the route guard.
type Config struct {
	// Session answers the authentication and access questions.
	Session *session.Session

	// Open paths skip the guard entirely, e.g. health checks and the login endpoint.
	Open []string

	// Anonymous API paths are reachable without a session but still get the
	// user id in locals when there is one.
	Anonymous []string
}

// New returns the route guard. Unauthenticated API calls get 401, other
// unauthenticated requests are redirected to the login route. Screen routes
// the user may not open get 403.
func New(cfg Config) fiber.Handler {
	sess := cfg.Session

	return func(c fiber.Ctx) error {
		p := c.Path()

		if slices.Contains(cfg.Open, p) {
			return c.Next()
		}

		authenticated := sess.IsAuthenticated()
		if authenticated {
			if user := sess.CurrentUser(); user != nil {
				c.Locals(adapter.LocalsUserID, user.ID.String())
			}
		}

		if IsAPI(c) {
			if !authenticated && !slices.Contains(cfg.Anonymous, p) {
				return fiber.NewError(fiber.StatusUnauthorized, backend.UserMessage(backend.ErrUnauthorized))
			}

			return c.Next()
		}

		if IsLoginPage(c, sess) {
			if authenticated {
				return c.Redirect().Status(fiber.StatusFound).To(sess.HomeRoute())
			}

			return c.Next()
		}

		if coreauth.IsPublic(p) {
			return c.Next()
		}

		if !authenticated {
			return c.Redirect().Status(fiber.StatusFound).To(sess.LoginRoute())
		}

		if p == handler.RootPath || p == sess.HomeRoute() {
			return c.Next()
		}

		if !sess.CanAccess(p) {
			log.Debug().Str("route", p).Msg("route denied")
			return fiber.NewError(fiber.StatusForbidden, handler.MsgForbidden)
		}

		return c.Next()
	}
}

// IsAPI checks if the current request is for a JSON endpoint.
func IsAPI(c fiber.Ctx) bool {
	p := c.Path()
	return p == handler.APIPrefix || strings.HasPrefix(p, handler.APIPrefix+"/")
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c fiber.Ctx, sess *session.Session) bool {
	return c.Path() == sess.LoginRoute()
}
