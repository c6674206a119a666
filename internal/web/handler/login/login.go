// Package login provides the endpoint that starts a session.
package login

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/models"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.APIPrefix + "/session/login"
)

// Form is the login request body.
type Form struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Service is the login handler service.
type Service struct {
	cfg  *config.Config
	sess *session.Session
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sess *session.Session) error {
	if app == nil || cfg == nil || sess == nil {
		return handler.ErrNilDependency
	}

	s.cfg = cfg
	s.sess = sess

	app.Post(Path, s.Post)

	return nil
}

// Post handles the login form submission.
func (s *Service) Post(c fiber.Ctx) error {
	form := new(Form)

	if err := c.Bind().Body(form); err != nil {
		log.Debug().Err(err).Msg("can't parse login form")
		return handler.Error(handler.ErrInvalidBody)
	}

	if err := models.Validate(form); err != nil {
		return handler.Error(handler.ErrInvalidBody)
	}

	if err := s.sess.Login(c.Context(), form.Email, form.Password); err != nil {
		return loginError(err)
	}

	state := handler.NewState(s.sess)
	state.Redirect = s.sess.HomeRoute()

	return c.JSON(state)
}

// loginError keeps the wording of the login notice for rejected credentials.
func loginError(err error) *fiber.Error {
	fe := handler.Error(err)
	if fe.Code == fiber.StatusUnauthorized {
		fe.Message = MsgInvalidCredentials
	}

	return fe
}
