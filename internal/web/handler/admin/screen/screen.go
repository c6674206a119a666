// Package screen provides the admin endpoints of the screen catalog.
package screen

import (
	"github.com/gofiber/fiber/v3"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/models"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler"
)

const (
	// Path is the root of the screen endpoints.
	Path = handler.APIPrefix + "/screens"
	// IDPath addresses one screen.
	IDPath = "/:id"
)

// Form is the body of a new screen.
type Form struct {
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description"`
	Route       string              `json:"route" validate:"required,startswith=/"`
	Status      models.ScreenStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// Service is the screen handler service.
type Service struct {
	sess *session.Session
}

// Init initializes the screen handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sess *session.Session) error {
	if app == nil || cfg == nil || sess == nil {
		return handler.ErrNilDependency
	}

	s.sess = sess

	router := app.Group(Path)
	router.Get(handler.RootPath, s.Get)
	router.Post(handler.RootPath, s.Post)
	router.Delete(IDPath, s.Delete)

	return nil
}

// Get lists the loaded catalog. Only admins see inactive screens.
func (s *Service) Get(c fiber.Ctx) error {
	screens := s.sess.Snapshot().Screens()
	if s.sess.IsAdmin() {
		return c.JSON(screens)
	}

	active := make([]models.Screen, 0, len(screens))

	for i := range screens {
		if screens[i].IsActive() {
			active = append(active, screens[i])
		}
	}

	return c.JSON(active)
}

// Post adds a screen to the catalog.
func (s *Service) Post(c fiber.Ctx) error {
	form := new(Form)

	if err := c.Bind().JSON(form); err != nil {
		return handler.Error(handler.ErrInvalidBody)
	}

	if err := models.Validate(form); err != nil {
		return handler.Error(handler.ErrInvalidBody)
	}

	created, err := s.sess.CreateScreen(c.Context(), models.Screen{
		Name:        form.Name,
		Description: form.Description,
		Route:       form.Route,
		Status:      form.Status,
	})
	if err != nil {
		return handler.Error(err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Delete removes a screen and the permissions pointing to it.
func (s *Service) Delete(c fiber.Ctx) error {
	if err := s.sess.DeleteScreen(c.Context(), models.ID(c.Params("id"))); err != nil {
		return handler.Error(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
