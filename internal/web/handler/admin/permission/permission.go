// Package permission provides the admin endpoints that assign screens to users.
package permission

import (
	"github.com/gofiber/fiber/v3"

	"github.com/PropDesk/PropDesk-Console/internal/backend"
	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/models"
	corepermission "github.com/PropDesk/PropDesk-Console/internal/permission"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler"
)

const (
	// Path is the root of the permission endpoints.
	Path = handler.APIPrefix + "/permissions"
	// BulkPath assigns a set of screens to one user.
	BulkPath = "/bulk"
	// UserPath lists the permissions of one user.
	UserPath = "/:userId"
)

// BulkForm is the body of a bulk assignment.
type BulkForm struct {
	UserID    models.ID   `json:"userId" validate:"required"`
	ScreenIDs []models.ID `json:"screenIds"`
	// Prune also removes the screens missing from ScreenIDs.
	Prune bool `json:"prune"`
}

// BulkResponse reports the outcome per screen.
type BulkResponse struct {
	Created   []models.ID          `json:"created"`
	Unchanged []models.ID          `json:"unchanged"`
	Removed   []models.ID          `json:"removed"`
	Failed    map[models.ID]string `json:"failed"`
}

// SelectionResponse describes the permissions of a user.
type SelectionResponse struct {
	UserID      models.ID                    `json:"userId"`
	Permissions []corepermission.Description `json:"permissions"`
	Selected    []models.ID                  `json:"selected"`
}

// Service is the permission handler service.
type Service struct {
	sess *session.Session
}

// Init initializes the permission handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sess *session.Session) error {
	if app == nil || cfg == nil || sess == nil {
		return handler.ErrNilDependency
	}

	s.sess = sess

	router := app.Group(Path)
	router.Post(BulkPath, s.PostBulk)
	router.Get(UserPath, s.Get)

	return nil
}

// Get returns the permissions of a user and the screens a bulk assignment
// for that user starts from.
func (s *Service) Get(c fiber.Ctx) error {
	userID := models.ID(c.Params("userId"))

	described, selected, err := s.sess.Selection(c.Context(), userID)
	if err != nil {
		return handler.Error(err)
	}

	if selected == nil {
		selected = []models.ID{}
	}

	return c.JSON(SelectionResponse{UserID: userID, Permissions: described, Selected: selected})
}

// PostBulk assigns screens to a user. Partial failures answer 207 with the
// failed screens listed.
func (s *Service) PostBulk(c fiber.Ctx) error {
	form := new(BulkForm)

	if err := c.Bind().JSON(form); err != nil {
		return handler.Error(handler.ErrInvalidBody)
	}

	if err := models.Validate(form); err != nil {
		return handler.Error(handler.ErrInvalidBody)
	}

	res, err := s.sess.AssignScreens(c.Context(), form.UserID, form.ScreenIDs, form.Prune)
	if res == nil {
		return handler.Error(err)
	}

	out := BulkResponse{
		Created:   nonNil(res.Created),
		Unchanged: nonNil(res.Unchanged),
		Removed:   nonNil(res.Removed),
		Failed:    make(map[models.ID]string, len(res.Failed)),
	}

	for id, failure := range res.Failed {
		out.Failed[id] = backend.UserMessage(failure)
	}

	if err != nil {
		return c.Status(fiber.StatusMultiStatus).JSON(out)
	}

	return c.JSON(out)
}

func nonNil(ids []models.ID) []models.ID {
	if ids == nil {
		return []models.ID{}
	}

	return ids
}
