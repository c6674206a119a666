package permission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/PropDesk/PropDesk-Console/internal/backend"
	"github.com/PropDesk/PropDesk-Console/internal/logger"
	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// Catalog is the part of the backend client the repository calls.
type Catalog interface {
	ListScreens(ctx context.Context) ([]models.Screen, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListPermissions(ctx context.Context, userID models.ID) ([]models.Permission, error)
	CreatePermission(ctx context.Context, userID, screenID models.ID) (*models.Permission, error)
	DeletePermission(ctx context.Context, id models.ID) error
	CreateScreen(ctx context.Context, s models.Screen) (*models.Screen, error)
	DeleteScreen(ctx context.Context, id models.ID) error
}

// Repository loads permission data from the backend and keeps the current
// Snapshot.
type Repository struct {
	catalog Catalog
	prune   bool
	log     zerolog.Logger

	mu         sync.Mutex // serialises writers
	generation uint64
	current    atomic.Pointer[Snapshot]
}

// Option configures a Repository.
type Option func(*Repository)

// WithPruneOnBulkAssign makes BulkAssign behave like Reconcile.
func WithPruneOnBulkAssign(prune bool) Option {
	return func(r *Repository) {
		r.prune = prune
	}
}

// NewRepository creates an empty repository.
func NewRepository(catalog Catalog, opts ...Option) (*Repository, error) {
	if catalog == nil {
		return nil, ErrCatalogNil
	}

	r := &Repository{catalog: catalog, log: logger.Component("permission")}
	r.current.Store(emptySnapshot())

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Snapshot returns the current immutable view.
func (r *Repository) Snapshot() *Snapshot {
	return r.current.Load()
}

// Reset drops all loaded data. Loads that are still in flight are discarded
// when they finish.
func (r *Repository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	r.current.Store(emptySnapshot())
}

// begin returns the generation a load starts in.
func (r *Repository) begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.generation
}

// apply publishes a modified copy of the snapshot, unless the repository
// was reset since gen.
func (r *Repository) apply(gen uint64, fn func(*Snapshot)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		return ErrStale
	}

	next := r.current.Load().clone()
	fn(next)
	r.current.Store(next)

	return nil
}

// LoadAllScreens replaces the screen catalog. On failure the catalog is
// emptied and the error is returned for the caller to surface.
func (r *Repository) LoadAllScreens(ctx context.Context) ([]models.Screen, error) {
	gen := r.begin()

	screens, err := r.catalog.ListScreens(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to load screens")

		screens = nil
		err = fmt.Errorf("failed to load screens: %w", err)
	}

	if errApply := r.apply(gen, func(s *Snapshot) {
		s.screens = make(map[models.ID]models.Screen, len(screens))
		for _, sc := range screens {
			s.screens[sc.ID] = sc
		}
	}); errApply != nil {
		return []models.Screen{}, errApply
	}

	return r.Snapshot().Screens(), err
}

// LoadAllUsers replaces the user list. On failure the list is emptied and
// the error is returned.
func (r *Repository) LoadAllUsers(ctx context.Context) ([]models.User, error) {
	gen := r.begin()

	users, err := r.catalog.ListUsers(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to load users")

		users = nil
		err = fmt.Errorf("failed to load users: %w", err)
	}

	if errApply := r.apply(gen, func(s *Snapshot) {
		s.users = make(map[models.ID]models.User, len(users))
		for _, u := range users {
			s.users[u.ID] = u
		}
	}); errApply != nil {
		return []models.User{}, errApply
	}

	return r.Snapshot().Users(), err
}

// LoadPermissionsForUser replaces the permission edges of userID. On
// failure the user's edges are emptied and the error is returned.
func (r *Repository) LoadPermissionsForUser(ctx context.Context, userID models.ID) ([]models.Permission, error) {
	if userID.IsZero() {
		return []models.Permission{}, ErrEmptyUserID
	}

	gen := r.begin()

	edges, err := r.catalog.ListPermissions(ctx, userID)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to load permissions")

		edges = nil
		err = fmt.Errorf("failed to load permissions of user %s: %w", userID, err)
	}

	edges = dedupe(userID, edges)

	if errApply := r.apply(gen, func(s *Snapshot) {
		s.permissions[userID] = edges
	}); errApply != nil {
		return []models.Permission{}, errApply
	}

	return r.Snapshot().PermissionsFor(userID), err
}

// CreatePermission grants userID access to screenID. A missing user or
// screen is returned as an error wrapping backend.ErrNotFound.
func (r *Repository) CreatePermission(ctx context.Context, userID, screenID models.ID) (*models.Permission, error) {
	if userID.IsZero() {
		return nil, ErrEmptyUserID
	}

	gen := r.begin()

	p, err := r.catalog.CreatePermission(ctx, userID, screenID)
	if err != nil {
		return nil, fmt.Errorf("failed to create permission for screen %s: %w", screenID, err)
	}

	_ = r.apply(gen, func(s *Snapshot) {
		s.permissions[userID] = dedupe(userID, append(append([]models.Permission{}, s.permissions[userID]...), *p))
	})

	return p, nil
}

// DeletePermission removes one permission edge.
func (r *Repository) DeletePermission(ctx context.Context, id models.ID) error {
	gen := r.begin()

	if err := r.catalog.DeletePermission(ctx, id); err != nil {
		return fmt.Errorf("failed to delete permission %s: %w", id, err)
	}

	_ = r.apply(gen, func(s *Snapshot) {
		for userID, edges := range s.permissions {
			s.permissions[userID] = without(edges, func(p models.Permission) bool { return p.ID == id })
		}
	})

	return nil
}

// CurrentSelection returns the screens currently assigned to userID, the
// set a bulk assign dialog starts from.
func (r *Repository) CurrentSelection(userID models.ID) []models.ID {
	return r.Snapshot().ScreenIDsFor(userID)
}

// CreateScreen adds a screen to the catalog.
func (r *Repository) CreateScreen(ctx context.Context, screen models.Screen) (*models.Screen, error) {
	gen := r.begin()

	created, err := r.catalog.CreateScreen(ctx, screen)
	if err != nil {
		return nil, fmt.Errorf("failed to create screen %q: %w", screen.Route, err)
	}

	_ = r.apply(gen, func(s *Snapshot) {
		s.screens[created.ID] = *created
	})

	return created, nil
}

// DeleteScreen removes a screen and the loaded edges pointing to it.
func (r *Repository) DeleteScreen(ctx context.Context, id models.ID) error {
	gen := r.begin()

	if err := r.catalog.DeleteScreen(ctx, id); err != nil {
		return fmt.Errorf("failed to delete screen %s: %w", id, err)
	}

	_ = r.apply(gen, func(s *Snapshot) {
		delete(s.screens, id)

		for userID, edges := range s.permissions {
			s.permissions[userID] = without(edges, func(p models.Permission) bool { return p.ScreenID == id })
		}
	})

	return nil
}

// dedupe keeps one edge per screen and drops edges of other users.
func dedupe(userID models.ID, edges []models.Permission) []models.Permission {
	seen := make(map[models.ID]struct{}, len(edges))
	out := make([]models.Permission, 0, len(edges))

	for _, p := range edges {
		if p.UserID != userID {
			continue
		}

		if _, ok := seen[p.ScreenID]; ok {
			continue
		}

		seen[p.ScreenID] = struct{}{}
		out = append(out, p)
	}

	return out
}

func without(edges []models.Permission, drop func(models.Permission) bool) []models.Permission {
	out := make([]models.Permission, 0, len(edges))

	for _, p := range edges {
		if !drop(p) {
			out = append(out, p)
		}
	}

	return out
}

// isTolerated reports whether a create failure means the edge already exists.
func isTolerated(err error) bool {
	return errors.Is(err, backend.ErrConflict)
}
