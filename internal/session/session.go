package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/PropDesk/PropDesk-Console/internal/auth"
	"github.com/PropDesk/PropDesk-Console/internal/backend"
	"github.com/PropDesk/PropDesk-Console/internal/credential"
	"github.com/PropDesk/PropDesk-Console/internal/logger"
	"github.com/PropDesk/PropDesk-Console/internal/models"
	"github.com/PropDesk/PropDesk-Console/internal/permission"
	"github.com/PropDesk/PropDesk-Console/internal/token"
)

// Options tune a Session. Zero values fall back to the defaults.
type Options struct {
	HomeRoute         string
	LoginRoute        string
	Persistent        bool
	CheckInterval     time.Duration
	RefreshLeeway     time.Duration
	PruneOnBulkAssign bool
	Navigator         Navigator
	Notifier          Notifier
}

// Session is the authentication state of one console process.
type Session struct {
	store      *credential.Store
	client     *backend.Client // unauthenticated, for login
	api        *backend.Client // carries the managed access token
	tokens     *token.Manager
	repo       *permission.Repository
	nav        Navigator
	notifier   Notifier
	homeRoute  string
	loginRoute string
	persistent bool
	log        zerolog.Logger

	ctx    context.Context //nolint:containedctx
	cancel context.CancelFunc

	mu        sync.RWMutex
	epoch     uint64
	user      *models.User
	validator *token.Validator
	// tokenGen is the credential generation the current user was
	// established with.
	tokenGen uint64
}

// New wires a session on top of store and client.
func New(store *credential.Store, client *backend.Client, opts Options) (*Session, error) {
	if store == nil || client == nil {
		return nil, ErrMissingDependency
	}

	s := &Session{
		store:      store,
		client:     client,
		nav:        opts.Navigator,
		notifier:   opts.Notifier,
		homeRoute:  opts.HomeRoute,
		loginRoute: opts.LoginRoute,
		persistent: opts.Persistent,
		log:        logger.Component("session"),
	}

	if s.nav == nil {
		s.nav = logNavigator{log: s.log}
	}

	if s.notifier == nil {
		s.notifier = logNotifier{log: s.log}
	}

	if s.homeRoute == "" {
		s.homeRoute = auth.RouteDashboard
	}

	if s.loginRoute == "" {
		s.loginRoute = auth.RouteLogin
	}

	tokens, err := token.NewManager(store, client,
		token.WithCheckInterval(opts.CheckInterval),
		token.WithRefreshLeeway(opts.RefreshLeeway),
		token.WithPersistence(opts.Persistent),
		token.WithInvalidHandler(s.onInvalid),
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	s.tokens = tokens
	s.api = client.Authorized(tokens)

	s.repo, err = permission.NewRepository(s.api, permission.WithPruneOnBulkAssign(opts.PruneOnBulkAssign))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	return s, nil
}

// Login authenticates against the backend. On failure a notice is shown and
// the stored credentials are left untouched.
func (s *Session) Login(ctx context.Context, email, password string) error {
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.notifier.Notify(SeverityError, loginMessage(err))
		s.log.Warn().Err(err).Str("email", email).Msg("login failed")

		return fmt.Errorf("login failed: %w", err)
	}

	epoch := s.teardown()

	if err := s.tokens.Begin(ctx, &res.TokenPair); err != nil {
		s.notifier.Notify(SeverityError, "Could not save your session.")
		return fmt.Errorf("login failed: %w", err)
	}

	if err := s.establish(ctx, epoch, res.User); err != nil {
		if !errors.Is(err, ErrSuperseded) {
			s.discardCredentials(ctx, epoch)
			s.notifier.Notify(SeverityError, backend.UserMessage(err))
		}

		return fmt.Errorf("login failed: %w", err)
	}

	s.nav.Navigate(s.homeRoute)

	return nil
}

// Restore resumes the session kept in the credential store, e.g. after a
// restart. It returns token.ErrAuthenticationRequired when there is none.
func (s *Session) Restore(ctx context.Context) error {
	epoch := s.teardown()

	if err := s.tokens.Load(ctx); err != nil {
		return err //nolint:wrapcheck
	}

	cached, err := s.store.LoadUser(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("ignoring unreadable cached user")
	}

	if err := s.establish(ctx, epoch, cached); err != nil {
		if backend.IsAuthFailure(err) || errors.Is(err, token.ErrAuthenticationRequired) {
			s.Logout(ctx)
		}

		return fmt.Errorf("restore failed: %w", err)
	}

	return nil
}

// establish fetches the profile, loads the permissions and starts the
// validator, unless the epoch ended or the credentials were rejected
// meanwhile.
func (s *Session) establish(ctx context.Context, epoch uint64, fallback *models.User) error {
	gen := s.tokens.Generation()

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		if backend.IsAuthFailure(err) || errors.Is(err, token.ErrAuthenticationRequired) || fallback == nil {
			return err //nolint:wrapcheck
		}

		s.log.Warn().Err(err).Msg("current user unavailable, using login profile")

		user = fallback
	}

	if user == nil {
		return ErrNoUserProfile
	}

	if err := s.store.SaveUser(ctx, user, s.persistent); err != nil {
		s.log.Error().Err(err).Msg("failed to cache user profile")
	}

	if err := s.loadPermissions(ctx, user); err != nil {
		if backend.IsAuthFailure(err) {
			s.tokens.Invalidate(ctx, gen, err)
		} else {
			s.notifier.Notify(SeverityError, backend.UserMessage(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		s.log.Debug().Str("user_id", user.ID.String()).Msg("discarding stale session start")
		return ErrSuperseded
	}

	if s.tokens.Generation() != gen || s.tokens.State() == token.Invalid {
		return token.ErrAuthenticationRequired
	}

	s.user = user
	s.tokenGen = gen
	s.validator = s.tokens.Start(s.ctx)

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("session started")

	return nil
}

// discardCredentials clears the store after a login that could not be
// completed, unless another login took over.
func (s *Session) discardCredentials(ctx context.Context, epoch uint64) {
	if s.currentEpoch() != epoch {
		return
	}

	if err := s.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		s.log.Error().Err(err).Msg("failed to clear credential store")
	}
}

// Logout ends the session. It is idempotent and never fails; store errors
// are logged.
func (s *Session) Logout(ctx context.Context) {
	s.teardown()

	if err := s.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		s.log.Error().Err(err).Msg("failed to clear credential store")
	}

	s.nav.Navigate(s.loginRoute)
}

// teardown starts a new epoch, drops the in-memory state and stops the
// validator.
func (s *Session) teardown() uint64 {
	s.mu.Lock()
	epoch, v := s.advanceLocked()
	s.mu.Unlock()

	v.Stop()
	s.repo.Reset()

	return epoch
}

// teardownEpoch is teardown for epoch only. It reports false when another
// login or logout already ended that epoch.
func (s *Session) teardownEpoch(epoch uint64) bool {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return false
	}

	_, v := s.advanceLocked()
	s.mu.Unlock()

	v.Stop()
	s.repo.Reset()

	return true
}

// advanceLocked requires s.mu. The returned validator must be stopped
// after s.mu is released, its invalid handler takes s.mu too.
func (s *Session) advanceLocked() (uint64, *token.Validator) {
	s.epoch++
	v := s.validator
	s.validator = nil
	s.user = nil
	s.tokenGen = 0

	return s.epoch, v
}

// onInvalid forces a logout after the token manager rejected the
// credentials the current user was established with. Notifications about
// older credentials are ignored.
func (s *Session) onInvalid(inv token.Invalidation) {
	s.mu.RLock()
	current := s.user != nil && s.tokenGen == inv.Generation
	epoch := s.epoch
	s.mu.RUnlock()

	if !current {
		s.log.Debug().Err(inv.Cause).Uint64("generation", inv.Generation).Msg("ignoring invalidation of ended session")
		return
	}

	if !s.teardownEpoch(epoch) {
		return
	}

	s.log.Info().Err(inv.Cause).Msg("forcing logout")
	s.notifier.Notify(SeverityError, "Your session has expired. Please log in again.")

	// the token manager already cleared the store
	s.nav.Navigate(s.loginRoute)
}

// escalate forces a logout when err says the backend rejected the
// credentials of the current session. It returns err unchanged.
func (s *Session) escalate(ctx context.Context, err error) error {
	if err == nil || !backend.IsAuthFailure(err) {
		return err
	}

	s.mu.RLock()
	gen := s.tokenGen
	s.mu.RUnlock()

	if gen != 0 {
		s.tokens.Invalidate(ctx, gen, err)
	}

	return err
}

// RefreshToken exchanges the refresh token now. A rejected refresh ends the session.
func (s *Session) RefreshToken(ctx context.Context) error {
	return s.tokens.Refresh(ctx) //nolint:wrapcheck
}

// RefreshPermissions reloads the permission data of the current user.
func (s *Session) RefreshPermissions(ctx context.Context) error {
	user := s.CurrentUser()
	if user == nil {
		return ErrNotAuthenticated
	}

	if err := s.loadPermissions(ctx, user); err != nil {
		if backend.IsAuthFailure(err) {
			return s.escalate(ctx, err)
		}

		s.notifier.Notify(SeverityError, backend.UserMessage(err))

		return err
	}

	return nil
}

// loadPermissions loads the catalog and the user's edges; admins also get
// the user list. All loads are attempted, failures are joined.
func (s *Session) loadPermissions(ctx context.Context, user *models.User) error {
	var errs []error

	if _, err := s.repo.LoadAllScreens(ctx); err != nil {
		errs = append(errs, err)
	}

	if user.IsAdmin() {
		if _, err := s.repo.LoadAllUsers(ctx); err != nil {
			errs = append(errs, err)
		}
	} else if _, err := s.repo.LoadPermissionsForUser(ctx, user.ID); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// CanAccess reports whether the current user may open route.
func (s *Session) CanAccess(route string) bool {
	return auth.CanAccess(s.CurrentUser(), route, s.repo.Snapshot())
}

// CanAccessAny reports whether the current user may open at least one of routes.
func (s *Session) CanAccessAny(routes ...string) bool {
	return auth.CanAccessAny(s.CurrentUser(), s.repo.Snapshot(), routes...)
}

// CanAccessAll reports whether the current user may open every one of routes.
func (s *Session) CanAccessAll(routes ...string) bool {
	return auth.CanAccessAll(s.CurrentUser(), s.repo.Snapshot(), routes...)
}

// AccessibleRoutes returns the routes the current user may open.
func (s *Session) AccessibleRoutes() []string {
	return auth.AccessibleRoutes(s.CurrentUser(), s.repo.Snapshot())
}

// IsAdmin reports whether the current user is an admin.
func (s *Session) IsAdmin() bool {
	return auth.IsAdmin(s.CurrentUser())
}

// IsAuthenticated reports whether a user is logged in with a usable token.
func (s *Session) IsAuthenticated() bool {
	if s.CurrentUser() == nil {
		return false
	}

	state := s.tokens.State()

	return state == token.Valid || state == token.Refreshing
}

// CurrentUser returns a copy of the logged in user or nil.
func (s *Session) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}

	u := *s.user

	return &u
}

// Snapshot returns the loaded permission data.
func (s *Session) Snapshot() *permission.Snapshot {
	return s.repo.Snapshot()
}

// AssignScreens bulk assigns screens to a user. Only admins may call it;
// prune reconciles instead of only adding.
func (s *Session) AssignScreens(ctx context.Context, userID models.ID, screenIDs []models.ID, prune bool) (*permission.BulkResult, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	assign := s.repo.BulkAssign
	if prune {
		assign = s.repo.Reconcile
	}

	res, err := assign(ctx, userID, screenIDs)

	return res, s.escalate(ctx, err)
}

// Selection loads the permissions of userID and describes them. The
// returned screen ids are the starting selection of a bulk assignment.
func (s *Session) Selection(ctx context.Context, userID models.ID) ([]permission.Description, []models.ID, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, nil, err
	}

	perms, err := s.repo.LoadPermissionsForUser(ctx, userID)
	if err != nil {
		return nil, nil, s.escalate(ctx, err)
	}

	snap := s.repo.Snapshot()
	out := make([]permission.Description, 0, len(perms))

	for _, p := range perms {
		out = append(out, snap.Describe(p))
	}

	return out, s.repo.CurrentSelection(userID), nil
}

// CreateScreen adds a screen to the catalog. Admin only.
func (s *Session) CreateScreen(ctx context.Context, screen models.Screen) (*models.Screen, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateScreen(ctx, screen)

	return created, s.escalate(ctx, err)
}

// DeleteScreen removes a screen and the permissions pointing to it. Admin only.
func (s *Session) DeleteScreen(ctx context.Context, id models.ID) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}

	return s.escalate(ctx, s.repo.DeleteScreen(ctx, id))
}

func (s *Session) requireAdmin() error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	if !s.IsAdmin() {
		return ErrForbidden
	}

	return nil
}

// Close stops the validator. The stored credentials are kept so the next
// start can Restore them.
func (s *Session) Close() {
	s.mu.Lock()
	v := s.validator
	s.validator = nil
	s.mu.Unlock()

	v.Stop()
	s.cancel()
}

// HomeRoute is where a successful login navigates to.
func (s *Session) HomeRoute() string { return s.homeRoute }

// LoginRoute is where a logout navigates to.
func (s *Session) LoginRoute() string { return s.loginRoute }

// TokenState reports the state of the token manager.
func (s *Session) TokenState() token.State { return s.tokens.State() }

func (s *Session) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.epoch
}

func loginMessage(err error) string {
	if errors.Is(err, backend.ErrUnauthorized) {
		return "Invalid email or password."
	}

	return backend.UserMessage(err)
}
