package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/PropDesk/PropDesk-Console/internal/backend"
	"github.com/PropDesk/PropDesk-Console/internal/credential"
	"github.com/PropDesk/PropDesk-Console/internal/logger"
	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// Defaults used when no option overrides them.
const (
	DefaultCheckInterval = 5 * time.Second
	DefaultRefreshLeeway = 30 * time.Second
)

const refreshKey = "refresh"

// Authenticator is the part of the backend client the manager calls.
type Authenticator interface {
	Refresh(ctx context.Context, refreshToken string) (*backend.TokenPair, error)
	TokenInfo(ctx context.Context, accessToken string) (bool, error)
}

// Invalidation is passed to the invalid handler. Generation identifies the
// credentials that were rejected, see Manager.Generation.
type Invalidation struct {
	Generation uint64
	Cause      error
}

// Manager owns the access token of one console process.
type Manager struct {
	store         *credential.Store
	auth          Authenticator
	checkInterval time.Duration
	refreshLeeway time.Duration
	persistent    bool
	now           func() time.Time
	onInvalid     func(Invalidation)
	log           zerolog.Logger

	sf singleflight.Group

	// writeMu serializes every write to the credential store.
	writeMu sync.Mutex

	mu    sync.Mutex
	state State
	gen   uint64
}

// refreshResult is shared by the callers of one singleflight refresh.
type refreshResult struct {
	cred   models.Credential
	notify func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithCheckInterval sets the period of the validity check.
func WithCheckInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.checkInterval = d
		}
	}
}

// WithRefreshLeeway refreshes the access token this long before it expires.
func WithRefreshLeeway(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.refreshLeeway = d
		}
	}
}

// WithPersistence stores credentials without expiry instead of the store default.
func WithPersistence(persistent bool) Option {
	return func(m *Manager) {
		m.persistent = persistent
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithInvalidHandler is called once every time the session turns Invalid.
// It runs after the credential store was cleared and never while the
// validator loop is still running.
func WithInvalidHandler(fn func(Invalidation)) Option {
	return func(m *Manager) {
		m.onInvalid = fn
	}
}

// NewManager creates a manager in state NoToken. Call Load to pick up stored credentials.
func NewManager(store *credential.Store, auth Authenticator, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	if auth == nil {
		return nil, ErrAuthenticatorNil
	}

	m := &Manager{
		store:         store,
		auth:          auth,
		checkInterval: DefaultCheckInterval,
		refreshLeeway: DefaultRefreshLeeway,
		now:           time.Now,
		log:           logger.Component("token"),
		state:         NoToken,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Generation changes whenever a login, Load or Clear replaces the
// credentials. Results computed for an older generation are dropped.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.gen
}

// setStateFor changes the state unless the credentials of gen were replaced.
func (m *Manager) setStateFor(gen uint64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen == gen {
		m.state = s
	}
}

// renew starts a new generation in state s.
func (m *Manager) renew(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.state = s
}

// Load derives the state from the credential store.
func (m *Manager) Load(ctx context.Context) error {
	cred, err := m.store.LoadCredential(ctx)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if cred.Empty() {
		m.renew(NoToken)
		return ErrAuthenticationRequired
	}

	m.renew(Valid)

	return nil
}

// Begin stores the token pair of a fresh login and marks the session Valid.
func (m *Manager) Begin(ctx context.Context, pair *backend.TokenPair) error {
	cred := m.credentialFrom(pair)

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.store.SaveCredential(ctx, cred, m.persistent); err != nil {
		return err //nolint:wrapcheck
	}

	m.renew(Valid)

	return nil
}

// Clear removes the stored credentials and resets the state to NoToken.
func (m *Manager) Clear(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.renew(NoToken)

	return m.store.Clear(ctx) //nolint:wrapcheck
}

// Invalidate ends the credentials of generation gen after an authorized
// call was rejected with cause. It is a no-op when gen is no longer
// current or the session already is Invalid. The invalid handler runs
// before Invalidate returns.
func (m *Manager) Invalidate(ctx context.Context, gen uint64, cause error) {
	m.invalidate(ctx, gen, cause)()
}

// AccessToken returns the stored access token without refreshing it.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	cred, err := m.store.LoadCredential(ctx)
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	if cred.Empty() {
		return "", ErrAuthenticationRequired
	}

	return cred.AccessToken, nil
}

// Fresh returns the access token, refreshing it first when it expires
// within the refresh leeway. Overlapping callers share one refresh and all
// observe its outcome before they continue.
func (m *Manager) Fresh(ctx context.Context) (*oauth2.Token, error) {
	if m.State() == Invalid {
		return nil, ErrAuthenticationRequired
	}

	cred, err := m.store.LoadCredential(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if cred.Empty() {
		return nil, ErrAuthenticationRequired
	}

	if cred.NeedsRefresh(m.now(), m.refreshLeeway) {
		var notify func()

		cred, notify, err = m.refresh(ctx, false)
		notify()

		if err != nil {
			return nil, err
		}
	}

	return &oauth2.Token{
		AccessToken:  cred.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.ExpiresAt,
	}, nil
}

// Token implements oauth2.TokenSource.
func (m *Manager) Token() (*oauth2.Token, error) {
	return m.Fresh(context.Background())
}

// Refresh exchanges the refresh token for a new pair regardless of expiry.
func (m *Manager) Refresh(ctx context.Context) error {
	_, notify, err := m.refresh(ctx, true)
	notify()

	return err
}

// refresh runs at most one exchange at a time. Without force, the exchange
// is skipped when a refresh that finished meanwhile already renewed the token.
// The returned notification fires the invalid handler at most once, however
// many callers shared the refresh.
func (m *Manager) refresh(ctx context.Context, force bool) (models.Credential, func(), error) {
	// one caller's cancellation must not fail the callers sharing the refresh
	shared := context.WithoutCancel(ctx)

	v, err, _ := m.sf.Do(refreshKey, func() (any, error) {
		return m.doRefresh(shared, force)
	})

	res, ok := v.(refreshResult)
	if !ok {
		return models.Credential{}, noop, err //nolint:wrapcheck
	}

	return res.cred, res.notify, err //nolint:wrapcheck
}

func (m *Manager) doRefresh(ctx context.Context, force bool) (refreshResult, error) {
	gen := m.Generation()

	cred, err := m.store.LoadCredential(ctx)
	if err != nil {
		return refreshResult{cred: cred, notify: noop}, err //nolint:wrapcheck
	}

	if cred.Empty() || cred.RefreshToken == "" {
		refreshTotal.WithLabelValues(outcomeRejected).Inc()

		return refreshResult{
			cred:   cred,
			notify: m.invalidate(ctx, gen, ErrAuthenticationRequired),
		}, ErrAuthenticationRequired
	}

	if !force && !cred.NeedsRefresh(m.now(), m.refreshLeeway) {
		refreshTotal.WithLabelValues(outcomeSkipped).Inc()
		return refreshResult{cred: cred, notify: noop}, nil
	}

	m.setStateFor(gen, Refreshing)

	pair, err := m.auth.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		if IsTerminal(err) {
			refreshTotal.WithLabelValues(outcomeRejected).Inc()
			m.log.Warn().Err(err).Msg("token refresh rejected, ending session")

			return refreshResult{
				cred:   cred,
				notify: m.invalidate(ctx, gen, err),
			}, fmt.Errorf("failed to refresh token: %w", err)
		}

		refreshTotal.WithLabelValues(outcomeNetwork).Inc()
		m.log.Warn().Err(err).Msg("token refresh failed, keeping session")
		m.setStateFor(gen, Valid)

		return refreshResult{cred: cred, notify: noop}, fmt.Errorf("failed to refresh token: %w", err)
	}

	next := m.credentialFrom(pair)

	if err := m.save(ctx, gen, next); err != nil {
		m.setStateFor(gen, Valid)
		return refreshResult{cred: cred, notify: noop}, err
	}

	refreshTotal.WithLabelValues(outcomeSuccess).Inc()
	m.log.Debug().Time("expires_at", next.ExpiresAt).Msg("access token refreshed")
	m.setStateFor(gen, Valid)

	return refreshResult{cred: next, notify: noop}, nil
}

// save stores refreshed credentials unless a login or logout replaced the
// generation they were refreshed for.
func (m *Manager) save(ctx context.Context, gen uint64, cred models.Credential) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if m.Generation() != gen {
		return ErrSuperseded
	}

	return m.store.SaveCredential(ctx, cred, m.persistent) //nolint:wrapcheck
}

// Check asks the backend whether the stored access token is still valid.
// A rejected token turns the session Invalid and returns ErrTokenInvalid.
func (m *Manager) Check(ctx context.Context) error {
	notify, err := m.check(ctx)
	notify()

	return err
}

// check returns the invalid notification instead of firing it, so the
// validator loop can finish before the handler runs.
func (m *Manager) check(ctx context.Context) (func(), error) {
	gen := m.Generation()

	cred, err := m.store.LoadCredential(ctx)
	if err != nil {
		checkTotal.WithLabelValues(outcomeCheckFailed).Inc()
		return noop, err //nolint:wrapcheck
	}

	if cred.Empty() {
		checkTotal.WithLabelValues(outcomeNoToken).Inc()
		m.setStateFor(gen, NoToken)

		return noop, ErrAuthenticationRequired
	}

	// an expired access token is renewed before the backend judges it
	if cred.NeedsRefresh(m.now(), m.refreshLeeway) {
		var notify func()

		cred, notify, err = m.refresh(ctx, false)
		if err != nil {
			if errors.Is(err, ErrAuthenticationRequired) || m.State() == Invalid {
				checkTotal.WithLabelValues(outcomeInvalid).Inc()
				return notify, err
			}

			checkTotal.WithLabelValues(outcomeCheckFailed).Inc()
			m.log.Debug().Err(err).Msg("token refresh during check failed, keeping session")

			return notify, fmt.Errorf("token check failed: %w", err)
		}
	}

	valid, err := m.auth.TokenInfo(ctx, cred.AccessToken)

	switch {
	case err == nil && valid:
		checkTotal.WithLabelValues(outcomeValid).Inc()
		return noop, nil
	case err == nil:
		checkTotal.WithLabelValues(outcomeInvalid).Inc()
		return m.invalidate(ctx, gen, ErrTokenInvalid), ErrTokenInvalid
	case backend.IsAuthFailure(err):
		checkTotal.WithLabelValues(outcomeInvalid).Inc()
		return m.invalidate(ctx, gen, err), fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	checkTotal.WithLabelValues(outcomeCheckFailed).Inc()
	m.log.Debug().Err(err).Msg("token check failed, keeping session")

	return noop, fmt.Errorf("token check failed: %w", err)
}

// invalidate moves generation gen to Invalid and clears the store. It
// returns the notification for the invalid handler, a no-op if gen is not
// current or already was Invalid.
func (m *Manager) invalidate(ctx context.Context, gen uint64, cause error) func() {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if m.gen != gen || m.state == Invalid {
		m.mu.Unlock()
		return noop
	}

	m.state = Invalid
	m.mu.Unlock()

	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.log.Error().Err(err).Msg("failed to clear credential store")
	}

	m.log.Info().Err(cause).Uint64("generation", gen).Str("state", Invalid.String()).
		Msg("session credentials invalidated")

	if m.onInvalid == nil {
		return noop
	}

	return sync.OnceFunc(func() {
		m.onInvalid(Invalidation{Generation: gen, Cause: cause})
	})
}

// credentialFrom computes the expiry from expiresIn, falling back to the
// exp claim of a JWT access token.
func (m *Manager) credentialFrom(pair *backend.TokenPair) models.Credential {
	cred := models.Credential{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}

	switch {
	case pair.ExpiresIn > 0:
		cred.ExpiresAt = m.now().Add(time.Duration(pair.ExpiresIn) * time.Second)
	default:
		cred.ExpiresAt = expiryFromJWT(pair.AccessToken)
	}

	return cred
}

// expiryFromJWT reads the exp claim of a JWT. The signature is not verified.
func expiryFromJWT(raw string) time.Time {
	tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}

	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}

func noop() {}

var _ oauth2.TokenSource = (*Manager)(nil)
