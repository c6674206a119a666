package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// Keys written by the session core.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyTokenExpiry  = "token_expires_at"
	KeyUser         = "user"
)

// DefaultTTL applies to non-persistent values written without an explicit ttl.
const DefaultTTL = 24 * time.Hour

// sessionKeys are removed together by Clear.
var sessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyTokenExpiry, KeyUser} //nolint:gochecknoglobals

type entry struct {
	key   string
	value []byte
}

// Store is the process-wide credential store. Every operation holds the
// store lock for its whole duration, so multi-key writes never interleave.
type Store struct {
	mu         sync.Mutex
	backend    Backend
	sealer     *Sealer
	defaultTTL time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithSealer encrypts every value written to the backend.
func WithSealer(s *Sealer) Option {
	return func(st *Store) {
		st.sealer = s
	}
}

// WithDefaultTTL overrides DefaultTTL.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(st *Store) {
		if ttl > 0 {
			st.defaultTTL = ttl
		}
	}
}

// New creates a Store on top of backend.
func New(backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, ErrBackendNil
	}

	s := &Store{
		backend:    backend,
		defaultTTL: DefaultTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Get returns the value for key, or nil when it is absent or expired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(ctx, key)
}

// Set writes value under key. Persistent values never expire; otherwise ttl
// applies, falling back to the store's default ttl when zero.
func (s *Store) Set(ctx context.Context, key string, value []byte, persistent bool, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.set(ctx, key, value, persistent, ttl)
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.delete(ctx, key)
}

// SaveCredential writes the token pair and its expiry. When any write fails
// the keys already written are removed again, leaving no partial credential.
func (s *Store) SaveCredential(ctx context.Context, cred models.Credential, persistent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := []entry{
		{KeyAccessToken, []byte(cred.AccessToken)},
		{KeyRefreshToken, []byte(cred.RefreshToken)},
	}

	if !cred.ExpiresAt.IsZero() {
		values = append(values, entry{KeyTokenExpiry, []byte(cred.ExpiresAt.UTC().Format(time.RFC3339Nano))})
	} else if err := s.delete(ctx, KeyTokenExpiry); err != nil {
		return err
	}

	written := make([]string, 0, len(values))

	for _, v := range values {
		if err := s.set(ctx, v.key, v.value, persistent, 0); err != nil {
			for _, key := range written {
				if errDel := s.backend.Delete(key); errDel != nil {
					log.Error().Err(errDel).Str("key", key).Msg("failed to roll back credential write")
				}
			}

			return fmt.Errorf("failed to save credential: %w", err)
		}

		written = append(written, v.key)
	}

	return nil
}

// LoadCredential reads the token pair. A missing access token yields an
// empty credential, not an error.
func (s *Store) LoadCredential(ctx context.Context) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cred models.Credential

	access, err := s.get(ctx, KeyAccessToken)
	if err != nil {
		return cred, err
	}

	if len(access) == 0 {
		return cred, nil
	}

	refresh, err := s.get(ctx, KeyRefreshToken)
	if err != nil {
		return cred, err
	}

	expiry, err := s.get(ctx, KeyTokenExpiry)
	if err != nil {
		return cred, err
	}

	cred.AccessToken = string(access)
	cred.RefreshToken = string(refresh)

	if len(expiry) > 0 {
		if cred.ExpiresAt, err = time.Parse(time.RFC3339Nano, string(expiry)); err != nil {
			log.Warn().Err(err).Msg("ignoring unreadable token expiry")

			cred.ExpiresAt = time.Time{}
		}
	}

	return cred, nil
}

// SaveUser caches the serialized user profile.
func (s *Store) SaveUser(ctx context.Context, user *models.User, persistent bool) error {
	out, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	return s.Set(ctx, KeyUser, out, persistent, 0)
}

// LoadUser returns the cached user profile or nil when none is stored.
func (s *Store) LoadUser(ctx context.Context) (*models.User, error) {
	raw, err := s.Get(ctx, KeyUser)
	if err != nil || len(raw) == 0 {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode cached user: %w", err)
	}

	return &user, nil
}

// Clear removes every session key. All keys are attempted even when one
// deletion fails; the failures are joined.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	for _, key := range sessionKeys {
		if err := s.delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close releases the backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.backend.Close() //nolint:wrapcheck
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	raw, err := s.backend.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}

	if raw == nil || s.sealer == nil {
		return raw, nil
	}

	return s.sealer.Open(key, raw)
}

func (s *Store) set(ctx context.Context, key string, value []byte, persistent bool, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	var exp time.Duration

	if !persistent {
		exp = ttl
		if exp <= 0 {
			exp = s.defaultTTL
		}
	}

	if s.sealer != nil {
		sealed, err := s.sealer.Seal(key, value)
		if err != nil {
			return err
		}

		value = sealed
	}

	if err := s.backend.Set(key, value, exp); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}

	return nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	if err := s.backend.Delete(key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}

	return nil
}
