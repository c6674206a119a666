// Package daemon wires configuration, credential store, backend client,
// session and web shell into one running console.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/PropDesk/PropDesk-Console/internal/backend"
	"github.com/PropDesk/PropDesk-Console/internal/config"
	"github.com/PropDesk/PropDesk-Console/internal/credential"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/token"
	"github.com/PropDesk/PropDesk-Console/internal/web"
)

// ErrNilConfig is returned by New without a config.
var ErrNilConfig = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg     *config.Config
	store   *credential.Store
	session *session.Session
}

// New opens the credential store and builds the session core.
func New(cfg *config.Config, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := credential.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	client, err := backend.New(cfg.Backend, backend.WithEmailHeuristic(cfg.Auth.AdminEmailHeuristic))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	sess, err := session.New(store, client, session.Options{
		HomeRoute:         cfg.Webserver.HomeRoute,
		LoginRoute:        cfg.Webserver.LoginRoute,
		Persistent:        cfg.Store.Persistent,
		CheckInterval:     cfg.Token.CheckInterval,
		RefreshLeeway:     cfg.Token.RefreshLeeway,
		PruneOnBulkAssign: cfg.Permissions.PruneOnBulkAssign,
		Navigator:         o.navigator,
		Notifier:          o.notifier,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &Daemon{cfg: cfg, store: store, session: sess}, nil
}

// Session returns the session core.
func (d *Daemon) Session() *session.Session {
	return d.session
}

// Restore resumes a stored session. No stored session is not an error.
func (d *Daemon) Restore(ctx context.Context) error {
	err := d.session.Restore(ctx)
	if errors.Is(err, token.ErrAuthenticationRequired) {
		log.Info().Msg("no stored session, login required")
		return nil
	}

	return err //nolint:wrapcheck
}

// Start restores the stored session, serves the web shell and blocks until
// SIGINT or SIGTERM.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("stored session could not be restored")
	}

	service, err := web.New(d.cfg, d.session)
	if err != nil {
		return fmt.Errorf("failed to create web service: %w", err)
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- service.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
	}()

	log.Info().Int("port", d.cfg.Webserver.Port).Str("url", d.cfg.Webserver.URL).Msg("web shell started")

	done := make(chan struct{})

	go func() {
		service.WaitShutdown()
		close(done)
	}()

	select {
	case err := <-errCh:
		d.session.Close()
		return err
	case <-done:
		return <-errCh
	}
}

// Close stops the session and closes the credential store.
func (d *Daemon) Close() error {
	d.session.Close()

	return d.store.Close() //nolint:wrapcheck
}
