package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/PropDesk/PropDesk-Console/internal/config"
	accesslog "github.com/PropDesk/PropDesk-Console/internal/logger/adapter/fiber"
	"github.com/PropDesk/PropDesk-Console/internal/session"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler/access"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler/account"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler/admin/permission"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler/admin/screen"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler/login"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler/logout"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler/menu"
	"github.com/PropDesk/PropDesk-Console/internal/web/handler/page"
	authmiddleware "github.com/PropDesk/PropDesk-Console/internal/web/middleware/auth"
)

// ErrNilDependency is returned by New without config or session.
var ErrNilDependency = errors.New("config and session are required")

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	sess         *session.Session
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: !s.cfg.DevMode})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fiber listen error: %w", err)
	}

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the service down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown stops the http server and the session validator. The stored
// credentials are kept for the next start.
func (s *Service) Shutdown() {
	wait := time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this instance from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(wait)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.ShutdownWithTimeout(wait); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	s.sess.Close()

	log.Info().Msg("http server was stopped ... good bye...")
}

// checkAlive answers 503 once a shutdown started.
func (s *Service) checkAlive(c fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, sess *session.Session) (*Service, error) {
	if cfg == nil || sess == nil {
		return nil, ErrNilDependency
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Immutable:      true,
			ErrorHandler:   ErrorHandler,
		},
	)

	service := &Service{
		App:          app,
		cfg:          cfg,
		sess:         sess,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: handler.CheckAlivePath,
	}))

	app.Use(authmiddleware.New(authmiddleware.Config{
		Session: sess,
		Open:    []string{handler.CheckAlivePath, handler.MetricsPath, login.Path, logout.Path},
		Anonymous: []string{
			account.Path,
		},
	}))

	app.Get(handler.CheckAlivePath, service.checkAlive)
	app.Get(handler.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	handlers := []handler.Service{
		new(login.Service),
		new(logout.Service),
		new(account.Service),
		new(access.Service),
		new(menu.Service),
		new(permission.Service),
		new(screen.Service),
		new(page.Service), // catch-all, keep last
	}

	for _, h := range handlers {
		if err := h.Init(app, cfg, sess); err != nil {
			return nil, fmt.Errorf("failed to init web handler: %w", err)
		}
	}

	return service, nil
}

// ErrorHandler answers every error as JSON with status code and message.
func ErrorHandler(c fiber.Ctx, err error) error {
	fe := handler.Error(err)

	if fe.Code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("route", c.Path()).Msg("request failed")
	}

	return c.Status(fe.Code).JSON(fiber.Map{
		"statusCode": fe.Code,
		"message":    fe.Message,
	})
}
