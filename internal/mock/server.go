// Package mock is a local reference backend for the tracker REST contract:
// endpoint CRUD, "hit API" probing with call logs, load tests and login.
// It backs development sessions and the integration tests.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sadopc/apitrack/internal/transport"
)

// Config configures a Server.
type Config struct {
	Username   string
	Password   string
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int

	// ProbeTimeout bounds each "hit API" call.
	ProbeTimeout time.Duration
	// LoadTestUnit is the real length of one unit of the duration query
	// parameter. It is a minute in production.
	LoadTestUnit        time.Duration
	MaxLoadTestDuration time.Duration
	MaxLoadTestUsers    int

	Transport transport.Options
	Logger    *slog.Logger
}

func (c *Config) setDefaults() {
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 30 * time.Second
	}
	if c.LoadTestUnit <= 0 {
		c.LoadTestUnit = time.Minute
	}
	if c.MaxLoadTestDuration <= 0 {
		c.MaxLoadTestDuration = 10 * time.Minute
	}
	if c.MaxLoadTestUsers <= 0 {
		c.MaxLoadTestUsers = 200
	}
	if c.Transport.Timeout <= 0 {
		c.Transport.Timeout = c.ProbeTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// Server wires the store, prober and authenticator into a fiber app.
type Server struct {
	app     *fiber.App
	store   *Store
	prober  *Prober
	auth    *Authenticator
	metrics *Metrics
	cfg     Config
	logger  *slog.Logger
}

// New builds the server around store. The caller owns store.
func New(store *Store, cfg Config) (*Server, error) {
	cfg.setDefaults()
	a, err := NewAuthenticator(cfg.Username, cfg.Password, cfg.Secret, cfg.TokenTTL, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	prober, err := NewProber(cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("configuring prober: %w", err)
	}

	s := &Server{
		store:   store,
		prober:  prober,
		auth:    a,
		metrics: NewMetrics(),
		cfg:     cfg,
		logger:  cfg.Logger,
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(otelfiber.Middleware())
	s.app.Use(s.metrics.Middleware())
	s.app.Use(s.requestLogger())

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	s.app.Post("/login/", s.login)

	api := s.app.Group("/api", s.auth.RequireBearer())
	api.Get("/api-list/", s.listEndpoints)
	api.Post("/api-list/", s.createEndpoint)
	api.Get("/api-list/:id/", s.getEndpoint)
	api.Put("/api-list/:id/", s.updateEndpoint)
	api.Delete("/api-list/:id/", s.deleteEndpoint)
	api.Get("/api-list/:id/call-logs/", s.callLogs)
	api.Get("/api-list/:id/load-test/", s.loadTest)
	api.Post("/hit-api/:id/", s.hitEndpoint)
	api.Get("/hit-api/:id/", s.hitEndpoint)
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

// Metrics exposes the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("mock backend listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/health" || path == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		s.logger.Info("request",
			"method", c.Method(),
			"path", path,
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error."
	if fe, ok := err.(*fiber.Error); ok {
		code, msg = fe.Code, fe.Message
	} else {
		s.logger.Error("handler failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"message": msg})
}
