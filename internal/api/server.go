package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vigil-go/internal/config"
)

// Server represents the HTTP server with all configured routes and middleware.
type Server struct {
	app    *fiber.App
	config *config.ServerConfig
	logger *slog.Logger

	// Handlers
	alertHandler     *AlertHandler
	conditionHandler *ConditionHandler
	ingestHandler    *IngestHandler
	sweepHandler     *SweepHandler
}

// ServerDeps contains all dependencies required to create a new Server.
type ServerDeps struct {
	Config           *config.ServerConfig
	Logger           *slog.Logger
	AlertHandler     *AlertHandler
	ConditionHandler *ConditionHandler
	IngestHandler    *IngestHandler
	SweepHandler     *SweepHandler
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(deps ServerDeps) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		CaseSensitive:         true,
		ReadTimeout:           deps.Config.ReadTimeout,
		WriteTimeout:          deps.Config.WriteTimeout,
		IdleTimeout:           deps.Config.IdleTimeout,
		ErrorHandler:          customErrorHandler,
	})

	s := &Server{
		app:              app,
		config:           deps.Config,
		logger:           deps.Logger,
		alertHandler:     deps.AlertHandler,
		conditionHandler: deps.ConditionHandler,
		ingestHandler:    deps.IngestHandler,
		sweepHandler:     deps.SweepHandler,
	}

	s.registerMiddleware()
	s.registerRoutes()

	return s
}

// registerMiddleware sets up all middleware for the server.
func (s *Server) registerMiddleware() {
	// Recovery middleware to handle panics
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID middleware for tracing
	s.app.Use(requestid.New())

	// Logger middleware for request logging
	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path} | ${error}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	// Health check endpoint (outside versioned API)
	s.app.Get("/healthz", s.healthCheck)

	// Prometheus metrics endpoint
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1 routes
	v1 := s.app.Group("/v1")

	// Activity event ingestion
	v1.Post("/events", s.ingestHandler.IngestEvent)

	// Alert definition CRUD
	v1.Post("/alerts", s.alertHandler.Create)
	v1.Get("/alerts", s.alertHandler.List)
	v1.Get("/alerts/:id", s.alertHandler.GetByID)
	v1.Put("/alerts/:id", s.alertHandler.Update)
	v1.Delete("/alerts/:id", s.alertHandler.Delete)

	// Condition authoring surface
	v1.Post("/conditions/validate", s.conditionHandler.Validate)
	v1.Post("/conditions/test", s.conditionHandler.Test)
	v1.Get("/conditions/variables", s.conditionHandler.Variables)
	v1.Get("/conditions/templates", s.conditionHandler.Templates)

	// Manual sweep trigger
	v1.Post("/sweep", s.sweepHandler.Trigger)
}

// healthCheck returns the health status of the service.
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return Success(c, map[string]string{
		"status": "healthy",
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	addr := s.config.Address()
	s.logger.Info("starting HTTP server", "address", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying Fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// customErrorHandler handles errors returned from handlers.
func customErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return Error(c, e.Code, ErrCodeInternalError, e.Message)
	}
	return InternalError(c, fmt.Sprintf("unexpected error: %v", err))
}
