package server

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"events-api/internal/config"
	"events-api/internal/database"
	"events-api/internal/handlers"
	"events-api/internal/metrics"
	"events-api/internal/middleware"
	"events-api/internal/repositories"
	"events-api/internal/repositories/memory"
	"events-api/internal/repositories/postgres"
	"events-api/internal/repositories/sqlite"
	"events-api/internal/services"
	"events-api/pkg/lambda"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logrus.Logger
	Repository   repositories.EventRepository
	EventService services.EventService
	Router       *handlers.Router
	// Verifier is nil unless a JWT secret is configured
	Verifier *middleware.JWTVerifier
	// Handler is the router behind the authentication layer when enabled
	Handler     lambda.Handler
	CORSHeaders map[string]string

	// Internal dependencies
	db           *database.ConnectionManager
	disconnected atomic.Bool
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if logger == nil {
		logger = config.NewLogger(cfg.Log)
	}

	repo, db, err := newRepository(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	metrics.Init(cfg.Environment, cfg.Database.Driver)

	container := &Container{
		Config:      cfg,
		Logger:      logger,
		Repository:  repo,
		CORSHeaders: middleware.CORSHeaders(cfg.Auth.Enabled),
		db:          db,
	}

	if cfg.Auth.JWTSecret != "" {
		container.Verifier = middleware.NewJWTVerifier(&middleware.AuthConfig{
			JWTSecret:     cfg.Auth.JWTSecret,
			TokenDuration: cfg.Auth.TokenDuration(),
			Issuer:        cfg.Auth.Issuer,
		})
	}

	container.EventService = services.NewEventService(repo, logger)
	container.Router = handlers.NewRouter(container.EventService, logger,
		handlers.WithCORSHeaders(container.CORSHeaders),
		handlers.WithErrorHook(container.observeError),
	)
	container.Handler = container.Router.Handle

	if cfg.Auth.Enabled {
		if container.Verifier == nil {
			container.Close()
			return nil, fmt.Errorf("authentication enabled without a JWT secret")
		}
		container.Handler = middleware.RequireIdentity(container.Verifier, logger, container.Router.Handle)
	}

	logger.WithFields(logrus.Fields{
		"store":        cfg.Database.Driver,
		"auth_enabled": cfg.Auth.Enabled,
	}).Info("Container initialized")

	return container, nil
}

// newRepository opens the event store selected by cfg.Driver
func newRepository(ctx context.Context, cfg *config.DatabaseConfig, logger *logrus.Logger) (repositories.EventRepository, *database.ConnectionManager, error) {
	switch cfg.Driver {
	case database.DriverMemory, "":
		return memory.NewEventRepository(logger), nil, nil
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return nil, nil, fmt.Errorf("%w: store driver %q", repositories.ErrUnsupported, cfg.Driver)
	}

	db := database.NewConnectionManager(cfg.ToConnectionConfig(logger))
	if err := db.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s store: %w", cfg.Driver, err)
	}

	if cfg.Driver == database.DriverPostgres {
		return postgres.NewEventRepository(db.GetPool(), logger), db, nil
	}
	return sqlite.NewEventRepository(db.GetDB(), logger), db, nil
}

// observeError flags the container once the store reports it is unreachable
func (c *Container) observeError(err error) {
	if repositories.IsConnection(err) {
		c.disconnected.Store(true)
	}
}

// Disconnected reports whether a request failed because the event store
// could not be reached. The container should then be rebuilt.
func (c *Container) Disconnected() bool {
	return c.disconnected.Load()
}

// Ping reports whether the event store is reachable
func (c *Container) Ping(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Ping(ctx)
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Repository != nil {
		if err := c.Repository.Close(); err != nil {
			return fmt.Errorf("failed to close repository: %w", err)
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		c.db = nil
	}

	return nil
}
