package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"recovery-backend/internal/config"
	"recovery-backend/internal/db"
	"recovery-backend/internal/events"
	"recovery-backend/internal/handlers"
	"recovery-backend/internal/repository"
	"recovery-backend/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ServiceContainer holds the process-wide dependencies built at startup
type ServiceContainer struct {
	Config *config.Config
	Logger *logrus.Logger

	// Document store
	Gateway *db.Gateway

	// Repositories
	RecoveryRequestRepo repository.RecoveryRequestRepository

	// Events
	Publisher events.Publisher

	// Handlers
	RecoveryHandler   *handlers.RecoveryHandler
	DiagnosticHandler *handlers.DiagnosticHandler
}

// NewLogger builds the process logger from config
func NewLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// InitializeContainer connects to the document store and the event bus and
// wires repositories and handlers. Neither connection failing is fatal.
func InitializeContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *ServiceContainer {
	logger.Info("🚀 Initializing Service Container...")

	c := &ServiceContainer{
		Config: cfg,
		Logger: logger,
	}

	// 1. Document store
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeoutDuration())
	c.Gateway = db.Connect(connectCtx, cfg.Database, logger)
	cancel()

	// 2. Repositories
	logger.Info("📦 Initializing Repositories...")
	c.RecoveryRequestRepo = repository.NewRecoveryRequestRepository(c.Gateway)

	// 3. Events (optional)
	c.Publisher = events.NewPublisher(cfg.NATS, logger)

	// 4. Handlers
	c.RecoveryHandler = handlers.NewRecoveryHandler(c.RecoveryRequestRepo, c.Publisher, logger, cfg.API.DefaultListLimit, cfg.API.MaxListLimit)
	c.DiagnosticHandler = handlers.NewDiagnosticHandler(c.Gateway, cfg.Database)

	logger.WithFields(logrus.Fields{
		"store_available": c.Gateway.Available(),
		"store_backend":   c.Gateway.BackendName(),
	}).Info("✅ Service Container initialized successfully")
	return c
}

// Router builds the HTTP engine over the container's handlers
func (c *ServiceContainer) Router() *gin.Engine {
	return router.SetupRouter(c.Config, router.Handlers{
		Recovery:   c.RecoveryHandler,
		Diagnostic: c.DiagnosticHandler,
	}, c.Logger)
}

// Close flushes the publisher and releases the store connection
func (c *ServiceContainer) Close(ctx context.Context) error {
	var errs []error
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
		}
	}
	if err := c.Gateway.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close document store: %w", err))
	}
	if len(errs) == 0 {
		c.Logger.Info("✅ Service Container closed")
	}
	return errors.Join(errs...)
}
