package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"recovery-backend/internal/config"
	"recovery-backend/internal/metrics"
	"recovery-backend/internal/models"

	"github.com/sirupsen/logrus"
)

// Document a stored record. Documents returned by the gateway always carry
// their identifier as text under models.FieldID.
type Document map[string]interface{}

// Filter top-level field equality filter; empty matches every document
type Filter map[string]interface{}

// MaxCollectionNames upper bound of ListCollectionNames
const MaxCollectionNames = 10

// Backend a concrete document database
type Backend interface {
	Name() string
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	// Find returns at most limit documents, newest created_at first
	Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error)
	ListCollectionNames(ctx context.Context, max int) ([]string, error)
	Close(ctx context.Context) error
}

// Gateway process-wide handle to the document store. A Gateway without a
// backend is unavailable: every operation fails with ErrNotConnected while the
// rest of the service keeps running.
type Gateway struct {
	backend          Backend
	cause            error
	operationTimeout time.Duration
	logger           *logrus.Logger
	now              func() time.Time
}

// NewGateway wraps an already connected backend
func NewGateway(b Backend, operationTimeout time.Duration, logger *logrus.Logger) *Gateway {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if operationTimeout <= 0 {
		operationTimeout = 10 * time.Second
	}
	return &Gateway{
		backend:          b,
		operationTimeout: operationTimeout,
		logger:           logger,
		now:              time.Now,
	}
}

// NewUnavailableGateway a gateway that records why no backend could be obtained
func NewUnavailableGateway(cause error, logger *logrus.Logger) *Gateway {
	g := NewGateway(nil, 0, logger)
	g.cause = cause
	return g
}

// Connect opens the configured document store. It never fails: any problem
// (missing settings, malformed URL, unreachable host, auth failure) yields an
// unavailable gateway and a warning in the log.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *logrus.Logger) *Gateway {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	b, err := dial(ctx, cfg, logger)
	if err != nil {
		metrics.StoreConnectionStatus.Set(0)
		logger.WithError(err).Warn("⚠️ Document store unavailable, running in degraded mode")
		return NewUnavailableGateway(err, logger)
	}

	metrics.StoreConnectionStatus.Set(1)
	logger.WithFields(logrus.Fields{
		"backend":  b.Name(),
		"database": cfg.Name,
	}).Info("✅ Document store connected")
	return NewGateway(b, cfg.OperationTimeoutDuration(), logger)
}

func dial(ctx context.Context, cfg config.DatabaseConfig, logger *logrus.Logger) (Backend, error) {
	if !cfg.URLSet() {
		return nil, errors.New("database url is not configured")
	}
	if !cfg.NameSet() {
		return nil, errors.New("database name is not configured")
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		// url.Parse echoes the input; keep credentials out of logs and responses
		return nil, errors.New("database url is malformed")
	}

	timeout := cfg.ConnectTimeoutDuration()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return dialMongo(connectCtx, cfg.URL, cfg.Name, timeout)
	case "postgres", "postgresql":
		return dialPostgres(connectCtx, u, cfg.Name, logger)
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}
}

// Available whether a store handle was obtained
func (g *Gateway) Available() bool {
	return g != nil && g.backend != nil
}

// BackendName name of the connected backend, empty when unavailable
func (g *Gateway) BackendName() string {
	if !g.Available() {
		return ""
	}
	return g.backend.Name()
}

// Cause why the gateway is unavailable; nil when connected
func (g *Gateway) Cause() error {
	if g == nil {
		return ErrNotConnected
	}
	return g.cause
}

// Insert stores doc in collection, creating the collection if needed, and
// returns the generated identifier. created_at/updated_at are set here.
func (g *Gateway) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	const op = "insert"
	if !g.Available() {
		return "", g.notConnected(op, collection)
	}

	now := g.now().UTC()
	stored := make(Document, len(doc)+2)
	for k, v := range doc {
		stored[k] = v
	}
	delete(stored, models.FieldID)
	stored[models.FieldCreatedAt] = now
	stored[models.FieldUpdatedAt] = now

	ctx, cancel := context.WithTimeout(ctx, g.operationTimeout)
	defer cancel()

	start := time.Now()
	id, err := g.backend.Insert(ctx, collection, stored)
	g.observe(op, start, err)
	if err != nil {
		g.logger.WithFields(logrus.Fields{
			"collection": collection,
			"backend":    g.backend.Name(),
		}).WithError(err).Error("❌ Document insert failed")
		return "", &StorageError{Op: op, Collection: collection, Err: err}
	}
	return id, nil
}

// Find returns up to limit documents of collection matching filter, newest
// first. A limit of zero or less returns nothing without querying the store.
func (g *Gateway) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	const op = "find"
	if !g.Available() {
		return nil, g.notConnected(op, collection)
	}
	if limit <= 0 {
		return []Document{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.operationTimeout)
	defer cancel()

	start := time.Now()
	docs, err := g.backend.Find(ctx, collection, filter, limit)
	g.observe(op, start, err)
	if err != nil {
		g.logger.WithFields(logrus.Fields{
			"collection": collection,
			"backend":    g.backend.Name(),
		}).WithError(err).Error("❌ Document find failed")
		return nil, &StorageError{Op: op, Collection: collection, Err: err}
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// ListCollectionNames first MaxCollectionNames collection names; diagnostic only
func (g *Gateway) ListCollectionNames(ctx context.Context) ([]string, error) {
	const op = "list_collections"
	if !g.Available() {
		return nil, g.notConnected(op, "")
	}

	ctx, cancel := context.WithTimeout(ctx, g.operationTimeout)
	defer cancel()

	start := time.Now()
	names, err := g.backend.ListCollectionNames(ctx, MaxCollectionNames)
	g.observe(op, start, err)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	if len(names) > MaxCollectionNames {
		names = names[:MaxCollectionNames]
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Close releases the backend connection
func (g *Gateway) Close(ctx context.Context) error {
	if !g.Available() {
		return nil
	}
	if err := g.backend.Close(ctx); err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	metrics.StoreConnectionStatus.Set(0)
	return nil
}

func (g *Gateway) notConnected(op, collection string) error {
	metrics.StoreOperationDuration.WithLabelValues(op, metrics.ResultUnavailable).Observe(0)
	return &StorageError{Op: op, Collection: collection, Err: ErrNotConnected}
}

func (g *Gateway) observe(op string, start time.Time, err error) {
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	metrics.StoreOperationDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}
