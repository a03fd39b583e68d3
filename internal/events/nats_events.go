package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recovery-backend/internal/config"
	"recovery-backend/internal/metrics"
	"recovery-backend/internal/models"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// RecoveryCreatedEvent published after a recovery request is stored.
// Carries no contact details; consumers look the request up by ID.
type RecoveryCreatedEvent struct {
	ID            string    `json:"id"`
	WalletType    string    `json:"wallet_type"`
	IncidentType  string    `json:"incident_type"`
	Urgency       string    `json:"urgency"`
	ContactMethod string    `json:"contact_method"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// NewRecoveryCreatedEvent builds the notification for a stored request
func NewRecoveryCreatedEvent(id string, req *models.RecoveryRequest, at time.Time) RecoveryCreatedEvent {
	return RecoveryCreatedEvent{
		ID:            id,
		WalletType:    string(req.WalletType),
		IncidentType:  string(req.IncidentType),
		Urgency:       string(req.Urgency),
		ContactMethod: string(req.ContactMethod),
		SubmittedAt:   at.UTC(),
	}
}

// Publisher intake notification sink
type Publisher interface {
	PublishRecoveryCreated(ctx context.Context, evt RecoveryCreatedEvent) error
	Close() error
}

// NoopPublisher used when NATS is not configured or unreachable
type NoopPublisher struct{}

func (NoopPublisher) PublishRecoveryCreated(context.Context, RecoveryCreatedEvent) error { return nil }
func (NoopPublisher) Close() error { return nil }

// natsConn the subset of *nats.Conn the publisher uses
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes intake notifications on a core NATS subject
type NATSPublisher struct {
	conn    natsConn
	subject string
	logger  *logrus.Logger
}

// NewPublisher returns a NATS publisher, or a NoopPublisher when NATS is not
// configured or cannot be reached. Notification failures never block intake.
func NewPublisher(cfg config.NATSConfig, logger *logrus.Logger) Publisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.URL == "" {
		logger.Info("NATS not configured, intake notifications disabled")
		return NoopPublisher{}
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("recovery-backend"),
		nats.Timeout(cfg.TimeoutDuration()),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS connection lost")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("NATS connection restored")
		}),
	)
	if err != nil {
		logger.WithError(err).Warn("⚠️ NATS unavailable, intake notifications disabled")
		return NoopPublisher{}
	}

	logger.WithField("subject", cfg.Subject).Info("✅ NATS publisher connected")
	return newNATSPublisher(conn, cfg.Subject, logger)
}

func newNATSPublisher(conn natsConn, subject string, logger *logrus.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}
}

// PublishRecoveryCreated fire-and-forget publish on the configured subject
func (p *NATSPublisher) PublishRecoveryCreated(ctx context.Context, evt RecoveryCreatedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		metrics.RecoveryEventsPublished.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("failed to publish to %s: %w", p.subject, err)
	}
	metrics.RecoveryEventsPublished.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
