package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"recovery-backend/internal/db"
	"recovery-backend/internal/events"
	"recovery-backend/internal/metrics"
	"recovery-backend/internal/middleware"
	"recovery-backend/internal/models"
	"recovery-backend/internal/repository"
	"recovery-backend/internal/schema"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MaxRequestBodyBytes upper bound for a submission body
const MaxRequestBodyBytes = 1 << 20

const publishTimeout = 5 * time.Second

// RecoveryHandler handles recovery request intake and listing
type RecoveryHandler struct {
	repo         repository.RecoveryRequestRepository
	publisher    events.Publisher
	logger       *logrus.Logger
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

// NewRecoveryHandler creates a new RecoveryHandler instance
func NewRecoveryHandler(repo repository.RecoveryRequestRepository, publisher events.Publisher, logger *logrus.Logger, defaultLimit, maxLimit int) *RecoveryHandler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &RecoveryHandler{
		repo:         repo,
		publisher:    publisher,
		logger:       logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		now:          time.Now,
	}
}

// CreateRecoveryRequestHandler POST /api/recovery
func (h *RecoveryHandler) CreateRecoveryRequestHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBodyBytes)

	raw, err := schema.DecodeJSON(c.Request.Body)
	if err != nil {
		h.rejectSubmission(c, err)
		return
	}

	req, err := schema.Validate(raw)
	if err != nil {
		h.rejectSubmission(c, err)
		return
	}

	id, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		h.rejectSubmission(c, err)
		return
	}
	metrics.RecoverySubmissions.WithLabelValues(metrics.ResultOK).Inc()

	h.logger.WithFields(logrus.Fields{
		"request_id":    middleware.GetRequestID(c),
		"recovery_id":   id,
		"wallet_type":   req.WalletType,
		"incident_type": req.IncidentType,
		"urgency":       req.Urgency,
	}).Info("✅ Recovery request stored")

	h.notify(id, req)

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"id":     id,
	})
}

// ListRecoveryRequestsHandler GET /api/recovery?limit=N
func (h *RecoveryHandler) ListRecoveryRequestsHandler(c *gin.Context) {
	limit, err := h.parseLimit(c.Query("limit"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, ErrorTypeValidation, err.Error(), []schema.FieldError{
			{Field: "limit", Reason: schema.ReasonInvalidFormat},
		})
		return
	}

	items, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"limit":      limit,
			"error":      err.Error(),
		}).Error("❌ Failed to list recovery requests")
		respondWithFailure(c, err)
		return
	}
	if items == nil {
		items = []*models.RecoveryRequest{}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// parseLimit empty means the default; values above the maximum are clamped
func (h *RecoveryHandler) parseLimit(v string) (int, error) {
	if v == "" {
		return h.defaultLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if n < 0 {
		return 0, errors.New("limit must not be negative")
	}
	if n > h.maxLimit {
		n = h.maxLimit
	}
	return n, nil
}

func (h *RecoveryHandler) rejectSubmission(c *gin.Context, err error) {
	result := metrics.ResultError
	entry := h.logger.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"error":      err.Error(),
	})
	switch {
	case errors.Is(err, schema.ErrValidation):
		result = metrics.ResultValidationFailed
		entry.Warn("⚠️ Recovery request rejected")
	case errors.Is(err, db.ErrNotConnected):
		result = metrics.ResultUnavailable
		entry.Error("❌ Document store not available")
	default:
		entry.Error("❌ Failed to store recovery request")
	}
	metrics.RecoverySubmissions.WithLabelValues(result).Inc()
	respondWithFailure(c, err)
}

// notify publishes the intake event; failures are logged and never fail the request
func (h *RecoveryHandler) notify(id string, req *models.RecoveryRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	evt := events.NewRecoveryCreatedEvent(id, req, h.now().UTC())
	if err := h.publisher.PublishRecoveryCreated(ctx, evt); err != nil {
		h.logger.WithFields(logrus.Fields{
			"recovery_id": id,
			"error":       err.Error(),
		}).Warn("⚠️ Failed to publish recovery event")
	}
}
