package repository

import (
	"context"
	"fmt"

	"recovery-backend/internal/db"
	"recovery-backend/internal/models"
)

// DocumentStore the gateway operations the repositories need
type DocumentStore interface {
	Insert(ctx context.Context, collection string, doc db.Document) (string, error)
	Find(ctx context.Context, collection string, filter db.Filter, limit int) ([]db.Document, error)
}

// RecoveryRequestRepository defines the interface for RecoveryRequest data access.
// There is no update or delete: stored requests are immutable.
type RecoveryRequestRepository interface {
	Create(ctx context.Context, req *models.RecoveryRequest) (string, error)
	List(ctx context.Context, limit int) ([]*models.RecoveryRequest, error)
	FindByUrgency(ctx context.Context, urgency models.Urgency, limit int) ([]*models.RecoveryRequest, error)
}

// recoveryRequestRepository implements RecoveryRequestRepository
type recoveryRequestRepository struct {
	store      DocumentStore
	collection string
}

// NewRecoveryRequestRepository creates a new RecoveryRequestRepository instance
func NewRecoveryRequestRepository(store DocumentStore) RecoveryRequestRepository {
	return &recoveryRequestRepository{
		store:      store,
		collection: models.MustCollectionFor(models.EntityRecoveryRequest),
	}
}

// Create stores a validated request and returns its generated identifier
func (r *recoveryRequestRepository) Create(ctx context.Context, req *models.RecoveryRequest) (string, error) {
	return r.store.Insert(ctx, r.collection, db.Document(req.ToDocument()))
}

// List returns up to limit requests, newest first
func (r *recoveryRequestRepository) List(ctx context.Context, limit int) ([]*models.RecoveryRequest, error) {
	return r.find(ctx, nil, limit)
}

// FindByUrgency returns up to limit requests of the given urgency, newest first
func (r *recoveryRequestRepository) FindByUrgency(ctx context.Context, urgency models.Urgency, limit int) ([]*models.RecoveryRequest, error) {
	return r.find(ctx, db.Filter{"urgency": string(urgency)}, limit)
}

func (r *recoveryRequestRepository) find(ctx context.Context, filter db.Filter, limit int) ([]*models.RecoveryRequest, error) {
	docs, err := r.store.Find(ctx, r.collection, filter, limit)
	if err != nil {
		return nil, err
	}

	requests := make([]*models.RecoveryRequest, 0, len(docs))
	for _, doc := range docs {
		req, err := models.RecoveryRequestFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode recovery request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}
