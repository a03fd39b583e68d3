package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"recovery-backend/internal/db"
	"recovery-backend/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) RecoveryRequestRepository {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRecoveryRequestRepository(db.NewGateway(db.NewMemoryBackend(), time.Second, logger))
}

func strPtr(s string) *string { return &s }

func sampleRequest() *models.RecoveryRequest {
	return &models.RecoveryRequest{
		FullName:        "Jane Doe",
		Email:           "jane@example.com",
		ContactMethod:   models.ContactMethodSignal,
		ContactHandle:   strPtr("+49 170 0000000"),
		WalletType:      models.WalletTypeSoftware,
		Network:         strPtr("Solana"),
		IncidentType:    models.IncidentTypeFailedTransaction,
		TransactionHash: strPtr("5h3x"),
		Description:     "sent to wrong address",
		Urgency:         models.UrgencyHigh,
		PrivacyConsent:  true,
	}
}

func TestRecoveryRequestRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	in := sampleRequest()

	id, err := repo.Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	out, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, id, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)

	// identical field values apart from store-assigned ones
	got.ID, got.CreatedAt, got.UpdatedAt = "", time.Time{}, time.Time{}
	assert.Equal(t, in, got)
}

func TestRecoveryRequestRepository_ListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		req := sampleRequest()
		req.FullName = name
		id, err := repo.Create(ctx, req)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	out, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, ids[2], out[0].ID)
	assert.Equal(t, ids[1], out[1].ID)

	out, err = repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

type stubStore struct {
	docs []db.Document
	err  error
}

func (s *stubStore) Insert(context.Context, string, db.Document) (string, error) {
	return "", s.err
}

func (s *stubStore) Find(context.Context, string, db.Filter, int) ([]db.Document, error) {
	return s.docs, s.err
}

func TestRecoveryRequestRepository_PropagatesStoreErrors(t *testing.T) {
	repo := NewRecoveryRequestRepository(&stubStore{err: db.ErrNotConnected})

	_, err := repo.Create(context.Background(), sampleRequest())
	assert.True(t, errors.Is(err, db.ErrNotConnected))

	_, err = repo.List(context.Background(), 5)
	assert.True(t, errors.Is(err, db.ErrNotConnected))
}

func TestRecoveryRequestRepository_RejectsDocumentWithoutID(t *testing.T) {
	repo := NewRecoveryRequestRepository(&stubStore{docs: []db.Document{{"full_name": "x"}}})

	_, err := repo.List(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode recovery request")
}

func TestRecoveryRequestRepository_FindByUrgency(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, u := range []models.Urgency{models.UrgencyLow, models.UrgencyCritical, models.UrgencyLow} {
		req := sampleRequest()
		req.Urgency = u
		_, err := repo.Create(ctx, req)
		require.NoError(t, err)
	}

	low, err := repo.FindByUrgency(ctx, models.UrgencyLow, 10)
	require.NoError(t, err)
	assert.Len(t, low, 2)
	for _, r := range low {
		assert.Equal(t, models.UrgencyLow, r.Urgency)
	}

	none, err := repo.FindByUrgency(ctx, models.UrgencyMedium, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
