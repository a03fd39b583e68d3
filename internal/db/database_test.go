package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"recovery-backend/internal/config"
	"recovery-backend/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeBackend func-field Backend for failure paths
type fakeBackend struct {
	insertFunc func(ctx context.Context, collection string, doc Document) (string, error)
	findFunc   func(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error)
	listFunc   func(ctx context.Context, max int) ([]string, error)
	closed     bool
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	return f.insertFunc(ctx, collection, doc)
}

func (f *fakeBackend) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	return f.findFunc(ctx, collection, filter, limit)
}

func (f *fakeBackend) ListCollectionNames(ctx context.Context, max int) ([]string, error) {
	return f.listFunc(ctx, max)
}

func (f *fakeBackend) Close(context.Context) error {
	f.closed = true
	return nil
}

func newMemoryGateway() *Gateway {
	return NewGateway(NewMemoryBackend(), time.Second, quietLogger())
}

func TestConnect_MissingSettings(t *testing.T) {
	cases := map[string]config.DatabaseConfig{
		"no url":  {Name: "recovery"},
		"no name": {URL: "memory://"},
		"nothing": {},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			g := Connect(context.Background(), cfg, quietLogger())
			require.NotNil(t, g)
			assert.False(t, g.Available())
			assert.Empty(t, g.BackendName())
			assert.Error(t, g.Cause())
		})
	}
}

func TestConnect_UnsupportedScheme(t *testing.T) {
	g := Connect(context.Background(), config.DatabaseConfig{URL: "redis://localhost:6379", Name: "x"}, quietLogger())
	assert.False(t, g.Available())
	assert.Contains(t, g.Cause().Error(), "unsupported")
}

func TestConnect_MalformedURLDoesNotLeakValue(t *testing.T) {
	g := Connect(context.Background(), config.DatabaseConfig{URL: "://user:secret@host", Name: "x"}, quietLogger())
	assert.False(t, g.Available())
	assert.NotContains(t, g.Cause().Error(), "secret")
}

func TestConnect_MalformedMongoURI(t *testing.T) {
	cfg := config.DatabaseConfig{URL: "mongodb://localhost:notaport", Name: "recovery", ConnectTimeout: 1}
	g := Connect(context.Background(), cfg, quietLogger())
	assert.False(t, g.Available())
}

func TestConnect_Memory(t *testing.T) {
	g := Connect(context.Background(), config.DatabaseConfig{URL: "memory://", Name: "recovery"}, quietLogger())
	require.True(t, g.Available())
	assert.Equal(t, "memory", g.BackendName())
	assert.NoError(t, g.Cause())
}

func TestUnavailableGateway_OperationsFail(t *testing.T) {
	g := NewUnavailableGateway(errors.New("dial failed"), quietLogger())
	ctx := context.Background()

	_, err := g.Insert(ctx, "recoveryrequest", Document{"a": 1})
	assert.True(t, errors.Is(err, ErrNotConnected))
	assert.True(t, errors.Is(err, ErrStorage))

	_, err = g.Find(ctx, "recoveryrequest", nil, 10)
	assert.True(t, errors.Is(err, ErrNotConnected))

	_, err = g.ListCollectionNames(ctx)
	assert.True(t, errors.Is(err, ErrNotConnected))

	assert.NoError(t, g.Close(ctx))
}

func TestNilGateway_IsUnavailable(t *testing.T) {
	var g *Gateway
	assert.False(t, g.Available())
	_, err := g.Insert(context.Background(), "c", Document{})
	assert.True(t, errors.Is(err, ErrNotConnected))
}

func TestGateway_InsertAndFind(t *testing.T) {
	g := newMemoryGateway()
	ctx := context.Background()

	handle := "@jane"
	id, err := g.Insert(ctx, "recoveryrequest", Document{
		"full_name":      "Jane Doe",
		"contact_handle": &handle,
		"network":        (*string)(nil),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	docs, err := g.Find(ctx, "recoveryrequest", nil, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0][models.FieldID])
	assert.Equal(t, "Jane Doe", docs[0]["full_name"])
	assert.Equal(t, "@jane", docs[0]["contact_handle"])
	assert.Nil(t, docs[0]["network"])
	assert.IsType(t, time.Time{}, docs[0][models.FieldCreatedAt])
}

func TestGateway_InsertIgnoresCallerID(t *testing.T) {
	g := newMemoryGateway()
	ctx := context.Background()

	id, err := g.Insert(ctx, "c", Document{models.FieldID: "forged"})
	require.NoError(t, err)
	assert.NotEqual(t, "forged", id)

	docs, err := g.Find(ctx, "c", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, id, docs[0][models.FieldID])
}

func TestGateway_FindLimitAndOrder(t *testing.T) {
	g := newMemoryGateway()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	g.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := g.Insert(ctx, "c", Document{"n": i})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	docs, err := g.Find(ctx, "c", nil, 3)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, ids[4], docs[0][models.FieldID])
	assert.Equal(t, ids[3], docs[1][models.FieldID])
	assert.Equal(t, ids[2], docs[2][models.FieldID])

	docs, err = g.Find(ctx, "c", nil, 100)
	require.NoError(t, err)
	assert.Len(t, docs, 5)

	docs, err = g.Find(ctx, "c", nil, 0)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	docs, err = g.Find(ctx, "c", nil, -1)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestGateway_FindSameTimestampKeepsInsertionOrder(t *testing.T) {
	g := newMemoryGateway()
	ctx := context.Background()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	first, err := g.Insert(ctx, "c", Document{})
	require.NoError(t, err)
	second, err := g.Insert(ctx, "c", Document{})
	require.NoError(t, err)

	docs, err := g.Find(ctx, "c", nil, 2)
	require.NoError(t, err)
	assert.Equal(t, second, docs[0][models.FieldID])
	assert.Equal(t, first, docs[1][models.FieldID])
}

func TestGateway_FindFilter(t *testing.T) {
	g := newMemoryGateway()
	ctx := context.Background()

	_, err := g.Insert(ctx, "c", Document{"urgency": "High"})
	require.NoError(t, err)
	_, err = g.Insert(ctx, "c", Document{"urgency": "Low"})
	require.NoError(t, err)

	docs, err := g.Find(ctx, "c", Filter{"urgency": "High"}, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "High", docs[0]["urgency"])
}

func TestGateway_FindUnknownCollectionIsEmpty(t *testing.T) {
	g := newMemoryGateway()
	docs, err := g.Find(context.Background(), "missing", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestGateway_FindIsRepeatable(t *testing.T) {
	g := newMemoryGateway()
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := g.Insert(ctx, "c", Document{"n": i})
		require.NoError(t, err)
	}

	first, err := g.Find(ctx, "c", nil, 3)
	require.NoError(t, err)
	second, err := g.Find(ctx, "c", nil, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGateway_ListCollectionNamesBounded(t *testing.T) {
	g := newMemoryGateway()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := g.Insert(ctx, fmt.Sprintf("c%02d", i), Document{})
		require.NoError(t, err)
	}

	names, err := g.ListCollectionNames(ctx)
	require.NoError(t, err)
	assert.Len(t, names, MaxCollectionNames)
	assert.Equal(t, "c00", names[0])
}

func TestGateway_BackendFailuresAreStorageErrors(t *testing.T) {
	boom := errors.New("connection reset")
	fb := &fakeBackend{
		insertFunc: func(context.Context, string, Document) (string, error) { return "", boom },
		findFunc:   func(context.Context, string, Filter, int) ([]Document, error) { return nil, boom },
		listFunc:   func(context.Context, int) ([]string, error) { return nil, boom },
	}
	g := NewGateway(fb, time.Second, quietLogger())
	ctx := context.Background()

	_, err := g.Insert(ctx, "c", Document{})
	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "insert", serr.Op)
	assert.Equal(t, "c", serr.Collection)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, errors.Is(err, ErrStorage))
	assert.False(t, errors.Is(err, ErrNotConnected))

	_, err = g.Find(ctx, "c", nil, 1)
	assert.True(t, errors.Is(err, boom))

	_, err = g.ListCollectionNames(ctx)
	assert.True(t, errors.Is(err, boom))

	require.NoError(t, g.Close(ctx))
	assert.True(t, fb.closed)
}

func TestGateway_OperationDeadline(t *testing.T) {
	fb := &fakeBackend{
		insertFunc: func(ctx context.Context, _ string, _ Document) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	g := NewGateway(fb, 20*time.Millisecond, quietLogger())

	start := time.Now()
	_, err := g.Insert(context.Background(), "c", Document{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 2*time.Second)
}
