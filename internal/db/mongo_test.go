package db

import (
	"context"
	"testing"
	"time"

	"recovery-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testCollection = "recoveryrequest"

func newMockMongo(mt *mtest.T) *MongoBackend {
	return &MongoBackend{client: mt.Client, database: mt.DB}
}

func TestMongoBackend_Insert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns generated object id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := newMockMongo(mt).Insert(context.Background(), testCollection, Document{
			"full_name":  "Jane Doe",
			"created_at": time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(id)
		assert.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "insert", evt.CommandName)
		assert.Equal(mt, testCollection, evt.Command.Lookup("insert").StringValue())
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := newMockMongo(mt).Insert(context.Background(), testCollection, Document{"full_name": "Jane Doe"})
		assert.Error(mt, err)
	})
}

func TestMongoBackend_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sorts newest first and applies limit", func(mt *mtest.T) {
		newer := primitive.NewObjectID()
		older := primitive.NewObjectID()
		created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		ns := mt.DB.Name() + "." + testCollection

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: newer},
				{Key: "full_name", Value: "Jane Doe"},
				{Key: "urgency", Value: "High"},
				{Key: "created_at", Value: primitive.NewDateTimeFromTime(created.Add(time.Minute))},
			},
			bson.D{
				{Key: "_id", Value: older},
				{Key: "full_name", Value: "John Roe"},
				{Key: "urgency", Value: "High"},
				{Key: "created_at", Value: primitive.NewDateTimeFromTime(created)},
			},
		))

		docs, err := newMockMongo(mt).Find(context.Background(), testCollection, Filter{"urgency": "High"}, 5)
		require.NoError(mt, err)
		require.Len(mt, docs, 2)

		assert.Equal(mt, newer.Hex(), docs[0][models.FieldID])
		assert.NotContains(mt, docs[0], "_id")
		assert.Equal(mt, "Jane Doe", docs[0]["full_name"])
		got, ok := docs[1][models.FieldCreatedAt].(time.Time)
		require.True(mt, ok)
		assert.True(mt, created.Equal(got))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)

		limit, ok := evt.Command.Lookup("limit").AsInt64OK()
		require.True(mt, ok)
		assert.Equal(mt, int64(5), limit)

		sort, err := evt.Command.Lookup("sort").Document().Elements()
		require.NoError(mt, err)
		require.Len(mt, sort, 2)
		assert.Equal(mt, models.FieldCreatedAt, sort[0].Key())
		assert.Equal(mt, int64(-1), sort[0].Value().AsInt64())
		assert.Equal(mt, "_id", sort[1].Key())
		assert.Equal(mt, int64(-1), sort[1].Value().AsInt64())

		filter := evt.Command.Lookup("filter").Document()
		assert.Equal(mt, "High", filter.Lookup("urgency").StringValue())
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + testCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		docs, err := newMockMongo(mt).Find(context.Background(), testCollection, nil, 10)
		require.NoError(mt, err)
		assert.NotNil(mt, docs)
		assert.Empty(mt, docs)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on recovery",
		}))

		_, err := newMockMongo(mt).Find(context.Background(), testCollection, nil, 10)
		assert.Error(mt, err)
	})
}

func TestMongoBackend_ListCollectionNames(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("truncates to max", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".$cmd.listCollections"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "name", Value: "recoveryrequest"}, {Key: "type", Value: "collection"}},
			bson.D{{Key: "name", Value: "audit"}, {Key: "type", Value: "collection"}},
			bson.D{{Key: "name", Value: "sessions"}, {Key: "type", Value: "collection"}},
		))

		names, err := newMockMongo(mt).ListCollectionNames(context.Background(), 2)
		require.NoError(mt, err)
		assert.Equal(mt, []string{"recoveryrequest", "audit"}, names)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "listCollections", evt.CommandName)
	})
}
