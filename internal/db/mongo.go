package db

import (
	"context"
	"fmt"
	"time"

	"recovery-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoIDField = "_id"

// MongoBackend MongoDB document store
type MongoBackend struct {
	client   *mongo.Client
	database *mongo.Database
}

func dialMongo(ctx context.Context, uri, database string, timeout time.Duration) (*MongoBackend, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	return &MongoBackend{
		client:   client,
		database: client.Database(database),
	}, nil
}

func (m *MongoBackend) Name() string { return "mongo" }

func (m *MongoBackend) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	res, err := m.database.Collection(collection).InsertOne(ctx, toBSON(doc))
	if err != nil {
		return "", err
	}
	return idString(res.InsertedID), nil
}

func (m *MongoBackend) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{
			{Key: models.FieldCreatedAt, Value: -1},
			{Key: mongoIDField, Value: -1},
		})

	cur, err := m.database.Collection(collection).Find(ctx, toBSON(Document(filter)), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := make([]Document, 0, limit)
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (m *MongoBackend) ListCollectionNames(ctx context.Context, max int) ([]string, error) {
	names, err := m.database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	if len(names) > max {
		names = names[:max]
	}
	return names, nil
}

func (m *MongoBackend) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toBSON(doc Document) bson.M {
	out := bson.M{}
	for k, v := range doc {
		out[k] = plainValue(v)
	}
	return out
}

// fromBSON converts a decoded mongo document into the gateway shape:
// the native ObjectID becomes text under "id" and dates become time.Time
func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == mongoIDField {
			continue
		}
		if dt, ok := v.(primitive.DateTime); ok {
			doc[k] = dt.Time().UTC()
			continue
		}
		doc[k] = v
	}
	doc[models.FieldID] = idString(raw[mongoIDField])
	return doc
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
