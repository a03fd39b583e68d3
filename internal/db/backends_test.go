package db

import (
	"encoding/json"
	"testing"
	"time"

	"recovery-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFromBSON(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	doc := fromBSON(bson.M{
		"_id":             oid,
		"full_name":       "Jane Doe",
		"privacy_consent": true,
		"network":         nil,
		"created_at":      primitive.NewDateTimeFromTime(created),
	})

	assert.Equal(t, oid.Hex(), doc[models.FieldID])
	assert.NotContains(t, doc, "_id")
	assert.Equal(t, "Jane Doe", doc["full_name"])
	assert.Equal(t, true, doc["privacy_consent"])
	assert.Nil(t, doc["network"])
	got, ok := doc["created_at"].(time.Time)
	require.True(t, ok)
	assert.True(t, created.Equal(got))
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "custom", idString("custom"))
	assert.Equal(t, "42", idString(int32(42)))
	assert.Equal(t, "", idString(nil))
}

func TestToBSONDereferencesOptionalText(t *testing.T) {
	handle := "@jane"
	out := toBSON(Document{"contact_handle": &handle, "network": (*string)(nil)})
	assert.Equal(t, "@jane", out["contact_handle"])
	assert.Nil(t, out["network"])

	assert.Empty(t, toBSON(nil))
}

func TestPostgresRecordRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	handle := "@jane"
	rec, err := encodeRecord("0191e1a4-0000-7000-8000-000000000001", "recoveryrequest", Document{
		"full_name":       "Jane Doe",
		"contact_handle":  &handle,
		"network":         (*string)(nil),
		"privacy_consent": false,
		"created_at":      created,
	})
	require.NoError(t, err)
	assert.Equal(t, "recoveryrequest", rec.Collection)
	assert.Equal(t, created, rec.CreatedAt)
	assert.True(t, json.Valid([]byte(rec.Body)))

	doc, err := decodeRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, doc[models.FieldID])
	assert.Equal(t, "Jane Doe", doc["full_name"])
	assert.Equal(t, "@jane", doc["contact_handle"])
	assert.Nil(t, doc["network"])
	assert.Equal(t, false, doc["privacy_consent"])
	got, ok := doc["created_at"].(time.Time)
	require.True(t, ok)
	assert.True(t, created.Equal(got))
}

func TestDecodeRecordRejectsCorruptBody(t *testing.T) {
	_, err := decodeRecord(&documentRecord{ID: "x", Body: "{not json"})
	require.Error(t, err)
}
