package db

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"recovery-backend/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// documentRecord one document of any collection, body kept as JSONB
type documentRecord struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	Collection string    `gorm:"type:varchar(128);not null;index:idx_documents_collection_created,priority:1"`
	Body       string    `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time `gorm:"not null;index:idx_documents_collection_created,priority:2,sort:desc"`
}

func (documentRecord) TableName() string { return "documents" }

// PostgresBackend document store on PostgreSQL. All collections share the
// documents table; a collection exists once it holds a document.
type PostgresBackend struct {
	db *gorm.DB
}

func dialPostgres(ctx context.Context, u *url.URL, database string, log *logrus.Logger) (*PostgresBackend, error) {
	dsn := *u
	dsn.Path = "/" + database

	gdb, err := gorm.Open(postgres.Open(dsn.String()), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	log.Info("🚀 Ensuring documents table...")
	if err := gdb.WithContext(ctx).AutoMigrate(&documentRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("AutoMigrate failed: %w", err)
	}

	return &PostgresBackend{db: gdb}, nil
}

func (p *PostgresBackend) Name() string { return "postgres" }

func (p *PostgresBackend) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	rec, err := encodeRecord(id.String(), collection, doc)
	if err != nil {
		return "", err
	}
	if err := p.db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (p *PostgresBackend) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	query := p.db.WithContext(ctx).Where("collection = ?", collection)
	if len(filter) > 0 {
		containment, err := json.Marshal(plainDocument(Document(filter)))
		if err != nil {
			return nil, fmt.Errorf("failed to encode filter: %w", err)
		}
		query = query.Where("body @> ?::jsonb", string(containment))
	}

	var records []documentRecord
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(records))
	for i := range records {
		doc, err := decodeRecord(&records[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (p *PostgresBackend) ListCollectionNames(ctx context.Context, max int) ([]string, error) {
	var names []string
	err := p.db.WithContext(ctx).
		Model(&documentRecord{}).
		Distinct().
		Order("collection").
		Limit(max).
		Pluck("collection", &names).Error
	return names, err
}

func (p *PostgresBackend) Close(context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func encodeRecord(id, collection string, doc Document) (*documentRecord, error) {
	body, err := json.Marshal(plainDocument(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	created, ok := doc[models.FieldCreatedAt].(time.Time)
	if !ok {
		created = time.Now().UTC()
	}
	return &documentRecord{
		ID:         id,
		Collection: collection,
		Body:       string(body),
		CreatedAt:  created,
	}, nil
}

func decodeRecord(rec *documentRecord) (Document, error) {
	dec := json.NewDecoder(strings.NewReader(rec.Body))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", rec.ID, err)
	}
	if doc == nil {
		doc = Document{}
	}
	delete(doc, mongoIDField)
	doc[models.FieldID] = rec.ID
	doc[models.FieldCreatedAt] = rec.CreatedAt.UTC()
	return doc, nil
}

func plainDocument(doc Document) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = plainValue(v)
	}
	return out
}
