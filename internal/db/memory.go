package db

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"recovery-backend/internal/models"

	"github.com/google/uuid"
)

type memoryEntry struct {
	seq int64
	id  string
	doc Document
}

// MemoryBackend in-process document store, selected with a memory:// URL.
// Contents are lost on restart.
type MemoryBackend struct {
	mu          sync.RWMutex
	seq         int64
	collections map[string][]memoryEntry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{collections: make(map[string][]memoryEntry)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	stored := make(Document, len(doc))
	for k, v := range doc {
		stored[k] = plainValue(v)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.collections[collection] = append(m.collections[collection], memoryEntry{
		seq: m.seq,
		id:  id.String(),
		doc: stored,
	})
	return id.String(), nil
}

func (m *MemoryBackend) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	entries := make([]memoryEntry, 0, len(m.collections[collection]))
	for _, e := range m.collections[collection] {
		if matches(e.doc, filter) {
			entries = append(entries, e)
		}
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		ci, cj := createdAt(entries[i].doc), createdAt(entries[j].doc)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return entries[i].seq > entries[j].seq
	})
	if limit < len(entries) {
		entries = entries[:limit]
	}

	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		out := make(Document, len(e.doc)+1)
		for k, v := range e.doc {
			out[k] = v
		}
		out[models.FieldID] = e.id
		docs = append(docs, out)
	}
	return docs, nil
}

func (m *MemoryBackend) ListCollectionNames(ctx context.Context, max int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	m.mu.RUnlock()

	sort.Strings(names)
	if len(names) > max {
		names = names[:max]
	}
	return names, nil
}

func (m *MemoryBackend) Close(context.Context) error { return nil }

func matches(doc Document, filter Filter) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(doc[k], plainValue(want)) {
			return false
		}
	}
	return true
}

func createdAt(doc Document) time.Time {
	t, _ := doc[models.FieldCreatedAt].(time.Time)
	return t
}

// plainValue dereferences optional text so stored documents hold the same
// shapes a database driver would return
func plainValue(v interface{}) interface{} {
	if s, ok := v.(*string); ok {
		if s == nil {
			return nil
		}
		return *s
	}
	return v
}
