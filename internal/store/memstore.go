package store

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store implementation, used by tests that need a
// real Store without a MongoDB instance. It preserves insertion order per
// collection so TrackChanges history can be asserted deterministically.
type MemStore struct {
	mu          sync.Mutex
	collections map[string][]Document
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{collections: make(map[string][]Document)}
}

func matches(doc Document, filter Filter) bool {
	for k, v := range filter {
		dv, ok := doc[k]
		if !ok {
			return false
		}
		s, ok := dv.(string)
		if !ok || s != v {
			return false
		}
	}
	return true
}

// FindOne implements Store.
func (m *MemStore) FindOne(_ context.Context, collection string, filter Filter) (Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			return cloneDoc(doc), true, nil
		}
	}
	return nil, false, nil
}

// Count implements Store.
func (m *MemStore) Count(_ context.Context, collection string, filter Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

// InsertOne implements Store.
func (m *MemStore) InsertOne(_ context.Context, collection string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], cloneDoc(doc))
	return nil
}

// ReplaceOne implements Store.
func (m *MemStore) ReplaceOne(_ context.Context, collection string, filter Filter, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	for i, d := range docs {
		if matches(d, filter) {
			docs[i] = cloneDoc(doc)
			return nil
		}
	}
	return nil
}

// UpdateField implements Store.
func (m *MemStore) UpdateField(_ context.Context, collection string, filter Filter, field string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	for i, d := range docs {
		if matches(d, filter) {
			updated := cloneDoc(d)
			updated[field] = value
			docs[i] = updated
			return nil
		}
	}
	return nil
}

// Close implements Store.
func (m *MemStore) Close(context.Context) error { return nil }

// All returns every document in collection, in insertion order, for test
// assertions.
func (m *MemStore) All(collection string) []Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Document, len(m.collections[collection]))
	for i, d := range m.collections[collection] {
		out[i] = cloneDoc(d)
	}
	return out
}

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

var _ Store = (*MemStore)(nil)
