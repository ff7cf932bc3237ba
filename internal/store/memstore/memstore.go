// Package memstore is an in-memory store.Store with optimistic serializable
// transactions. It backs tests and DSN-less development runs; the production
// deployment uses the postgres-backed store.
package memstore

import (
	"context"
	"sort"
	"sync"

	"hrpipeline/internal/store"
)

const defaultMaxRetries = 5

type record struct {
	doc     store.Document
	version uint64
}

type Memstore struct {
	mu          sync.Mutex
	collections map[string]map[string]record
	maxRetries  int
}

func New() *Memstore {
	return NewWithRetries(defaultMaxRetries)
}

func NewWithRetries(maxRetries int) *Memstore {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Memstore{
		collections: make(map[string]map[string]record),
		maxRetries:  maxRetries,
	}
}

func (m *Memstore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.collections[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneDoc(rec.doc), nil
}

func (m *Memstore) Put(ctx context.Context, collection, id string, doc store.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(collection, id, doc)
	return nil
}

func (m *Memstore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], id)
	return nil
}

func (m *Memstore) Query(ctx context.Context, collection string, pred func(store.Document) bool) ([]store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.collections[collection]))
	for id := range m.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []store.Document
	for _, id := range ids {
		doc := m.collections[collection][id].doc
		if pred == nil || pred(doc) {
			out = append(out, cloneDoc(doc))
		}
	}
	return out, nil
}

func (m *Memstore) Batch(ctx context.Context, writes ...store.Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyLocked(writes)
	return nil
}

// Transaction runs fn optimistically: reads record the version of every
// document touched, writes are buffered, and commit fails when a concurrent
// writer changed any document in the read set. Conflicting attempts retry up
// to the configured budget, then store.ErrConflict is surfaced.
func (m *Memstore) Transaction(ctx context.Context, fn func(tx store.Txn) error) error {
	for attempt := 0; attempt < m.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &memTxn{store: m, reads: make(map[docKey]uint64)}
		if err := fn(tx); err != nil {
			return err
		}
		if m.commit(tx) {
			return nil
		}
	}
	return store.ErrConflict
}

func (m *Memstore) commit(tx *memTxn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, version := range tx.reads {
		if m.versionLocked(key.collection, key.id) != version {
			return false
		}
	}
	m.applyLocked(tx.writes)
	return true
}

func (m *Memstore) versionLocked(collection, id string) uint64 {
	return m.collections[collection][id].version
}

func (m *Memstore) putLocked(collection, id string, doc store.Document) {
	col, ok := m.collections[collection]
	if !ok {
		col = make(map[string]record)
		m.collections[collection] = col
	}
	col[id] = record{doc: cloneDoc(doc), version: col[id].version + 1}
}

func (m *Memstore) applyLocked(writes []store.Write) {
	for _, w := range writes {
		switch w.Kind {
		case store.WritePut:
			m.putLocked(w.Collection, w.ID, w.Doc)
		case store.WriteDelete:
			delete(m.collections[w.Collection], w.ID)
		}
	}
}

type docKey struct {
	collection string
	id         string
}

type memTxn struct {
	store  *Memstore
	reads  map[docKey]uint64
	writes []store.Write
}

func (t *memTxn) Get(collection, id string) (store.Document, error) {
	// Read-your-writes: the latest buffered write wins over the snapshot.
	for i := len(t.writes) - 1; i >= 0; i-- {
		w := t.writes[i]
		if w.Collection == collection && w.ID == id {
			if w.Kind == store.WriteDelete {
				return nil, store.ErrNotFound
			}
			return cloneDoc(w.Doc), nil
		}
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	rec, ok := t.store.collections[collection][id]
	t.reads[docKey{collection, id}] = rec.version
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneDoc(rec.doc), nil
}

func (t *memTxn) Put(collection, id string, doc store.Document) {
	t.writes = append(t.writes, store.Put(collection, id, cloneDoc(doc)))
}

func (t *memTxn) Delete(collection, id string) {
	t.writes = append(t.writes, store.Delete(collection, id))
}

func cloneDoc(doc store.Document) store.Document {
	if doc == nil {
		return nil
	}
	out := make(store.Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case store.Document:
		return cloneDoc(value)
	case map[string]any:
		return cloneDoc(store.Document(value))
	case []any:
		out := make([]any, len(value))
		for i, elem := range value {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}
