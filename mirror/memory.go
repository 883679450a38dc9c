package mirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dcode-github/listing_analytics/models"
)

// MemoryStore is an in-process mirror. Commits are atomic.
type MemoryStore struct {
	mu        sync.Mutex
	docs      map[string]map[string]any
	batch     int
	now       func() time.Time
	existsErr map[string]error
	commitErr error
	commits   int
}

func NewMemoryStore(batch int) *MemoryStore {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &MemoryStore{
		docs:      make(map[string]map[string]any),
		batch:     batch,
		now:       time.Now,
		existsErr: make(map[string]error),
	}
}

// FailExists makes Exists(key) return err.
func (m *MemoryStore) FailExists(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existsErr[key] = err
}

// FailCommit makes every Commit return err. Pass nil to recover.
func (m *MemoryStore) FailCommit(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitErr = err
}

func (m *MemoryStore) MaxBatch() int { return m.batch }

func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.existsErr[key]; err != nil {
		return false, err
	}
	_, ok := m.docs[key]
	return ok, nil
}

func (m *MemoryStore) Commit(_ context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	if len(docs) > m.batch {
		return fmt.Errorf("batch of %d exceeds limit %d", len(docs), m.batch)
	}
	stamp := m.now().UTC()
	for _, d := range docs {
		data := make(map[string]any, len(d.Data)+2)
		for k, v := range d.Data {
			data[k] = v
		}
		data["createdAt"] = stamp
		data["updatedAt"] = stamp
		m.docs[d.Key] = data
	}
	m.commits++
	return nil
}

// Get returns a copy of the stored document.
func (m *MemoryStore) Get(key string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, true
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// Commits reports how many successful Commit calls were made.
func (m *MemoryStore) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// SliceSource serves a fixed list of records.
type SliceSource []models.Property

func (s SliceSource) Each(ctx context.Context, fn func(models.Property, error) error) error {
	for _, p := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(p, nil); err != nil {
			return err
		}
	}
	return nil
}
