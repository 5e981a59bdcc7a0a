package store

import (
	"fmt"
	"sync"

	"github.com/hupe1980/surveygo/dataset"
)

// MemStore is an in-memory Store, useful for tests and as a scratch target
// for converters.
type MemStore struct {
	mu     sync.RWMutex
	tables map[string]*dataset.Dataset
	order  []string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[string]*dataset.Dataset)}
}

// Has reports whether the named table exists.
func (s *MemStore) Has(table string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tables[table]
	return ok
}

// Tables returns the table names in insertion order.
func (s *MemStore) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Columns returns the ordered column names of the named table.
func (s *MemStore) Columns(table string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}
	return ds.Columns(), nil
}

// Get returns a deep copy of the named table, so callers can rename and
// select without mutating the stored dataset.
func (s *MemStore) Get(table string) (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}
	return ds.Clone(), nil
}

// Put writes or replaces the named table.
func (s *MemStore) Put(table string, ds *dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; !ok {
		s.order = append(s.order, table)
	}
	s.tables[table] = ds.Clone()
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }

// Opener returns an Opener that yields this store for any path. Handy for
// wiring a shared in-memory store into a Survey under test.
func (s *MemStore) Opener() Opener {
	return func(string) (Store, error) { return s, nil }
}
