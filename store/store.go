// Package store implements the columnar store backing a survey: a single file
// holding one or more tables, each read back as a column-labeled dataset.
package store

import (
	"errors"

	"github.com/hupe1980/surveygo/dataset"
)

// ErrTableNotFound is returned when a requested table is absent from a store.
var ErrTableNotFound = errors.New("table not found in store")

// Store is a handle to an open columnar store.
//
// Stores are opened per read operation and released afterwards; they are not
// safe for concurrent mutation without external coordination.
type Store interface {
	// Has reports whether the named table exists.
	Has(table string) bool
	// Tables returns the table names in storage order.
	Tables() []string
	// Columns returns the ordered column names of the named table.
	Columns(table string) ([]string, error)
	// Get reads the named table as a dataset.
	Get(table string) (*dataset.Dataset, error)
	// Put writes or replaces the named table. Used by format converters.
	Put(table string, ds *dataset.Dataset) error
	// Close releases the store handle.
	Close() error
}

// Opener opens a store by path.
type Opener func(path string) (Store, error)

// OpenFile is the default Opener, backed by FileStore.
func OpenFile(path string) (Store, error) {
	return Open(path)
}
