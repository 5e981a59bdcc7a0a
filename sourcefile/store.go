// Package sourcefile abstracts where a survey's raw source files live
// (SAS/Stata/SPSS/Rdata dumps) before they are converted into a store.
//
// Backends: local directory, S3, and MinIO/S3-compatible object storage.
package sourcefile

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a source file does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is read-only access to a set of source files.
type Store interface {
	// Open opens a source file for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// List returns the file names under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
