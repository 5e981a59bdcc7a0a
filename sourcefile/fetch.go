package sourcefile

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// FetchOptions configure Fetch.
type FetchOptions struct {
	// Concurrency bounds the number of parallel downloads.
	Concurrency int
	// Limiter, if set, throttles download starts. Useful against object
	// stores with request quotas.
	Limiter *rate.Limiter
}

// Fetch copies the named source files from the store into destDir and returns
// the local paths, in input order. The first failure cancels the remaining
// downloads.
func Fetch(ctx context.Context, src Store, names []string, destDir string, optFns ...func(*FetchOptions)) ([]string, error) {
	opts := FetchOptions{Concurrency: 4}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, name := range names {
		g.Go(func() error {
			if opts.Limiter != nil {
				if err := opts.Limiter.Wait(ctx); err != nil {
					return err
				}
			}

			rc, err := src.Open(ctx, name)
			if err != nil {
				return err
			}
			defer rc.Close()

			dest := filepath.Join(destDir, filepath.Base(name))
			f, err := os.Create(dest)
			if err != nil {
				return err
			}

			if _, err := io.Copy(f, rc); err != nil {
				f.Close()
				os.Remove(dest)
				return err
			}
			if err := f.Close(); err != nil {
				os.Remove(dest)
				return err
			}

			paths[i] = dest

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return paths, nil
}
