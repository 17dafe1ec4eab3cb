// Package parallel provides the chunked worker helpers used by numeric code.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Parallelize splits [0, n) into contiguous chunks, one per CPU, and runs fn
// on each chunk concurrently. It returns after all chunks are done.
func Parallelize(n int, fn func(start, end int)) {
	_ = ParallelizeErr(context.Background(), n, func(_ context.Context, start, end int) error {
		fn(start, end)
		return nil
	})
}

// ParallelizeWithThreshold runs fn sequentially on [0, n) when n is below
// threshold and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(n, threshold int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n < threshold {
		fn(0, n)
		return
	}
	Parallelize(n, fn)
}

// ParallelizeErr is Parallelize for work that can fail. The first error
// cancels the context passed to the remaining chunks and is returned.
func ParallelizeErr(ctx context.Context, n int, fn func(ctx context.Context, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			return fn(gctx, start, end)
		})
	}
	return g.Wait()
}
