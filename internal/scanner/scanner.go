// Package scanner implements the bounded-depth, parallel filesystem walk
// that feeds candidate keypair files to the validator.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Predicate reports whether path is a confirmed match (typically
// validator.Validate succeeding). It must not panic; a predicate error
// is treated the same as a non-match.
type Predicate func(path string) bool

// Options configures a Scan call.
type Options struct {
	// MaxDepth bounds how many directory levels below root are
	// descended. 0 means root only.
	MaxDepth int
	// MaxResults caps the number of confirmed matches returned. Once
	// reached, no new validation work is scheduled, though in-flight
	// tasks are allowed to finish.
	MaxResults int
	// Workers is the size of the predicate worker pool. Defaults to
	// runtime.NumCPU() when <= 0.
	Workers int
}

// Stats reports how many entries were skipped during a Scan, for
// diagnostics only — the scanner never treats these as fatal.
type Stats struct {
	PermissionDenied int
	OtherErrors      int
}

// Scan walks the directory rooted at root, descending at most
// opts.MaxDepth levels, and submits every file whose name ends
// (case-insensitively) in ".json" to predicate, evaluated in parallel
// across opts.Workers goroutines. It returns at most opts.MaxResults
// matching paths (order unspecified) along with skip statistics.
//
// Scan honors ctx: once cancelled (including before the call), it stops
// enqueueing new work and returns whatever has been confirmed so far,
// after joining every in-flight worker.
func Scan(ctx context.Context, root string, opts Options, predicate Predicate) ([]string, Stats, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}

	var stats Stats
	var statsMu sync.Mutex

	results := make([]string, 0, max(opts.MaxResults, 1))
	var resultsMu sync.Mutex

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	candidates := make(chan string)

	g, gctx := errgroup.WithContext(runCtx)

	// Walker goroutine: feeds candidate paths into the channel,
	// respecting MaxDepth and symlink-loop avoidance. It stops
	// pushing as soon as gctx is done.
	g.Go(func() error {
		defer close(candidates)
		visited := map[string]bool{}
		return walk(gctx, root, root, 0, opts.MaxDepth, visited, &stats, &statsMu, candidates)
	})

	// Worker pool: each worker pulls one candidate at a time from the
	// shared channel and applies predicate. Candidates are not grouped
	// into batches.
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case path, ok := <-candidates:
					if !ok {
						return nil
					}
					if !predicate(path) {
						continue
					}
					resultsMu.Lock()
					full := opts.MaxResults > 0 && len(results) >= opts.MaxResults
					if !full {
						results = append(results, path)
						full = opts.MaxResults > 0 && len(results) >= opts.MaxResults
					}
					resultsMu.Unlock()
					if full {
						cancel()
						return nil
					}
				}
			}
		})
	}

	// Neither the walker nor the workers return a non-nil error: every
	// read failure, including one at root itself, is absorbed into
	// stats instead of aborting the scan.
	err := g.Wait()

	resultsMu.Lock()
	out := append([]string(nil), results...)
	resultsMu.Unlock()

	if ctxErr := ctx.Err(); err == nil && ctxErr != nil {
		// Cancellation requested by the caller before/during the scan
		// is not an error condition for Scan itself: return partial
		// results as documented.
		return out, stats, nil
	}
	return out, stats, err
}

func walk(ctx context.Context, root, dir string, depth, maxDepth int, visited map[string]bool, stats *Stats, statsMu *sync.Mutex, out chan<- string) error {
	if ctx.Err() != nil {
		return nil
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err == nil {
		if visited[resolved] {
			return nil
		}
		visited[resolved] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		recordSkip(stats, statsMu, err)
		return nil
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil
		}

		full := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			recordSkip(stats, statsMu, err)
			continue
		}

		isDir := entry.IsDir()
		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(full)
			if err != nil {
				recordSkip(stats, statsMu, err)
				continue
			}
			targetInfo, err := os.Stat(target)
			if err != nil {
				recordSkip(stats, statsMu, err)
				continue
			}
			isDir = targetInfo.IsDir()
			if isDir && isAncestor(root, target) {
				// Refuses to follow a symlink back toward an ancestor
				// directory, preventing an infinite loop.
				continue
			}
		}

		if isDir {
			if depth >= maxDepth {
				continue
			}
			if err := walk(ctx, root, full, depth+1, maxDepth, visited, stats, statsMu, out); err != nil {
				return err
			}
			continue
		}

		if strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			select {
			case <-ctx.Done():
				return nil
			case out <- full:
			}
		}
	}
	return nil
}

func isAncestor(root, target string) bool {
	rel, err := filepath.Rel(target, root)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

func recordSkip(stats *Stats, mu *sync.Mutex, err error) {
	mu.Lock()
	defer mu.Unlock()
	if os.IsPermission(err) {
		stats.PermissionDenied++
	} else {
		stats.OtherErrors++
	}
}
