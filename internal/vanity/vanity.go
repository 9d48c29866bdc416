// Package vanity implements the parallel prefix-match keypair search:
// thread_count workers independently generate Ed25519 keypairs until
// one's Base58-encoded public key starts with the requested prefix, is
// cancelled, or times out.
package vanity

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr-tron/base58"
	"golang.org/x/sync/errgroup"

	wcrypto "solwallet/internal/crypto"
	werrors "solwallet/internal/errors"
)

// base58Alphabet is the Bitcoin alphabet used for Solana public keys:
// it excludes 0, O, I, and l to avoid visual ambiguity.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// checkInterval is how many keypair attempts a worker generates
// between stop-flag checks, bounding how long termination can lag
// behind the stop signal.
const checkInterval = 256

// Stats describes a search's progress or final tally.
type Stats struct {
	Attempts int64
	Elapsed  time.Duration
	Threads  int
}

// Status is the outcome classification of a Search call.
type Status int

const (
	Found Status = iota
	Cancelled
	TimedOut
)

// Outcome is what Search returns: exactly one of Found (with a
// keypair), Cancelled, or TimedOut, always carrying final Stats.
type Outcome struct {
	Status  Status
	Keypair *wcrypto.Keypair
	Stats   Stats
}

// ProgressFunc is invoked from a single progress goroutine that Search
// starts, never from worker goroutines, so implementations do not need
// to be thread-safe with respect to other ProgressFunc calls.
type ProgressFunc func(attempts int64, elapsed time.Duration)

// Options configures a Search call.
type Options struct {
	Prefix          string
	CaseInsensitive bool
	Threads         int
	Timeout         time.Duration
	OnProgress      ProgressFunc
	ProgressEvery   time.Duration // defaults to 100ms
}

// Search runs thread_count workers, each generating independent
// Ed25519 keypairs until one's Base58 public key starts with prefix
// under the requested case policy. It returns once every worker has
// exited — no goroutine is left running after Search returns.
func Search(ctx context.Context, opts Options) (Outcome, error) {
	if err := validatePrefix(opts.Prefix); err != nil {
		return Outcome{}, err
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = 1
	}

	matchPrefix := opts.Prefix
	if opts.CaseInsensitive {
		matchPrefix = strings.ToLower(matchPrefix)
	}

	searchCtx, cancel := context.WithCancel(ctx)
	if opts.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		searchCtx, timeoutCancel = context.WithTimeout(searchCtx, opts.Timeout)
		defer timeoutCancel()
	}
	defer cancel()

	var attempts int64
	var winner atomic.Pointer[wcrypto.Keypair]
	var winnerOnce sync.Once

	start := time.Now()

	g, gctx := errgroup.WithContext(searchCtx)
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			return searchWorker(gctx, matchPrefix, opts.CaseInsensitive, &attempts, &winner, &winnerOnce, cancel)
		})
	}

	progressDone := make(chan struct{})
	if opts.OnProgress != nil {
		interval := opts.ProgressEvery
		if interval <= 0 {
			interval = 100 * time.Millisecond
		}
		go runProgress(searchCtx, interval, start, &attempts, opts.OnProgress, progressDone)
	} else {
		close(progressDone)
	}

	waitErr := g.Wait()
	<-progressDone

	stats := Stats{
		Attempts: atomic.LoadInt64(&attempts),
		Elapsed:  time.Since(start),
		Threads:  threads,
	}

	if kp := winner.Load(); kp != nil {
		return Outcome{Status: Found, Keypair: kp, Stats: stats}, nil
	}
	if waitErr != nil && waitErr != context.Canceled && waitErr != context.DeadlineExceeded {
		return Outcome{}, waitErr
	}
	if ctx.Err() == context.DeadlineExceeded {
		return Outcome{Status: TimedOut, Stats: stats}, nil
	}
	if errCtx := searchCtx.Err(); errCtx == context.DeadlineExceeded {
		return Outcome{Status: TimedOut, Stats: stats}, nil
	}
	return Outcome{Status: Cancelled, Stats: stats}, nil
}

func searchWorker(ctx context.Context, matchPrefix string, caseInsensitive bool, attempts *int64, winner *atomic.Pointer[wcrypto.Keypair], winnerOnce *sync.Once, stop context.CancelFunc) error {
	for {
		for n := 0; n < checkInterval; n++ {
			kp, err := wcrypto.NewKeypair()
			if err != nil {
				return werrors.NewCryptoError("generate", err)
			}

			encoded := base58.Encode(kp.Public[:])
			candidate := encoded
			if caseInsensitive {
				candidate = strings.ToLower(encoded)
			}

			if strings.HasPrefix(candidate, matchPrefix) {
				published := false
				winnerOnce.Do(func() {
					winner.Store(kp)
					published = true
				})
				if published {
					atomic.AddInt64(attempts, int64(n+1))
					stop()
					return nil
				}
			}
			kp.Close()
		}
		atomic.AddInt64(attempts, checkInterval)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func runProgress(ctx context.Context, interval time.Duration, start time.Time, attempts *int64, onProgress ProgressFunc, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			onProgress(atomic.LoadInt64(attempts), time.Since(start))
		}
	}
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return werrors.ErrInvalidPrefix
	}
	for _, r := range prefix {
		if !strings.ContainsRune(base58Alphabet, r) {
			return werrors.ErrInvalidPrefix
		}
	}
	return nil
}
