package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/largest/internal/config"
	"github.com/idelchi/largest/internal/ranker"
	"github.com/idelchi/largest/internal/walker"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 200 * time.Millisecond

var (
	// ErrRootNotExist is returned when the root does not exist.
	ErrRootNotExist = errors.New("does not exist")
	// ErrRootNotDir is returned when the root is not a directory.
	ErrRootNotDir = errors.New("is not a directory")
	// ErrRootEmpty is returned when the root directory has no entries.
	ErrRootEmpty = errors.New("is empty")
)

// Scanner ranks the largest files below a root directory.
type Scanner struct {
	cfg      config.Config
	log      zerolog.Logger
	progress func(Progress)
	interval time.Duration
	workers  int
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger for diagnostic output.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scanner) { s.log = log }
}

// WithProgress calls hook with the walk counters every interval until the scan ends.
func WithProgress(hook func(Progress), interval time.Duration) Option {
	return func(s *Scanner) {
		s.progress = hook
		s.interval = interval
	}
}

// WithWorkers sets the number of walk workers.
func WithWorkers(n int) Option {
	return func(s *Scanner) { s.workers = n }
}

// New creates a scanner for cfg. The configuration must already be valid.
func New(cfg config.Config, opts ...Option) *Scanner {
	s := &Scanner{
		cfg:      cfg,
		log:      zerolog.Nop(),
		interval: DefaultProgressInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CheckRoot verifies root is an existing, non-empty directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%q %w", root, ErrRootNotExist)
	}

	if err != nil {
		return fmt.Errorf("accessing %q: %w", root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%q %w", root, ErrRootNotDir)
	}

	dir, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("opening %q: %w", root, err)
	}
	defer dir.Close()

	if _, err := dir.Readdirnames(1); errors.Is(err, io.EOF) {
		return fmt.Errorf("%q %w", root, ErrRootEmpty)
	} else if err != nil {
		return fmt.Errorf("reading %q: %w", root, err)
	}

	return nil
}

// Run walks the configured root and returns the largest files found.
//
// The walk runs in its own goroutine and hands candidates over an unbuffered
// channel to a single consumer owning the ranker. The scan is cancelled via ctx.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	root := filepath.Clean(s.cfg.Root)

	if err := CheckRoot(root); err != nil {
		return nil, err
	}

	files, err := ranker.NewFiles(s.cfg.Number)
	if err != nil {
		return nil, err
	}

	w, err := walker.New(walker.Options{
		Root:       root,
		Extensions: s.cfg.Extensions,
		Excludes:   s.cfg.Excludes,
		MinSize:    s.cfg.MinSize,
		MaxSize:    s.cfg.MaxSize,
		Depth:      s.cfg.Depth,
		Workers:    s.workers,
		Logger:     &s.log,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()

	stopProgress := s.startProgressReporter(ctx, w)

	g, gctx := errgroup.WithContext(ctx)
	candidates := make(chan walker.Candidate)

	g.Go(func() error {
		defer close(candidates)

		return w.Walk(gctx, func(c walker.Candidate) error {
			select {
			case candidates <- c:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	g.Go(func() error {
		var rejected int

		for c := range candidates {
			if !files.Admits(c.Size) {
				rejected++

				continue
			}

			files.Insert(ranker.Entry{Path: c.Path, Size: c.Size})
		}

		s.log.Debug().
			Int("retained", files.Len()).
			Int("rejected", rejected).
			Uint64("threshold", files.SmallestAcceptedSize()).
			Msg("ranking finished")

		return nil
	})

	err = g.Wait()

	stopProgress()

	if err != nil {
		return nil, err
	}

	end := time.Now()

	result := &Result{
		Root:    s.cfg.Root,
		Number:  s.cfg.Number,
		Entries: finalize(root, files),
		Counts:  w.Counts(),
		Start:   start,
		End:     end,
		Elapsed: end.Sub(start),
	}

	s.log.Debug().
		Int64("visited", result.Counts.Visited).
		Int64("matched", result.Counts.Matched).
		Int64("errors", result.Counts.Errors).
		Dur("elapsed", result.Elapsed).
		Msg("scan finished")

	return result, nil
}

// startProgressReporter invokes the progress hook on each tick until the
// returned stop function is called. stop waits for the reporter to exit.
func (s *Scanner) startProgressReporter(ctx context.Context, w *walker.Walker) func() {
	if s.progress == nil {
		return func() {}
	}

	interval := s.interval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(interval)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.progress(w.Counts())
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}
