package walker

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/grafana/regexp"
	"github.com/rs/zerolog"
)

// Candidate is a regular file that passed all filters.
type Candidate struct {
	// Path is the file path as walked, i.e. joined onto the root.
	Path string
	// Size is the size in bytes.
	Size uint64
}

// Options configures a walk.
type Options struct {
	// Root is the directory to walk.
	Root string
	// Extensions to include, '!' prefixed entries exclude (empty = all).
	Extensions []string
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// MinSize is the smallest file size passed on.
	MinSize uint64
	// MaxSize is the largest file size passed on (0 = unlimited).
	MaxSize uint64
	// Depth is the maximum traversal depth (0=unlimited).
	Depth int
	// Workers is the number of fastwalk workers (0 = fastwalk default).
	Workers int
	// Logger receives debug output. Nil disables logging.
	Logger *zerolog.Logger
}

// Counts is a snapshot of the walk counters.
type Counts struct {
	// Visited is the number of regular files seen.
	Visited int64 `json:"visited"`
	// Matched is the number of files passed on.
	Matched int64 `json:"matched"`
	// Bytes is the cumulative size of matched files.
	Bytes uint64 `json:"bytes"`
	// Errors is the number of entries that could not be read.
	Errors int64 `json:"errors"`
}

// Walker walks a directory tree and emits filtered candidates.
type Walker struct {
	opts     Options
	log      zerolog.Logger
	excludes []*regexp.Regexp
	exts     extFilter

	visited atomic.Int64
	matched atomic.Int64
	bytes   atomic.Uint64
	errors  atomic.Int64
}

// New prepares a walker, compiling the exclusion patterns.
func New(opts Options) (*Walker, error) {
	excludes := make([]*regexp.Regexp, 0, len(opts.Excludes))

	for _, p := range opts.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludes = append(excludes, re)
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	if opts.Root == "" {
		opts.Root = "."
	}

	opts.Root = filepath.Clean(opts.Root)

	return &Walker{
		opts:     opts,
		log:      log.With().Str("component", "walker").Logger(),
		excludes: excludes,
		exts:     newExtFilter(opts.Extensions),
	}, nil
}

// Counts returns the current counters. It is safe to call during a walk.
func (w *Walker) Counts() Counts {
	return Counts{
		Visited: w.visited.Load(),
		Matched: w.matched.Load(),
		Bytes:   w.bytes.Load(),
		Errors:  w.errors.Load(),
	}
}

// Walk traverses the tree and calls emit for every file passing the filters.
// Calls to emit never overlap. Unreadable entries are skipped and counted.
// Walk stops with the error of emit or ctx, whichever comes first.
func (w *Walker) Walk(ctx context.Context, emit func(Candidate) error) error {
	var (
		mu       sync.Mutex
		abortMu  sync.Mutex
		abortErr error
	)

	// fastwalk reports an error returned for a file once more on its parent
	// directory, so the first abort is kept to tell it apart from read errors.
	abort := func(err error) error {
		abortMu.Lock()
		defer abortMu.Unlock()

		if abortErr == nil {
			abortErr = err
		}

		return abortErr
	}

	aborted := func() error {
		abortMu.Lock()
		defer abortMu.Unlock()

		return abortErr
	}

	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: w.opts.Workers,
	}

	w.log.Debug().
		Str("root", w.opts.Root).
		Strs("include", w.exts.include).
		Strs("exclude", w.exts.exclude).
		Strs("patterns", w.opts.Excludes).
		Uint64("min_size", w.opts.MinSize).
		Uint64("max_size", w.opts.MaxSize).
		Int("depth", w.opts.Depth).
		Msg("starting walk")

	//nolint:varnamelen // d is standard for DirEntry
	err := fastwalk.Walk(conf, w.opts.Root, func(path string, d fs.DirEntry, err error) error {
		if stop := aborted(); stop != nil {
			return stop
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return abort(ctxErr)
		}

		if err != nil {
			w.errors.Add(1)
			w.log.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")

			return nil
		}

		if path == w.opts.Root {
			return nil
		}

		rel := relativePath(w.opts.Root, path)

		if w.opts.Depth > 0 && calculateDepth(path, w.opts.Root) > w.opts.Depth {
			if d.IsDir() {
				w.log.Debug().Str("path", path).Msg("skipping directory beyond depth")

				return filepath.SkipDir
			}

			return nil
		}

		if re := matchExclude(rel, d.IsDir(), w.excludes); re != nil {
			w.log.Debug().Str("path", path).Str("pattern", re.String()).Msg("excluded")

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		w.visited.Add(1)

		info, err := d.Info()
		if err != nil {
			w.errors.Add(1)
			w.log.Debug().Err(err).Str("path", path).Msg("skipping file without info")

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		size := uint64(info.Size()) //nolint:gosec // Regular file sizes are never negative

		if size < w.opts.MinSize || (w.opts.MaxSize > 0 && size > w.opts.MaxSize) {
			return nil
		}

		if !w.exts.allows(path) {
			return nil
		}

		w.matched.Add(1)
		w.bytes.Add(size)

		mu.Lock()
		defer mu.Unlock()

		if stop := aborted(); stop != nil {
			return stop
		}

		if err := emit(Candidate{Path: path, Size: size}); err != nil {
			return abort(err)
		}

		return nil
	})
	if err == nil {
		err = aborted()
	}

	if err != nil {
		return fmt.Errorf("walking %q: %w", w.opts.Root, err)
	}

	return nil
}
