// Package config holds the immutable scan configuration and its file-based defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jinzhu/configor"
)

// MaxRank is the largest accepted rank count.
const MaxRank = 1_000_000 - 1

// EnvConfig names the environment variable pointing at a defaults file.
const EnvConfig = "LARGEST_CONFIG"

// Format selects how results are rendered.
type Format string

const (
	// FormatTable renders an aligned table.
	FormatTable Format = "table"
	// FormatPlain renders "size<TAB>path" lines.
	FormatPlain Format = "plain"
	// FormatJSON renders the full result as JSON.
	FormatJSON Format = "json"
)

// Formats lists the accepted output formats.
//
//nolint:gochecknoglobals // Config constant
var Formats = []Format{FormatTable, FormatPlain, FormatJSON}

// DefaultExcludes contains the default exclusion patterns.
//
//nolint:gochecknoglobals // Config constant
var DefaultExcludes = []string{`(^|/)\.git/`, `(^|/)node_modules/`}

var (
	// ErrInvalidNumber is returned for a rank count outside [1, MaxRank].
	ErrInvalidNumber = errors.New("number must be between 1 and 999999")
	// ErrInvalidSizeRange is returned when the minimum size exceeds the maximum.
	ErrInvalidSizeRange = errors.New("min-size exceeds max-size")
	// ErrInvalidDepth is returned for a negative depth.
	ErrInvalidDepth = errors.New("depth cannot be negative")
	// ErrInvalidFormat is returned for an unknown output format.
	ErrInvalidFormat = errors.New("unknown output format")
)

// Config is the configuration of a single scan. It is built once from the
// command line and passed by value.
type Config struct {
	// Root is the directory to scan.
	Root string
	// Number is how many entries to rank.
	Number int
	// MaxSize is the largest file size considered (0 = unlimited).
	MaxSize uint64
	// MinSize is the smallest file size considered.
	MinSize uint64
	// Extensions to include, '!' prefixed entries exclude (empty = all).
	Extensions []string
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// Depth is the maximum traversal depth (0=unlimited).
	Depth int
	// SaveOutput is a file receiving a copy of the report.
	SaveOutput string
	// Quiet suppresses console output.
	Quiet bool
	// Format is the output format.
	Format Format
	// Debug enables debug logging.
	Debug bool
}

// Validate checks the configuration for values the scan cannot honour.
func (c Config) Validate() error {
	if c.Number < 1 || c.Number > MaxRank {
		return fmt.Errorf("%w: got %d", ErrInvalidNumber, c.Number)
	}

	if c.MaxSize > 0 && c.MinSize > c.MaxSize {
		return fmt.Errorf("%w: %s > %s", ErrInvalidSizeRange,
			humanize.IBytes(c.MinSize), humanize.IBytes(c.MaxSize))
	}

	if c.Depth < 0 {
		return ErrInvalidDepth
	}

	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w %q: must be one of %v", ErrInvalidFormat, c.Format, Formats)
	}

	return nil
}

// Defaults holds the values a defaults file may provide.
type Defaults struct {
	Number     int      `default:"10"    json:"number"     yaml:"number"`
	MaxSize    string   `default:"0"     json:"max_size"   yaml:"max_size"`
	MinSize    string   `default:"0"     json:"min_size"   yaml:"min_size"`
	Extensions []string `json:"extensions" yaml:"extensions"`
	Excludes   []string `json:"excludes"   yaml:"excludes"`
	Depth      int      `default:"0"     json:"depth"      yaml:"depth"`
	Output     string   `default:"table" json:"output"     yaml:"output"`
	Debug      bool     `default:"false" json:"debug"      yaml:"debug"`
}

// LoadDefaults reads defaults from path, falling back to $LARGEST_CONFIG.
// Without a file the built-in defaults are returned. Values may also be
// overridden by LARGEST_* environment variables.
func LoadDefaults(path string) (Defaults, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	var files []string

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Defaults{}, fmt.Errorf("reading config %q: %w", path, err)
		}

		files = append(files, path)
	}

	var d Defaults

	loader := configor.New(&configor.Config{
		ENVPrefix:            "LARGEST",
		ErrorOnUnmatchedKeys: true,
		Silent:               true,
	})
	if err := loader.Load(&d, files...); err != nil {
		return Defaults{}, fmt.Errorf("loading config %q: %w", path, err)
	}

	if d.Excludes == nil {
		d.Excludes = slices.Clone(DefaultExcludes)
	}

	return d, nil
}

// ParseSize parses a human readable size such as "10MB" or "1.5GiB".
// An empty string parses as 0.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	return size, nil
}
