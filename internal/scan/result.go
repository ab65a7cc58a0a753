package scan

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/idelchi/largest/internal/ranker"
	"github.com/idelchi/largest/internal/walker"
)

// Result holds the outcome of a scan.
type Result struct {
	// Root is the scanned directory as given.
	Root string `json:"root"`
	// Number is the requested rank count.
	Number int `json:"number"`
	// Entries are the largest files, largest first, with slash separated
	// paths relative to Root.
	Entries []ranker.Entry `json:"entries"`
	// Counts holds the walk counters.
	Counts walker.Counts `json:"counts"`
	// Start is when the walk began.
	Start time.Time `json:"start"`
	// End is when the walk finished.
	End time.Time `json:"end"`
	// Elapsed is the total time taken.
	Elapsed time.Duration `json:"elapsed"`
}

// Progress is reported periodically while scanning.
type Progress = walker.Counts

// finalize copies the ranked entries and makes their paths relative to root.
func finalize(root string, files *ranker.Files) []ranker.Entry {
	entries := files.Entries()

	for i := range entries {
		entries[i].Path = displayPath(root, entries[i].Path)
	}

	return entries
}

// displayPath returns path relative to root in slash format.
func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	return strings.TrimPrefix(filepath.ToSlash(rel), "./")
}
