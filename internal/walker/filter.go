package walker

import (
	"path/filepath"
	"strings"

	"github.com/grafana/regexp"
)

// calculateDepth returns the depth of a path relative to the root.
func calculateDepth(path, root string) int {
	relPath := strings.TrimPrefix(path, root)

	relPath = strings.TrimPrefix(relPath, string(filepath.Separator))
	if relPath == "" {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// relativePath returns path relative to root in slash format. Exclusion
// patterns are matched against it so that the root's own location never
// excludes anything.
func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	return filepath.ToSlash(rel)
}

// matchExclude returns the first pattern matching path, or nil.
// Directory paths are matched with a trailing slash.
func matchExclude(path string, isDir bool, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)
	if isDir {
		fPath += "/"
	}

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// extFilter holds suffixes to include and to exclude.
type extFilter struct {
	include []string
	exclude []string
}

// newExtFilter splits extensions into include and exclude suffixes.
// A '!' prefix marks an exclusion, surrounding quotes are stripped and a
// bare word such as "go" is treated as ".go".
func newExtFilter(extensions []string) extFilter {
	var f extFilter

	for _, e := range extensions { //nolint:varnamelen // e is standard for element in range
		e = strings.TrimSpace(strings.Trim(e, "'\""))

		exclude := strings.HasPrefix(e, "!")
		e = strings.TrimPrefix(e, "!")

		if e == "" {
			continue
		}

		if !strings.ContainsAny(e, "._") {
			e = "." + e
		}

		if exclude {
			f.exclude = append(f.exclude, e)
		} else {
			f.include = append(f.include, e)
		}
	}

	return f
}

// allows reports whether path passes the filter. Excludes win over includes and
// an empty include list admits everything.
func (f extFilter) allows(path string) bool {
	for _, ext := range f.exclude {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, ext := range f.include {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}
