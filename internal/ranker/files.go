package ranker

// Entry is a file path and its size in bytes.
type Entry struct {
	// Path identifies the file. The ranker only compares and displays it.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size uint64 `json:"size"`
}

// Files ranks entries by size.
type Files = Ranker[Entry, uint64]

// NewFiles creates a ranker keeping the capacity largest entries.
func NewFiles(capacity int) (*Files, error) {
	return New(capacity, func(e Entry) uint64 { return e.Size })
}
