// File: pkg/collect/types.go
package collect

// Kind tags the decoded form of a file.
type Kind string

const (
	KindText   Kind = "text"
	KindBinary Kind = "binary"
)

// BinaryPlaceholder stands in for the content of files that are not valid UTF-8 text.
const BinaryPlaceholder = "<<binary file, omitted>>"

// FileRecord is the content snapshot of one included file.
type FileRecord struct {
	RelPath   string // Slash-separated path relative to the project root.
	AbsPath   string // Absolute path on disk.
	Size      int64  // Size of the original file in bytes.
	Kind      Kind   // Text or binary.
	Content   string // Text content (possibly truncated) or BinaryPlaceholder.
	Truncated bool   // True when Content was cut at the per-file cap.
}

// WithContent returns a copy of the record carrying different content.
func (r FileRecord) WithContent(content string) FileRecord {
	r.Content = content
	return r
}

// Skipped records a file that matched the inclusion policy but could not be read.
type Skipped struct {
	RelPath string `json:"path"`
	Reason  string `json:"reason"`
}

// Options configures a collection run.
type Options struct {
	IncludeExts  []string // Extensions (with leading dot) that are included by default.
	MaxFileBytes int64    // Per-file content cap; 0 disables truncation.
	ExcludeDirs  []string // Absolute directories never walked, such as the output directory.
}

// Result is the outcome of walking a project.
type Result struct {
	Records  []FileRecord
	Skipped  []Skipped
	// Excluded counts visited files rejected by ignore rules or the extension
	// policy. Files below a pruned directory (.git/, node_modules/, the output
	// directory) are never visited and not counted.
	Excluded int
}

// Counts summarizes record kinds.
func (r Result) Counts() (binary, truncated int) {
	for _, rec := range r.Records {
		if rec.Kind == KindBinary {
			binary++
		}
		if rec.Truncated {
			truncated++
		}
	}
	return binary, truncated
}
