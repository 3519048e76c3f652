// File: pkg/packager/manifest.go
package packager

import (
	"encoding/json"

	"ctxpack/pkg/collect"
)

// FilesSampleSize is how many included paths the manifest lists.
const FilesSampleSize = 20

// ChunkEntry describes one chunk file.
type ChunkEntry struct {
	Index        int    `json:"index"`
	File         string `json:"file"`
	Bytes        int    `json:"bytes"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	FirstSection string `json:"first_section"`
	LastSection  string `json:"last_section"`
}

// RunConfig is the effective configuration recorded for a run.
type RunConfig struct {
	MaxBytes     int      `json:"max_bytes"`
	MaxFileBytes int64    `json:"max_file_bytes"`
	IncludeExts  []string `json:"include_exts"`
	ForceInclude []string `json:"force_include"`
	IgnoreFile   string   `json:"ignore_file"`
	ConfigFile   string   `json:"config_file,omitempty"`
	Redact       bool     `json:"redact"`
}

// Manifest is written as manifest.json next to the chunks. Write fills the
// document, chunk and archive fields from what it actually writes.
type Manifest struct {
	RunID       string `json:"run_id"`
	ToolVersion string `json:"tool_version"`
	Root        string `json:"root"`
	ProjectName string `json:"project_name"`
	BuiltAtUTC  string `json:"built_at_utc"`

	DocumentFile string `json:"document_file"`
	TotalBytes   int    `json:"total_bytes"`
	SHA256       string `json:"sha256"`

	NumFilesIncluded  int               `json:"num_files_included"`
	NumFilesExcluded  int               `json:"num_files_excluded"`
	NumFilesBinary    int               `json:"num_files_binary"`
	NumFilesTruncated int               `json:"num_files_truncated"`
	Skipped           []collect.Skipped `json:"skipped"`

	NumChunks  int          `json:"num_chunks"`
	ChunkSizes []int        `json:"chunk_sizes"`
	Chunks     []ChunkEntry `json:"chunks"`
	Archive    string       `json:"archive"`

	FilesSample []string       `json:"files_sample"`
	Redaction   map[string]int `json:"redaction,omitempty"`
	Config      RunConfig      `json:"config"`
}

// FilesSample returns the first FilesSampleSize relative paths of records.
func FilesSample(records []collect.FileRecord) []string {
	n := min(len(records), FilesSampleSize)
	out := make([]string, 0, n)
	for _, r := range records[:n] {
		out = append(out, r.RelPath)
	}
	return out
}

func (m *Manifest) encode() ([]byte, error) {
	if m.Skipped == nil {
		m.Skipped = []collect.Skipped{}
	}
	if m.FilesSample == nil {
		m.FilesSample = []string{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
