// File: pkg/collect/extensions.go
package collect

import (
	"sort"
	"strings"
)

// DefaultIncludeExts lists the code and text extensions packed without configuration.
var DefaultIncludeExts = []string{
	".py", ".ts", ".tsx", ".js", ".jsx", ".json", ".yml", ".yaml", ".toml", ".ini",
	".md", ".txt", ".env.example", ".env.sample",
	".css", ".scss", ".html", ".jinja", ".j2",
	".sql", ".sh", ".bash", ".zsh", ".ps1", ".bat",
	".go", ".mod", ".rs", ".java", ".kt", ".c", ".cc", ".cpp", ".h", ".hpp",
	".rb", ".php", ".swift", ".dart", ".lua", ".r", ".proto", ".graphql",
}

// NormalizeExts lower-cases extensions, adds a missing leading dot, drops blanks and
// duplicates, and sorts the result.
func NormalizeExts(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || e == "." {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
