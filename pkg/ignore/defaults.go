// File: pkg/ignore/defaults.go
package ignore

// DefaultFileName is the project-local rules file looked up in the project root.
const DefaultFileName = ".gptignore"

// defaultPatterns are applied before any project rules, so a project file can
// re-include one of them with a '!' line.
var defaultPatterns = []string{
	// Version control and editor metadata
	".git/", ".hg/", ".svn/", ".idea/", ".vscode/",

	// Dependency caches and build outputs
	"__pycache__/", ".mypy_cache/", ".pytest_cache/", ".ruff_cache/",
	"node_modules/", "vendor/", "dist/", "build/", "out/", ".next/", ".cache/",
	".venv/", "venv/", "target/", "bin/", "obj/",
	"static/", "media/", "storage/cache/", "storage/logs/",
	"*.pyc", "*.pyo", "*.class", "*.o", "*.a", "*.so", "*.dylib", "*.dll", "*.exe",

	// Media and binary blobs
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.ico", "*.bmp", "*.svgz", "*.pdf",
	"*.mp3", "*.mp4", "*.wav", "*.mov", "*.avi",
	"*.zip", "*.tar", "*.tar.gz", "*.tgz", "*.gz", "*.7z", "*.rar",
	"*.sqlite", "*.sqlite3", "*.db",
	"*.woff", "*.woff2", "*.ttf", "*.eot",

	// Secrets
	".env", ".env.*", "!.env.example", "!.env.sample", "secrets.*", "credentials.*", "*service_account*.json",
	"id_rsa", "id_ed25519", "*.pem", "*.key",

	// Noise
	"*.lock", "package-lock.json", "pnpm-lock.yaml", "yarn.lock", "go.sum",
	"*.min.js", "*.min.css", "*.map", "*.log",
}

// DefaultPatterns returns a copy of the built-in rule table.
func DefaultPatterns() []string {
	out := make([]string, len(defaultPatterns))
	copy(out, defaultPatterns)
	return out
}
