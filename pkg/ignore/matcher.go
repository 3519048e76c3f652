// Package ignore decides which project paths are skipped, using gitignore-style
// patterns layered over a built-in default table and overridden by force-include
// prefixes.
package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// SourceDefaults marks patterns that come from the built-in table.
const SourceDefaults = "<defaults>"

// Pattern is one compiled ignore rule.
type Pattern struct {
	self    *regexp.Regexp // Matches the path itself.
	below   *regexp.Regexp // Matches any path beneath a matching directory.
	Negate  bool           // Re-includes the path (line starts with '!').
	DirOnly bool           // Only matches directories (line ends with '/').
	Source  string         // File the rule came from, or SourceDefaults.
	LineNo  int            // Line number in the source (1-based).
	Line    string         // Original pattern line.
}

// Matches reports whether the pattern applies to the slash-separated path.
func (p *Pattern) Matches(path string, isDir bool) bool {
	if p.below.MatchString(path) {
		return true
	}
	if !p.self.MatchString(path) {
		return false
	}
	return isDir || !p.DirOnly
}

// Matcher holds the ordered rule set and the force-include prefixes.
type Matcher struct {
	patterns []*Pattern
	forced   []string
	logger   *zap.Logger
}

// New returns a Matcher seeded with the default rule table.
func New(logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Matcher{logger: logger}
	m.compileLines(SourceDefaults, defaultPatterns)
	return m
}

// Load builds a Matcher from the defaults plus the rules file under root.
// A missing rules file means defaults only.
func Load(root, fileName string, forceInclude []string, logger *zap.Logger) (*Matcher, error) {
	m := New(logger)
	if fileName == "" {
		fileName = DefaultFileName
	}
	path := fileName
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, fileName)
	}
	if err := m.CompileFile(path); err != nil {
		return nil, err
	}
	m.AddForceInclude(forceInclude...)
	return m, nil
}

// CompileFile appends the rules found in an ignore file.
func (m *Matcher) CompileFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("Ignore file does not exist, using defaults only", zap.String("filePath", path))
			return nil
		}
		return fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	n := m.compileLines(path, lines)
	m.logger.Debug("Compiled ignore file", zap.String("filePath", path), zap.Int("patternCount", n))
	return nil
}

// CompileLines appends rules given directly, for example from configuration.
func (m *Matcher) CompileLines(source string, lines ...string) {
	m.compileLines(source, lines)
}

func (m *Matcher) compileLines(source string, lines []string) int {
	compiled := 0
	for i, line := range lines {
		p, err := parsePatternLine(line)
		if err != nil {
			m.logger.Warn("Skipping invalid ignore pattern",
				zap.String("source", source),
				zap.Int("lineNo", i+1),
				zap.String("pattern", line),
				zap.Error(err))
			continue
		}
		if p == nil {
			continue
		}
		p.Source = source
		p.LineNo = i + 1
		m.patterns = append(m.patterns, p)
		compiled++
	}
	return compiled
}

// AddForceInclude registers path prefixes that always win over exclusion.
func (m *Matcher) AddForceInclude(prefixes ...string) {
	for _, raw := range prefixes {
		if p := NormalizePrefix(raw); p != "" {
			m.forced = append(m.forced, p)
		}
	}
}

// ForceIncludes returns the normalized force-include prefixes.
func (m *Matcher) ForceIncludes() []string {
	out := make([]string, len(m.forced))
	copy(out, m.forced)
	return out
}

// Patterns returns the number of compiled rules.
func (m *Matcher) Patterns() int { return len(m.patterns) }

// ShouldInclude reports whether the relative path survives ignore filtering.
// Force-included paths always do.
func (m *Matcher) ShouldInclude(path string, isDir bool) bool {
	path = normalizePath(path)
	if m.IsForced(path) {
		return true
	}
	return !m.Excluded(path, isDir)
}

// Excluded reports whether the last matching rule excludes the path,
// ignoring force-include prefixes.
func (m *Matcher) Excluded(path string, isDir bool) bool {
	matched, _ := m.MatchWithPattern(path, isDir)
	return matched
}

// MatchWithPattern returns the exclusion decision and the rule that made it.
func (m *Matcher) MatchWithPattern(path string, isDir bool) (bool, *Pattern) {
	path = normalizePath(path)
	if path == "" {
		return false, nil
	}

	matched := false
	var matchedPattern *Pattern
	for _, p := range m.patterns {
		if p.Matches(path, isDir) {
			matched = !p.Negate
			matchedPattern = p
		}
	}
	return matched, matchedPattern
}

// IsForced reports whether the path equals or lies beneath a force-include prefix.
func (m *Matcher) IsForced(path string) bool {
	path = normalizePath(path)
	for _, p := range m.forced {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// HasForcedBelow reports whether some force-include prefix lies inside the directory,
// so an excluded directory must still be walked.
func (m *Matcher) HasForcedBelow(dir string) bool {
	dir = normalizePath(dir)
	for _, p := range m.forced {
		if strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}

// NormalizePrefix cleans a force-include prefix into slash form without
// leading "./" or surrounding slashes.
func NormalizePrefix(prefix string) string {
	p := normalizePath(strings.TrimSpace(prefix))
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// normalizePath converts a relative path to the slash form rules are matched against.
func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	for strings.HasPrefix(path, "./") {
		path = strings.TrimPrefix(path, "./")
	}
	return strings.TrimSuffix(path, "/")
}

// parsePatternLine compiles one rules-file line. It returns nil for blanks and comments.
func parsePatternLine(line string) (*Pattern, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	negate := false
	if strings.HasPrefix(trimmed, "!") {
		negate = true
		trimmed = strings.TrimPrefix(trimmed, "!")
	}

	// "\#" and "\!" escape a literal leading character.
	if strings.HasPrefix(trimmed, `\#`) || strings.HasPrefix(trimmed, `\!`) {
		trimmed = trimmed[1:]
	}
	if trimmed == "" || trimmed == "/" {
		return nil, nil
	}

	expr, dirOnly := translatePattern(trimmed)
	self, err := regexp.Compile(expr + "$")
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", trimmed, err)
	}
	below, err := regexp.Compile(expr + "/.*$")
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", trimmed, err)
	}

	return &Pattern{
		self:    self,
		below:   below,
		Negate:  negate,
		DirOnly: dirOnly,
		Line:    line,
	}, nil
}
