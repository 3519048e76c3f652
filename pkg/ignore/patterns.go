// File: pkg/ignore/patterns.go
package ignore

import (
	"regexp"
	"strings"
)

// Precompiled regular expressions used in pattern translation.
var (
	doubleStarMiddlePattern   = regexp.MustCompile(`/\\\*\\\*/`)
	doubleStarTrailingPattern = regexp.MustCompile(`/\\\*\\\*$`)
	doubleStarLeadingPattern  = regexp.MustCompile(`^\\\*\\\*/`)
)

// Placeholders keep '**' intact while single wildcards are rewritten.
const (
	anyDirsToken = "\x00ANYDIRS\x00"
	anyTailToken = "\x00ANYTAIL\x00"
	anyLeadToken = "\x00ANYLEAD\x00"
	anyDeepToken = "\x00ANYDEEP\x00"
)

// translatePattern converts a single gitignore-style glob into a regular expression body
// without end anchors. dirOnly reports whether the original pattern ended with '/'.
func translatePattern(glob string) (expr string, dirOnly bool) {
	dirOnly = strings.HasSuffix(glob, "/")
	glob = strings.TrimSuffix(glob, "/")

	// A leading slash or any interior slash anchors the pattern to the root.
	anchored := strings.HasPrefix(glob, "/") || strings.Contains(glob, "/")
	glob = strings.TrimPrefix(glob, "/")

	pattern := regexp.QuoteMeta(glob)
	pattern = handleDoubleStarPatterns(pattern)
	pattern = wildcardToRegex(pattern)
	pattern = expandTokens(pattern)

	return anchorPattern(pattern, anchored), dirOnly
}

// handleDoubleStarPatterns replaces quoted '**' segments with placeholder tokens.
func handleDoubleStarPatterns(pattern string) string {
	pattern = doubleStarMiddlePattern.ReplaceAllString(pattern, anyDirsToken)
	pattern = doubleStarTrailingPattern.ReplaceAllString(pattern, anyTailToken)
	pattern = doubleStarLeadingPattern.ReplaceAllString(pattern, anyLeadToken)
	return strings.ReplaceAll(pattern, `\*\*`, anyDeepToken)
}

// wildcardToRegex converts quoted '*' and '?' wildcards to regex equivalents.
func wildcardToRegex(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\*`, `[^/]*`)
	return strings.ReplaceAll(pattern, `\?`, `[^/]`)
}

func expandTokens(pattern string) string {
	r := strings.NewReplacer(
		anyDirsToken, `(/|/.+/)`,
		anyTailToken, `(/.*)?`,
		anyLeadToken, `(.*/)?`,
		anyDeepToken, `.*`,
	)
	return r.Replace(pattern)
}

// anchorPattern anchors the start of the expression. Unanchored patterns may match
// at any depth.
func anchorPattern(pattern string, anchored bool) string {
	if anchored {
		return "^" + pattern
	}
	return "^(.*/)?" + pattern
}
