// File: pkg/redact/rules.go
package redact

import "regexp"

// Rule is one secret detector. Template is expanded with regexp group references
// and must contain the rule's placeholder.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Template string
}

// Placeholder is the marker that replaces a secret found by the named rule.
func Placeholder(name string) string {
	return "<REDACTED:" + name + ">"
}

// credentialKey matches assignment keys such as password, api_key or CLIENT_SECRET.
const credentialKey = `((?:[a-z0-9]+[_-])*(?:api[-_ ]?key|secret|token|password|passwd))`

// DefaultRules are applied in order. Earlier, more specific detectors run first so
// their placeholders carry the most precise kind.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "private-key",
			Pattern:  regexp.MustCompile(`-----BEGIN (?:[A-Z0-9]+ )*PRIVATE KEY-----[\s\S]*?-----END (?:[A-Z0-9]+ )*PRIVATE KEY-----`),
			Template: Placeholder("private-key"),
		},
		{
			Name:     "aws-access-key",
			Pattern:  regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`),
			Template: Placeholder("aws-access-key"),
		},
		{
			Name:     "github-token",
			Pattern:  regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`),
			Template: Placeholder("github-token"),
		},
		{
			Name:     "slack-token",
			Pattern:  regexp.MustCompile(`\bxox[abposr]-[A-Za-z0-9-]{10,}`),
			Template: Placeholder("slack-token"),
		},
		{
			Name:     "api-key",
			Pattern:  regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{20,}`),
			Template: Placeholder("api-key"),
		},
		{
			Name:     "bearer-token",
			Pattern:  regexp.MustCompile(`(?i)\b(bearer)(\s+)[A-Za-z0-9\-._~+/]{16,}=*`),
			Template: "${1}${2}" + Placeholder("bearer-token"),
		},
		{
			// key = "value", key: 'value', "key": "value"
			Name:     "credential",
			Pattern:  regexp.MustCompile(`(?i)\b` + credentialKey + `(['"]?\s*[:=]\s*)(['"])[^'"\n<][^'"\n]*`),
			Template: "${1}${2}${3}" + Placeholder("credential"),
		},
		{
			// KEY=value, key: value
			Name:     "credential",
			Pattern:  regexp.MustCompile(`(?i)\b` + credentialKey + `(['"]?\s*[:=]\s*)[^'"\s<,;=][^\s'",;]*`),
			Template: "${1}${2}" + Placeholder("credential"),
		},
	}
}
