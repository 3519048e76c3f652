// Package redact replaces secret-looking substrings with placeholders that name
// the detector but not the value.
//
// Matching is best-effort: the detectors are regular expressions, so secrets in
// unfamiliar shapes are missed and some harmless text is replaced. Redacted output
// must not be treated as safe to publish without review.
package redact

import "sort"

// Findings counts matches per rule name.
type Findings map[string]int

// Add merges other into f.
func (f Findings) Add(other Findings) {
	for name, n := range other {
		f[name] += n
	}
}

// Total is the number of matches across all rules.
func (f Findings) Total() int {
	total := 0
	for _, n := range f {
		total += n
	}
	return total
}

// Names returns the rule names with at least one match, sorted.
func (f Findings) Names() []string {
	names := make([]string, 0, len(f))
	for name, n := range f {
		if n > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Redactor applies an ordered list of rules.
type Redactor struct {
	rules []Rule
}

// New returns a Redactor using rules, or DefaultRules when none are given.
func New(rules ...Rule) *Redactor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Redactor{rules: rules}
}

// Redact returns text with every match replaced by its rule's placeholder.
func (r *Redactor) Redact(text string) string {
	out, _ := r.RedactWithFindings(text)
	return out
}

// RedactWithFindings redacts text and reports how many matches each rule replaced.
// Each rule sees the output of the rules before it.
func (r *Redactor) RedactWithFindings(text string) (string, Findings) {
	findings := Findings{}
	for _, rule := range r.rules {
		matches := rule.Pattern.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		findings[rule.Name] += len(matches)
		text = expandAll(rule, text, matches)
	}
	return text, findings
}

// Scan reports matches per rule without keeping the redacted text.
func (r *Redactor) Scan(text string) Findings {
	_, findings := r.RedactWithFindings(text)
	return findings
}

func expandAll(rule Rule, text string, matches [][]int) string {
	out := make([]byte, 0, len(text))
	last := 0
	for _, m := range matches {
		out = append(out, text[last:m[0]]...)
		out = rule.Pattern.ExpandString(out, rule.Template, text, m)
		last = m[1]
	}
	out = append(out, text[last:]...)
	return string(out)
}
