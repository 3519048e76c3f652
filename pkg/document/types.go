// File: pkg/document/types.go
package document

import (
	"errors"
	"fmt"
)

// SectionKind tags the origin of a document region.
type SectionKind string

const (
	SectionTree SectionKind = "tree"
	SectionFile SectionKind = "file"
)

// ErrInvalidSections reports section ranges that do not tile the document text.
var ErrInvalidSections = errors.New("sections do not tile the document")

// Section is a contiguous byte range of the document.
type Section struct {
	Kind  SectionKind
	Path  string // Relative file path; empty for the tree section.
	Start int    // Inclusive byte offset.
	End   int    // Exclusive byte offset.
}

// Len is the section size in bytes.
func (s Section) Len() int { return s.End - s.Start }

// Label names the section for reports.
func (s Section) Label() string {
	if s.Kind == SectionTree {
		return string(SectionTree)
	}
	return s.Path
}

// Document is the rendered Markdown plus the byte ranges of its sections.
type Document struct {
	Text     string
	Sections []Section
}

// Size is the UTF-8 encoded length of the document.
func (d Document) Size() int { return len(d.Text) }

// SectionText returns the text of one section.
func (d Document) SectionText(s Section) string { return d.Text[s.Start:s.End] }

// Validate checks that sections are contiguous, non-overlapping and cover the text exactly.
func (d Document) Validate() error {
	offset := 0
	for i, s := range d.Sections {
		if s.Start != offset || s.End < s.Start {
			return fmt.Errorf("%w: section %d spans [%d,%d), expected start %d", ErrInvalidSections, i, s.Start, s.End, offset)
		}
		offset = s.End
	}
	if offset != len(d.Text) {
		return fmt.Errorf("%w: sections end at %d, text is %d bytes", ErrInvalidSections, offset, len(d.Text))
	}
	return nil
}
