// Package chunk splits an assembled document into ordered, byte-bounded chunks.
//
// The splitter is greedy. Whole sections are accumulated into the current chunk
// until the next one does not fit. A section that fits an empty chunk starts a new
// one; a section larger than the budget is cut at the byte level, starting in the
// remaining space of the current chunk. Cut points always fall on UTF-8 character
// boundaries, found by scanning backward from the naive cut. No attempt is made at
// optimal packing.
package chunk

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"ctxpack/pkg/document"
)

// MinBytes is the smallest budget that can hold any UTF-8 character.
const MinBytes = utf8.UTFMax

// ErrBudgetTooSmall is returned when the budget cannot hold a whole character.
var ErrBudgetTooSmall = errors.New("chunk budget is smaller than one UTF-8 character")

// Chunk is one upload-sized piece of the document.
type Chunk struct {
	Index        int    // 1-based position.
	Start        int    // Inclusive byte offset into the document.
	End          int    // Exclusive byte offset into the document.
	Text         string // Document text in [Start, End).
	FirstSection string // Label of the section the chunk starts in.
	LastSection  string // Label of the section the chunk ends in.
}

// Size is the encoded length of the chunk in bytes.
func (c Chunk) Size() int { return len(c.Text) }

// Split divides doc into chunks of at most maxBytes bytes. An empty document yields
// no chunks; a document within budget yields exactly one.
func Split(doc document.Document, maxBytes int) ([]Chunk, error) {
	if maxBytes < MinBytes {
		return nil, fmt.Errorf("%w: max bytes %d, need at least %d", ErrBudgetTooSmall, maxBytes, MinBytes)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if len(doc.Text) == 0 {
		return nil, nil
	}

	s := &splitter{doc: doc, sections: doc.Sections, max: maxBytes}
	for _, sec := range doc.Sections {
		if err := s.add(sec); err != nil {
			return nil, err
		}
	}
	s.flush(len(doc.Text))
	return s.chunks, nil
}

type splitter struct {
	doc      document.Document
	sections []document.Section
	max      int
	start    int // Start offset of the chunk being filled.
	chunks   []Chunk
}

// add places one section, cutting it only when it exceeds the whole budget.
func (s *splitter) add(sec document.Section) error {
	if sec.End-s.start <= s.max {
		return nil
	}
	if sec.Len() <= s.max {
		s.flush(sec.Start)
		return nil
	}

	pos := sec.Start
	for sec.End-s.start > s.max {
		cut := s.boundary(s.start+s.max, pos)
		if cut <= pos {
			// No whole character fits in what is left of this chunk.
			if pos == s.start {
				return fmt.Errorf("%w: no boundary within %d bytes at offset %d", ErrBudgetTooSmall, s.max, pos)
			}
			s.flush(pos)
			continue
		}
		s.flush(cut)
		pos = cut
	}
	return nil
}

// boundary scans backward from naive to the nearest character start, never below floor.
// Input that is not valid UTF-8 is cut at the naive offset once a whole character's
// worth of bytes has been scanned without finding a start.
func (s *splitter) boundary(naive, floor int) int {
	text := s.doc.Text
	if naive >= len(text) {
		return len(text)
	}
	j := naive
	for steps := 0; j > floor && !utf8.RuneStart(text[j]); steps++ {
		if steps == utf8.UTFMax-1 {
			return naive
		}
		j--
	}
	return j
}

// flush closes the current chunk at end, if it holds anything.
func (s *splitter) flush(end int) {
	if end <= s.start {
		return
	}
	s.chunks = append(s.chunks, Chunk{
		Index:        len(s.chunks) + 1,
		Start:        s.start,
		End:          end,
		Text:         s.doc.Text[s.start:end],
		FirstSection: s.labelAt(s.start),
		LastSection:  s.labelAt(end - 1),
	})
	s.start = end
}

// labelAt names the section containing the byte offset.
func (s *splitter) labelAt(offset int) string {
	lo, hi := 0, len(s.sections)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		sec := s.sections[mid]
		switch {
		case offset < sec.Start:
			hi = mid - 1
		case offset >= sec.End:
			lo = mid + 1
		default:
			return sec.Label()
		}
	}
	return ""
}

// Join concatenates chunk texts in index order.
func Join(chunks []Chunk) string {
	n := 0
	for _, c := range chunks {
		n += len(c.Text)
	}
	buf := make([]byte, 0, n)
	for _, c := range chunks {
		buf = append(buf, c.Text...)
	}
	return string(buf)
}
