// File: pkg/collect/decode.go
package collect

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// sniffLen bounds the NUL-byte scan, like content sniffers do.
const sniffLen = 8000

// Decoded is the tagged result of decoding file bytes.
type Decoded struct {
	Kind Kind
	Text string // Empty for binary content.
}

// Decode classifies data as UTF-8 text or binary. Valid UTF-8 that carries NUL
// bytes near the start is still treated as binary.
func Decode(data []byte) Decoded {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.IndexByte(head, 0) >= 0 || !utf8.Valid(data) {
		return Decoded{Kind: KindBinary}
	}
	return Decoded{Kind: KindText, Text: string(data)}
}

// Truncate cuts text to at most limit bytes on a character boundary and appends a notice.
// It reports whether anything was cut. A limit of 0 disables truncation.
func Truncate(text string, limit int64) (string, bool) {
	if limit <= 0 || int64(len(text)) <= limit {
		return text, false
	}
	cut := int(limit)
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	notice := fmt.Sprintf("\n<<TRUNCATED: showing %d of %d bytes>>\n", cut, len(text))
	return text[:cut] + notice, true
}
