package collect

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	text := Decode([]byte("héllo\n"))
	assert.Equal(t, KindText, text.Kind)
	assert.Equal(t, "héllo\n", text.Text)

	invalid := Decode([]byte{0xff, 0xfe, 'a'})
	assert.Equal(t, KindBinary, invalid.Kind)
	assert.Empty(t, invalid.Text)

	nul := Decode([]byte("abc\x00def"))
	assert.Equal(t, KindBinary, nul.Kind)

	empty := Decode(nil)
	assert.Equal(t, KindText, empty.Kind)
}

func TestTruncate(t *testing.T) {
	out, cut := Truncate("short", 100)
	assert.False(t, cut)
	assert.Equal(t, "short", out)

	out, cut = Truncate("anything", 0)
	assert.False(t, cut)
	assert.Equal(t, "anything", out)

	out, cut = Truncate("abcdefghij", 4)
	assert.True(t, cut)
	assert.True(t, strings.HasPrefix(out, "abcd\n<<TRUNCATED: showing 4 of 10 bytes>>"))
}

func TestTruncate_KeepsCharactersWhole(t *testing.T) {
	// "€" is three bytes; a cap of 5 lands inside the second one.
	out, cut := Truncate("€€€", 5)
	assert.True(t, cut)
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasPrefix(out, "€\n<<TRUNCATED: showing 3 of 9 bytes>>"))
}
