package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNostrEscape_NamedEscapes(t *testing.T) {
	got := AppendQuote(nil, "a\"b\\c\nd\re\tf\bg\fh", NostrEscape)
	assert.Equal(t, `"a\"b\\c\nd\re\tf\bg\fh"`, string(got))
}

func TestNostrEscape_LeavesHTMLCharactersAlone(t *testing.T) {
	got := AppendQuote(nil, `<a href="x">&amp;</a>`, NostrEscape)
	assert.Equal(t, `"<a href=\"x\">&amp;</a>"`, string(got))
}

func TestNostrEscape_PassesUTF8Verbatim(t *testing.T) {
	got := AppendQuote(nil, "héllo ☃", NostrEscape)
	assert.Equal(t, `"héllo ☃"`, string(got))
}
