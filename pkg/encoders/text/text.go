// Package text implements the string escaping NIP-01 mandates for the
// canonical event serialization. encoding/json is unsuitable for this:
// it HTML-escapes &, < and > by default, which changes the canonical
// bytes and therefore the event id hash.
package text

// NostrEscape appends s to dst applying exactly the escapes NIP-01
// names: double quote, backslash, line feed, carriage return, tab,
// backspace and form feed. Every other byte, UTF-8 sequences included,
// is appended verbatim.
func NostrEscape(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// AppendQuote appends s to dst wrapped in double quotes, escaped by enc.
func AppendQuote(dst []byte, s string, enc func([]byte, string) []byte) []byte {
	dst = append(dst, '"')
	dst = enc(dst, s)
	return append(dst, '"')
}
