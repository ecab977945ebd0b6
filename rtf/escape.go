package rtf

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// EscapeText makes plain text safe inside a group. Group delimiters and the
// escape character are backslash escaped, anything outside ASCII becomes a
// \uN sequence with a '?' fallback for readers without unicode support.
func EscapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\\' || r == '{' || r == '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x80:
			b.WriteRune(r)
		case r > 0xffff:
			// \uN carries a signed 16 bit value, runes beyond the BMP
			// travel as a surrogate pair
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&b, "\\u%d?\\u%d?", int16(r1), int16(r2))
		default:
			fmt.Fprintf(&b, "\\u%d?", int16(r))
		}
	}
	return b.String()
}
