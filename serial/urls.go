package serial

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Characters left untouched by percent encoding, in addition to unreserved
// ASCII letters and digits. Matches what the source site tolerates in links.
const uriSafe = `/;%[]=:$&()+,!?*@'~_.-`

// AbsoluteURI turns a chapter link into an absolute percent escaped URI.
// Scheme-less links get https, root-relative links inherit scheme and host
// from base. The result is safe to hand to an HTTP client even when the
// link text carries unicode.
func AbsoluteURI(base, ref string) (string, error) {
	if !strings.HasPrefix(ref, "http") {
		if strings.HasPrefix(ref, "/") {
			u, err := url.Parse(base)
			if err != nil {
				return "", fmt.Errorf("unable to parse base url %q: %w", base, err)
			}
			ref = u.Scheme + "://" + u.Host + ref
		} else {
			ref = "https://" + ref
		}
	}
	return iriToURI(ref)
}

// iriToURI converts an internationalized resource identifier to a plain
// ASCII URI. The host goes through IDNA, everything after the authority is
// percent encoded byte by byte.
func iriToURI(iri string) (string, error) {
	scheme, rest, ok := strings.Cut(iri, "://")
	if !ok {
		return "", fmt.Errorf("url %q has no scheme", iri)
	}

	authority := rest
	var tail string
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		authority, tail = rest[:i], rest[i:]
	}
	if authority == "" {
		return "", fmt.Errorf("url %q has no host", iri)
	}

	host, port, hasPort := strings.Cut(authority, ":")
	encoded, err := idna.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("unable to encode host %q: %w", host, err)
	}
	authority = encoded
	if hasPort {
		authority += ":" + port
	}

	path, tail := cutAny(tail, "?#")
	var query, frag string
	if strings.HasPrefix(tail, "?") {
		query, tail = cutAny(tail[1:], "#")
	}
	frag = strings.TrimPrefix(tail, "#")

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(authority)
	b.WriteString(quote(path))
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(quote(query))
	}
	if len(frag) > 0 {
		b.WriteByte('#')
		b.WriteString(quote(frag))
	}
	return b.String(), nil
}

// cutAny splits s at the first occurrence of any separator byte, keeping the
// separator with the tail.
func cutAny(s, seps string) (head, tail string) {
	if i := strings.IndexAny(s, seps); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

const upperhex = "0123456789ABCDEF"

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte(uriSafe, c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0f])
		}
	}
	return b.String()
}
