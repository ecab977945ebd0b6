package rtf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Group is a brace delimited run of content. Children hold *Group, Control
// and string values in document order.
type Group struct {
	Children []any
}

// Control is a control word or symbol with its optional numeric parameter.
type Control struct {
	Word     string
	Param    int
	HasParam bool
}

// Parse reads a document back into a group tree. It understands enough of
// the format for inspection and tests, it is not a general purpose reader.
func Parse(data []byte) (*Group, error) {
	if !bytes.HasPrefix(data, []byte("{\\rtf")) {
		return nil, fmt.Errorf("missing \\rtf header")
	}

	s := &scanner{data: data}
	g, err := s.group()
	if err != nil {
		return nil, err
	}
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.pos++
		default:
			return nil, fmt.Errorf("content after the closing brace at offset %d", s.pos)
		}
	}
	return g, nil
}

type scanner struct {
	data []byte
	pos  int
}

func (s *scanner) group() (*Group, error) {
	if s.pos >= len(s.data) || s.data[s.pos] != '{' {
		return nil, fmt.Errorf("expected group at offset %d", s.pos)
	}
	s.pos++

	g := &Group{}
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case '}':
			s.pos++
			return g, nil
		case '{':
			child, err := s.group()
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, child)
		case '\\':
			c, err := s.control()
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, c)
		case '\r', '\n':
			s.pos++
		default:
			if text := s.text(); len(text) > 0 {
				g.Children = append(g.Children, text)
			}
		}
	}
	return nil, fmt.Errorf("unclosed group")
}

func (s *scanner) control() (Control, error) {
	s.pos++
	if s.pos >= len(s.data) {
		return Control{}, fmt.Errorf("dangling escape at offset %d", s.pos)
	}

	if c := s.data[s.pos]; !isAlpha(c) {
		// control symbol, including escaped delimiters
		s.pos++
		return Control{Word: string(c)}, nil
	}

	start := s.pos
	for s.pos < len(s.data) && isAlpha(s.data[s.pos]) {
		s.pos++
	}
	ctl := Control{Word: string(s.data[start:s.pos])}

	if s.pos < len(s.data) && (s.data[s.pos] == '-' || isNum(s.data[s.pos])) {
		numStart := s.pos
		if s.data[s.pos] == '-' {
			s.pos++
		}
		for s.pos < len(s.data) && isNum(s.data[s.pos]) {
			s.pos++
		}
		ctl.Param, _ = strconv.Atoi(string(s.data[numStart:s.pos]))
		ctl.HasParam = true
	}

	// single space delimiter is part of the control word
	if s.pos < len(s.data) && s.data[s.pos] == ' ' {
		s.pos++
	} else if ctl.Word == "u" && ctl.HasParam && s.pos < len(s.data) {
		// \uN is followed by one fallback character for readers
		// without unicode support
		if c := s.data[s.pos]; c != '\\' && c != '{' && c != '}' {
			s.pos++
		}
	}
	return ctl, nil
}

func (s *scanner) text() string {
	var b strings.Builder
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '{' || c == '}' || c == '\\' {
			break
		}
		if c != '\r' && c != '\n' {
			b.WriteByte(c)
		}
		s.pos++
	}
	return b.String()
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

// Count returns the number of occurrences of a control word in the tree.
func (g *Group) Count(word string) int {
	n := 0
	for _, child := range g.Children {
		switch v := child.(type) {
		case Control:
			if v.Word == word {
				n++
			}
		case *Group:
			n += v.Count(word)
		}
	}
	return n
}

// Find returns every occurrence of a control word in document order.
func (g *Group) Find(word string) []Control {
	var out []Control
	for _, child := range g.Children {
		switch v := child.(type) {
		case Control:
			if v.Word == word {
				out = append(out, v)
			}
		case *Group:
			out = append(out, v.Find(word)...)
		}
	}
	return out
}

// Text flattens document text dropping service groups, with paragraph and
// line breaks rendered as newlines.
func (g *Group) Text() string {
	var b strings.Builder
	g.flatten(&b)
	return b.String()
}

var controlRunes = map[string]rune{
	"~":         ' ',
	"endash":    '–',
	"emdash":    '—',
	"lquote":    '‘',
	"rquote":    '’',
	"ldblquote": '“',
	"rdblquote": '”',
	"bullet":    '•',
}

func (g *Group) flatten(b *strings.Builder) {
	var hi rune

	for _, child := range g.Children {
		switch v := child.(type) {
		case string:
			b.WriteString(v)
		case Control:
			switch v.Word {
			case "par", "line":
				b.WriteByte('\n')
			case "tab":
				b.WriteByte('\t')
			case "{", "}", "\\":
				b.WriteString(v.Word)
			case "u":
				if !v.HasParam {
					continue
				}
				r := rune(v.Param)
				if r < 0 {
					r += 0x10000
				}
				switch {
				case utf16.IsSurrogate(r) && hi == 0:
					hi = r
					continue
				case utf16.IsSurrogate(r):
					b.WriteRune(utf16.DecodeRune(hi, r))
					hi = 0
				default:
					b.WriteRune(r)
				}
			default:
				if r, ok := controlRunes[v.Word]; ok {
					b.WriteRune(r)
				}
			}
		case *Group:
			if !v.service() {
				v.flatten(b)
			}
		}
	}
}

// service reports groups carrying no document body text.
func (g *Group) service() bool {
	for _, child := range g.Children {
		if c, ok := child.(Control); ok {
			switch c.Word {
			case "fonttbl", "colortbl", "stylesheet", "info", "pict",
				"headerl", "headerr", "headerf", "footerl", "footerr", "footerf":
				return true
			}
		}
	}
	return false
}
