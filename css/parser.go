package css

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses style attribute contents into property maps.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new inline CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css")}
}

// ParseDeclarations parses a CSS declaration list, the way it appears inside
// a style attribute. Malformed declarations terminate parsing, whatever was
// recognized up to that point is returned.
func (p *Parser) ParseDeclarations(data []byte) map[string]Value {
	props := make(map[string]Value)

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, true)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err != io.EOF {
				p.log.Debug("Inline style parse error", zap.Error(err))
			}
			return props

		case css.DeclarationGrammar:
			name := strings.ToLower(string(data))
			values := parser.Values()
			if len(values) > 0 {
				props[name] = p.parseValue(values)
			}

		case css.CustomPropertyGrammar:
			// custom properties never matter for output
			continue
		}
	}
}

// parseValue converts CSS tokens to a Value.
func (p *Parser) parseValue(tokens []css.Token) Value {
	if len(tokens) == 0 {
		return Value{}
	}

	// Build raw value string
	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(rawParts, ""))

	val := Value{Raw: raw}

	// Handle single token cases
	if len(tokens) == 1 || (len(tokens) == 2 && tokens[1].TokenType == css.WhitespaceToken) {
		t := tokens[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unquote(string(t.Data))
		case css.HashToken:
			// color value
			val.Keyword = string(t.Data)
		}
		return val
	}

	// Multi-value and function properties - keep raw value
	val.Keyword = raw
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	unit := strings.ToLower(s[numEnd:])
	return num, unit
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
