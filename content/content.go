// Package content extracts ordered body paragraphs from chapter pages.
package content

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"go.uber.org/zap"

	"pervade/config"
)

// Paragraph is a single body paragraph in document order. Markup keeps the
// serialized node with its tags for the transcoder, Text is the flattened
// node text used for diagnostics and statistics.
type Paragraph struct {
	Markup string
	Text   string
}

// Chapter holds everything extracted from one chapter page.
type Chapter struct {
	Paragraphs []Paragraph
}

// Extractor pulls body paragraphs out of chapter pages with the configured
// content query.
type Extractor struct {
	log   *zap.Logger
	query *xpath.Expr
}

func NewExtractor(cfg *config.SourceConfig, log *zap.Logger) (*Extractor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	query, err := xpath.Compile(cfg.ContentQuery)
	if err != nil {
		return nil, fmt.Errorf("bad content query %q: %w", cfg.ContentQuery, err)
	}
	return &Extractor{
		log:   log.Named("content"),
		query: query,
	}, nil
}

// Extract parses a chapter page and returns its body paragraphs in document
// order. A page where the query matches nothing yields an empty chapter, the
// chapter heading is still written for it.
func (e *Extractor) Extract(r io.Reader) (*Chapter, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse chapter page: %w", err)
	}

	var c Chapter
	for _, n := range htmlquery.QuerySelectorAll(doc, e.query) {
		markup := strings.TrimSpace(htmlquery.OutputHTML(n, true))
		if len(markup) == 0 {
			continue
		}
		c.Paragraphs = append(c.Paragraphs, Paragraph{
			Markup: charref(markup),
			Text:   strings.TrimSpace(htmlquery.InnerText(n)),
		})
	}
	if len(c.Paragraphs) == 0 {
		e.log.Warn("No paragraphs matched the content query")
	}
	return &c, nil
}

// The html serializer escapes quotes in text nodes, the substitution tables
// expect them verbatim.
var quoteRefs = strings.NewReplacer("&#39;", "'", "&#34;", `"`)

// charref renders everything outside ASCII as decimal character references,
// the serialization the transcoder substitution table is written against.
func charref(s string) string {
	s = quoteRefs.Replace(s)
	if strings.IndexFunc(s, func(r rune) bool { return r >= 0x80 }) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		b.WriteString("&#")
		b.WriteString(strconv.Itoa(int(r)))
		b.WriteByte(';')
	}
	return b.String()
}
