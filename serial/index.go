package serial

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pervade/config"
)

// Parser builds an Index from table of contents markup. Arc titles come from
// emphasized headings, chapter entries from links, in two passes over the
// same document.
type Parser struct {
	cfg *config.SourceConfig
	log *zap.Logger

	headingQuery *xpath.Expr
	linkQuery    *xpath.Expr
}

// NewParser compiles configured queries and returns a ready parser.
func NewParser(cfg *config.SourceConfig, log *zap.Logger) (*Parser, error) {
	if log == nil {
		log = zap.NewNop()
	}

	hq, err := xpath.Compile(cfg.HeadingQuery)
	if err != nil {
		return nil, fmt.Errorf("bad heading query %q: %w", cfg.HeadingQuery, err)
	}
	lq, err := xpath.Compile(cfg.LinkQuery)
	if err != nil {
		return nil, fmt.Errorf("bad link query %q: %w", cfg.LinkQuery, err)
	}

	return &Parser{
		cfg:          cfg,
		log:          log.Named("index"),
		headingQuery: hq,
		linkQuery:    lq,
	}, nil
}

// Parse reads index markup and returns the parsed and corrected Index.
func (p *Parser) Parse(r io.Reader) (*Index, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse index markup: %w", err)
	}

	idx := &Index{Arcs: make(map[int]*ArcEntry)}

	p.parseHeadings(doc, idx)
	if err := p.parseLinks(doc, idx); err != nil {
		return nil, err
	}
	if err := p.applyCorrections(idx); err != nil {
		return nil, err
	}

	if err := idx.Validate(p.cfg.EpilogueArc); err != nil {
		return nil, fmt.Errorf("parsed index is malformed: %w", err)
	}
	return idx, nil
}

// parseHeadings assigns arc numbers in document order. Headings starting
// with a digit are chapter links rendered bold, not arc titles. A heading
// of a single character is an arc title split across two elements and is
// buffered until the next heading completes it.
func (p *Parser) parseHeadings(doc *html.Node, idx *Index) {
	var (
		prefix string
		arc    int
	)

	add := func(title string) {
		arc++
		idx.Arcs[arc] = &ArcEntry{Number: arc, Title: title}
	}

	for _, n := range htmlquery.QuerySelectorAll(doc, p.headingQuery) {
		text := strings.TrimSpace(htmlquery.InnerText(n))
		if len(text) == 0 {
			continue
		}

		switch {
		case text[0] >= '0' && text[0] <= '9':
			// skip
		case len(prefix) > 0:
			add(prefix + text)
			prefix = ""
		case utf8.RuneCountInString(text) == 1:
			prefix = text
		case strings.ContainsRune(text, '\n'):
			first, _, _ := strings.Cut(text, "\n")
			add(strings.TrimSpace(first))
		case !strings.HasPrefix(text, "E."):
			add(text)
		}
	}

	p.log.Debug("Parsed arc headings", zap.Int("arcs", arc))
}

// parseLinks walks chapter links in document order assigning chapter numbers.
// Epilogue chapters carry no numeric arc prefix and land in the configured
// epilogue arc.
func (p *Parser) parseLinks(doc *html.Node, idx *Index) error {
	var arc, chapter int

	for _, n := range htmlquery.QuerySelectorAll(doc, p.linkQuery) {
		text := strings.TrimSpace(htmlquery.InnerText(n))
		if len(text) == 0 || !strings.ContainsAny(text[:1], "0123456789E") {
			continue
		}

		number := 0
		if text[0] == 'E' {
			number = p.cfg.EpilogueArc
		} else {
			dot := strings.IndexByte(text, '.')
			if dot < 0 {
				p.log.Debug("Ignoring link without arc prefix", zap.String("text", text))
				continue
			}
			var err error
			if number, err = strconv.Atoi(text[:dot]); err != nil {
				p.log.Debug("Ignoring link with unreadable arc prefix", zap.String("text", text))
				continue
			}
		}

		if number == arc {
			chapter++
		} else {
			arc = number
			chapter = 1
		}

		a := idx.Arcs[arc]
		if a == nil {
			if arc != p.cfg.EpilogueArc {
				return fmt.Errorf("chapter link %q references arc %d with no heading", text, arc)
			}
			// index had no heading for epilogues
			a = &ArcEntry{Number: arc, Title: "Epilogue"}
			idx.Arcs[arc] = a
			p.log.Warn("Epilogue arc has no heading, using placeholder title", zap.Int("arc", arc))
		}

		title := text
		if !p.cfg.OriginalTitles {
			title = NormalizeTitle(title)
		}

		href := htmlquery.SelectAttr(n, "href")
		u, err := AbsoluteURI(p.cfg.IndexURL, href)
		if err != nil {
			p.log.Warn("Unable to normalize chapter link, keeping as is", zap.String("href", href), zap.Error(err))
			u = href
		}

		a.Chapters = append(a.Chapters, ChapterEntry{Arc: arc, Number: chapter, Title: title, URL: u})
	}
	return nil
}

// applyCorrections inserts configured chapters missing from the source index
// at their positions, renumbering the tail of the arc.
func (p *Parser) applyCorrections(idx *Index) error {
	for _, c := range p.cfg.Corrections {
		a := idx.Arcs[c.Arc]
		if a == nil {
			return fmt.Errorf("correction %d.%d references unknown arc", c.Arc, c.Chapter)
		}
		if c.Chapter < 1 || c.Chapter > len(a.Chapters)+1 {
			return fmt.Errorf("correction %d.%d is out of range, arc has %d chapters", c.Arc, c.Chapter, len(a.Chapters))
		}

		entry := ChapterEntry{Arc: c.Arc, Number: c.Chapter, Title: c.Title, URL: c.URL}
		a.Chapters = append(a.Chapters, ChapterEntry{})
		copy(a.Chapters[c.Chapter:], a.Chapters[c.Chapter-1:])
		a.Chapters[c.Chapter-1] = entry
		for i := c.Chapter; i < len(a.Chapters); i++ {
			a.Chapters[i].Number = i + 1
		}

		p.log.Debug("Applied index correction", zap.Int("arc", c.Arc), zap.Int("chapter", c.Chapter), zap.String("title", c.Title))
	}
	return nil
}

var interludeRx = regexp.MustCompile(`Interlude[^;)]*;?`)

// NormalizeTitle strips the donation qualifier from parenthetical markers
// and collapses interlude qualifiers, so "16.z (Donation Interlude; Danny)"
// becomes "16.z (Interlude; Danny)".
func NormalizeTitle(title string) string {
	t := strings.Replace(title, "(Donation ", "(", 1)
	return interludeRx.ReplaceAllString(t, "Interlude;")
}
