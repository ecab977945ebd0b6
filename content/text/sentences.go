// Package text derives sentence and word statistics from chapter text.
package text

import (
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
)

// Counter tokenizes chapter text for diagnostics. A nil Counter still counts
// paragraphs and words, sentence counts degrade to one per paragraph.
type Counter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewCounter prepares a tokenizer with the english training data bundled in
// the tokenizer module.
func NewCounter(log *zap.Logger) *Counter {
	t, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentence tokenizer data, sentence counts degrade to paragraph counts", zap.Error(err))
		return nil
	}
	return &Counter{t}
}

// Stats accumulates text statistics over the paragraphs of one chapter.
type Stats struct {
	Paragraphs int
	Sentences  int
	Words      int
}

// Observe adds one paragraph of plain text to the totals. Paragraphs with no
// text are not counted.
func (c *Counter) Observe(st *Stats, text string) {
	if len(strings.TrimSpace(text)) == 0 {
		return
	}
	st.Paragraphs++
	st.Sentences += c.countSentences(text)
	st.Words += countWords(text)
}

func (c *Counter) countSentences(in string) int {
	if c == nil {
		// tokenizer is off
		return 1
	}
	return len(c.Tokenize(in))
}

// countWords counts separator-delimited runs. NBSP separates words here even
// though it glues them for line breaking purposes.
func countWords(in string) int {
	var n int
	inWord := false
	for _, sym := range in {
		if isSeparator(sym) {
			if inWord {
				n++
			}
			inWord = false
			continue
		}
		inWord = true
	}
	if inWord {
		n++
	}
	return n
}

func isSeparator(r rune) bool {
	if uint32(r) <= unicode.MaxLatin1 {
		switch r {
		case '\t', '\n', '\v', '\f', '\r', ' ', 0x85, 0xA0:
			return true
		}
		return false
	}
	return unicode.IsSpace(r)
}
