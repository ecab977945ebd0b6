// Package rtf writes Rich Text Format output readable by common word
// processors, see the RTF 1.5 specification for the control words used.
package rtf

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"pervade/common"
	"pervade/config"
)

// Cover page font sizes in half-points. The rest of the document derives
// sizes from the configured base.
const (
	coverTitleSize  = 72
	coverAuthorSize = 42
	coverSpacerSize = 36
	coverNoteSize   = 24
	coverArtSize    = 18
)

// Twips per pixel at 96dpi, used for picture display size.
const twipsPerPixel = 15

// ParagraphStyle selects the control words emitted in front of a body
// paragraph. The zero value produces a bare paragraph inheriting the
// document font and size.
type ParagraphStyle struct {
	Alignment   common.Alignment // AlignmentNone emits nothing
	Indent      bool             // first line indent at the configured width
	Pad         bool             // pad both margins at the configured width
	HasTypeface bool
	Typeface    int // font table index, used when HasTypeface is set
	FontSize    int // half-points, zero keeps the current size
	SpaceAfter  int // twips, zero omitted
}

// DefaultStyle is the body text style, justified with a first line indent.
func DefaultStyle() ParagraphStyle {
	return ParagraphStyle{Alignment: common.AlignmentJustify, Indent: true}
}

// Cover describes the front matter pages written at the start of a file.
type Cover struct {
	Title       string   // displayed in caps
	Author      string
	PenName     string
	Art         []string // monospace ornament lines under the title
	Image       []byte   // JPEG data, optional
	ImageWidth  int      // pixels
	ImageHeight int      // pixels
	FrontMatter []string // text of the page following the cover
}

// Writer emits one document. The caller owns the underlying io.Writer and
// decides when the document ends, either End or ArcEnd writes the closing
// brace exactly once.
type Writer struct {
	w   io.Writer
	cfg *config.DocumentConfig
}

func NewWriter(w io.Writer, cfg *config.DocumentConfig) *Writer {
	return &Writer{w: w, cfg: cfg}
}

func (w *Writer) emit(format string, args ...any) error {
	_, err := fmt.Fprintf(w.w, format, args...)
	return err
}

// Header opens the document group and declares fonts, margins and the
// default text state.
func (w *Writer) Header() error {
	return w.emit("{\\rtf1\\deflang%d\\plain\\fs%d\\widowctrl\\hyphauto\\ftnbj\\margt%d\\margb%d\\margl%d\\margr%d {\\fonttbl {\\f0 %s;}{\\f1 %s;}{\\f2 %s;}}\n",
		w.cfg.LanguageCode, w.cfg.BaseFontSize,
		w.cfg.Page.MarginTop, w.cfg.Page.MarginBottom, w.cfg.Page.MarginLeft, w.cfg.Page.MarginRight,
		EscapeText(w.cfg.Fonts.Roman), EscapeText(w.cfg.Fonts.Sans), EscapeText(w.cfg.Fonts.Mono))
}

// emptyHeaders resets all six header and footer groups. The cover section
// and the end of story section must not inherit chapter headers.
func (w *Writer) emptyHeaders() error {
	for _, kind := range []string{"headerl", "headerr", "headerf", "footerl", "footerr", "footerf"} {
		if err := w.emit("{\\%s\\pard\\par}\n", kind); err != nil {
			return err
		}
	}
	return nil
}

// FrontMatter writes the cover page and the blank page note opening a file.
func (w *Writer) FrontMatter(c *Cover) error {
	if err := w.emptyHeaders(); err != nil {
		return err
	}
	if err := w.emit("\\sectd"); err != nil {
		return err
	}
	if err := w.emit("{\\pard\\sa180\\qc\\fs%d\\par}\n", coverSpacerSize); err != nil {
		return err
	}
	if err := w.emit("{\\pard\\sa180\\qc\\fs%d\\f1\\b %s\\b0\\par}\n", coverTitleSize, EscapeText(strings.ToUpper(c.Title))); err != nil {
		return err
	}
	if len(c.Image) > 0 {
		if err := w.picture(c.Image, c.ImageWidth, c.ImageHeight); err != nil {
			return err
		}
	}
	if len(c.Art) > 0 {
		lines := make([]string, len(c.Art))
		for i, l := range c.Art {
			lines[i] = EscapeText(l)
		}
		if err := w.emit("{\\pard\\sa0\\qc\\fs%d\\f2 %s\\par}\n", coverArtSize, strings.Join(lines, "\\line ")); err != nil {
			return err
		}
	}
	if err := w.emit("{\\pard\\sa180\\qc\\fs%d\\f1%s\\par}\n", coverSpacerSize, strings.Repeat("\\line", w.cfg.CoverFillerLines)); err != nil {
		return err
	}
	if err := w.emit("{\\pard\\sa120\\qc\\fs%d\\f1\\b %s\\b0\\par}\n", coverAuthorSize, EscapeText(c.Author)); err != nil {
		return err
	}
	if len(c.PenName) > 0 {
		if err := w.emit("{\\pard\\sa0\\qc\\fs%d\\f1\\b %s\\b0\\par}\n", w.cfg.BaseFontSize, EscapeText(c.PenName)); err != nil {
			return err
		}
	}
	for i, line := range c.FrontMatter {
		brk := ""
		if i == 0 {
			brk = "\\page"
		}
		if err := w.emit("{\\pard\\qc%s\\fs%d\\f1 %s\\par}\n", brk, coverNoteSize, EscapeText(line)); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) picture(data []byte, width, height int) error {
	if err := w.emit("{\\pard\\sa180\\qc{\\pict\\jpegblip\\picw%d\\pich%d\\picwgoal%d\\pichgoal%d\n",
		width, height, width*twipsPerPixel, height*twipsPerPixel); err != nil {
		return err
	}
	encoded := hex.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(len(encoded), 128)
		if err := w.emit("%s\n", encoded[:n]); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return w.emit("}\\par}\n")
}

// BeginChapter refreshes headers and footers for the chapter, breaks the
// section and writes the chapter heading block.
func (w *Writer) BeginChapter(arcTitle, chapterTitle string) error {
	fs := w.cfg.BaseFontSize

	if err := w.emit("{\\headerl\\pard\\ql\\fs%d\\f1\\line\\line %s\\par}\n", fs, EscapeText(strings.ToUpper(arcTitle))); err != nil {
		return err
	}
	if err := w.emit("{\\headerr\\pard\\qr\\fs%d\\f1\\line\\line %s\\par}\n", fs, EscapeText(strings.ToUpper("Chapter "+chapterTitle))); err != nil {
		return err
	}
	if err := w.emit("{\\headerf\\pard\\qc\\par}\n"); err != nil {
		return err
	}
	if err := w.emit("{\\footerl\\pard\\ql\\fs%d\\line\\chpgn\\par}\n", fs); err != nil {
		return err
	}
	if err := w.emit("{\\footerr\\pard\\qr\\fs%d\\line\\chpgn\\par}\n", fs); err != nil {
		return err
	}
	if err := w.emit("{\\footerf\\pard\\qc\\fs%d\\line\\par}\n", fs); err != nil {
		return err
	}
	if err := w.emit("\\sect\\sectd\n"); err != nil {
		return err
	}
	if err := w.emit("{\\pard\\page\\par}\n"); err != nil {
		return err
	}
	return w.heading(chapterTitle)
}

func (w *Writer) heading(title string) error {
	fs := w.cfg.BaseFontSize

	parts := SplitTitle(title)
	if len(parts) == 0 {
		parts = []string{title}
	}
	if len(parts) == 1 {
		return w.emit("{\\pard\\sa480\\qc\\fs%d\\f2\\b %s\\b0\\par}\n", 2*fs, EscapeText(parts[0]))
	}

	sub := parts[1]
	for _, credit := range parts[2:] {
		sub += "; " + strings.TrimPrefix(credit, "Donation ")
	}
	if err := w.emit("{\\pard\\sa120\\qc\\fs%d\\f2\\b %s\\b0\\par}\n", 2*fs, EscapeText(parts[0])); err != nil {
		return err
	}
	return w.emit("{\\pard\\sa480\\qc\\fs%d\\f2\\b %s\\b0\\par}\n", fs, EscapeText(sub))
}

// Paragraph writes one body paragraph. The body must already be in rich
// text form, it is emitted verbatim after the style controls.
func (w *Writer) Paragraph(style ParagraphStyle, body string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "{\\pard\\sl%d\\slmult1", w.cfg.LineSpacing)
	if style.SpaceAfter > 0 {
		fmt.Fprintf(&b, "\\sa%d", style.SpaceAfter)
	}
	b.WriteString(style.Alignment.Control())
	if style.Indent {
		fmt.Fprintf(&b, "\\fi%d", w.cfg.FirstLineIndent)
	}
	if style.Pad {
		fmt.Fprintf(&b, "\\li%d\\ri%d", w.cfg.BlockPadding, w.cfg.BlockPadding)
	}
	if style.FontSize > 0 {
		fmt.Fprintf(&b, "\\fs%d", style.FontSize)
	}
	if style.HasTypeface {
		fmt.Fprintf(&b, "\\f%d", style.Typeface)
	}
	if !strings.HasPrefix(body, "\\") {
		b.WriteByte(' ')
	}
	b.WriteString(body)
	b.WriteString("\\par}\n")
	return w.emit("%s", b.String())
}

// ArcEnd writes the end of story marker section and the closing brace.
func (w *Writer) ArcEnd(label string) error {
	if err := w.emptyHeaders(); err != nil {
		return err
	}
	if err := w.emit("\\sect\\sectd"); err != nil {
		return err
	}
	if err := w.emit("{\\pard\\page\\par}\n"); err != nil {
		return err
	}
	return w.emit("{\\pard\\qc\\f2\\b END OF %s\\b0\\par}\n}", EscapeText(strings.ToUpper(label)))
}

// End writes the trailing page break and the closing brace.
func (w *Writer) End() error {
	return w.emit("{\\pard\\page\\par}\n}")
}

// SplitTitle breaks a chapter title into heading parts on bracket and
// separator punctuation, trimming and dropping empties.
func SplitTitle(title string) []string {
	raw := strings.FieldsFunc(title, func(r rune) bool {
		return r == '(' || r == ')' || r == ':' || r == ';'
	})
	parts := raw[:0]
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
