package convert

import (
	"regexp"

	"go.uber.org/zap"

	"pervade/common"
	"pervade/config"
	"pervade/css"
	"pervade/rtf"
)

// styleAttr recovers the first inline style attribute anywhere in the raw
// markup, styled child elements count the same as a styled paragraph tag.
var styleAttr = regexp.MustCompile(`style="(.+?)"`)

// Formatter resolves paragraph styles. A configured per-chapter override
// wins outright, otherwise inline CSS on the raw markup, otherwise the
// document default.
type Formatter struct {
	log       *zap.Logger
	css       *css.Parser
	overrides map[config.OverrideKey]*config.FormattingOverride
}

func NewFormatter(cfg *config.Config, log *zap.Logger) *Formatter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Formatter{
		log:       log.Named("format"),
		css:       css.NewParser(log),
		overrides: cfg.OverrideMap(),
	}
}

// Style computes the style for one paragraph of the given chapter from its
// raw markup. Override and CSS never mix.
func (f *Formatter) Style(arc, chapter int, markup string) rtf.ParagraphStyle {
	if o, ok := f.overrides[config.OverrideKey{Arc: arc, Chapter: chapter}]; ok {
		return rtf.ParagraphStyle{
			Alignment:   o.Alignment,
			Indent:      o.Indent,
			HasTypeface: o.Typeface > 0,
			Typeface:    o.Typeface,
			FontSize:    o.FontSize,
			SpaceAfter:  o.SpaceAfter,
		}
	}

	m := styleAttr.FindStringSubmatch(markup)
	if m == nil {
		return rtf.DefaultStyle()
	}

	// A style attribute suspends the default alignment and indent, only
	// the recognized properties contribute controls.
	var style rtf.ParagraphStyle
	decls := f.css.ParseDeclarations([]byte(m[1]))
	if v, ok := decls["text-align"]; ok {
		switch v.Keyword {
		case "left":
			style.Alignment = common.AlignmentLeft
		case "right":
			style.Alignment = common.AlignmentRight
		default:
			style.Alignment = common.AlignmentCenter
		}
	}
	if _, ok := decls["padding-left"]; ok {
		style.Pad = true
	}
	f.log.Debug("Styled paragraph from inline css",
		zap.Int("arc", arc), zap.Int("chapter", chapter), zap.String("style", m[1]))
	return style
}
