package content

import (
	"pervade/utils/debug"
)

// String returns a readable dump of the extracted paragraphs.
// It exists solely for manual inspection during debugging.
func (c *Chapter) String() string {
	if c == nil {
		return "<nil Chapter>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Chapter (%d paragraphs)", len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		tw.Line(1, "[%d] %q", i, p.Text)
		tw.Line(2, "%s", p.Markup)
	}
	return tw.String()
}
