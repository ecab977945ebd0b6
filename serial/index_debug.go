package serial

import (
	"pervade/utils/debug"
)

// String renders the index as an indented tree suitable for debug output.
func (x *Index) String() string {
	tw := debug.NewTreeWriter()

	tw.Line(0, "Index (%d arcs)", len(x.Arcs))
	for _, n := range x.Numbers() {
		a := x.Arcs[n]
		tw.Line(1, "Arc %d: %q (%d chapters)", a.Number, a.Title, len(a.Chapters))
		for _, c := range a.Chapters {
			tw.Line(2, "%d.%d %q", c.Arc, c.Number, c.Title)
			tw.Line(3, "%s", c.URL)
		}
	}
	return tw.String()
}
