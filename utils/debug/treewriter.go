// Package debug renders nested structures as indented text for dump
// output. Index, chapter and mirror String() methods all feed through it
// so their dumps stay uniform and diffable between runs.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines, two spaces per depth level.
type TreeWriter struct {
	w strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

// Line writes a formatted line at the given depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes a labeled text value quoted, so control characters and
// line breaks survive on a single dump line. Empty values stay unquoted to
// keep absent fields easy to spot.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	if value != "" {
		value = strconv.Quote(value)
	}
	tw.w.WriteString(value)
	tw.w.WriteByte('\n')
}

func (tw *TreeWriter) pad(depth int) {
	tw.w.WriteString(strings.Repeat("  ", depth))
}
