// Package serial models the table of contents of a serialized web novel and
// parses it from index markup.
package serial

import (
	"fmt"
	"sort"
)

// ChapterEntry is a single chapter link from the table of contents.
type ChapterEntry struct {
	Arc    int
	Number int // 1-based within the arc
	Title  string
	URL    string
}

// ArcEntry is a story arc from the table of contents. Chapters are ordered,
// Chapters[i].Number is always i+1.
type ArcEntry struct {
	Number   int
	Title    string
	Chapters []ChapterEntry
}

// Chapter returns chapter by number, nil when out of range.
func (a *ArcEntry) Chapter(number int) *ChapterEntry {
	if number < 1 || number > len(a.Chapters) {
		return nil
	}
	return &a.Chapters[number-1]
}

// Index is the parsed table of contents.
type Index struct {
	Arcs map[int]*ArcEntry
}

// Arc returns arc by number, nil when absent.
func (x *Index) Arc(number int) *ArcEntry {
	return x.Arcs[number]
}

// Numbers returns arc numbers in ascending order.
func (x *Index) Numbers() []int {
	nums := make([]int, 0, len(x.Arcs))
	for n := range x.Arcs {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Validate checks index numbering: arcs are contiguous starting at 1 with
// only the epilogue arc allowed past the contiguous range, chapters within
// every arc are contiguous starting at 1.
func (x *Index) Validate(epilogueArc int) error {
	if len(x.Arcs) == 0 {
		return fmt.Errorf("index has no arcs")
	}

	nums := x.Numbers()
	next := 1
	for _, n := range nums {
		if n != next {
			if n != epilogueArc {
				return fmt.Errorf("arc numbering is not contiguous: expected %d, have %d", next, n)
			}
		} else {
			next++
		}
	}

	for _, n := range nums {
		a := x.Arcs[n]
		if a.Number != n {
			return fmt.Errorf("arc %d carries number %d", n, a.Number)
		}
		for i := range a.Chapters {
			ch := &a.Chapters[i]
			if ch.Number != i+1 {
				return fmt.Errorf("chapter numbering in arc %d is not contiguous: expected %d, have %d", n, i+1, ch.Number)
			}
			if ch.Arc != n {
				return fmt.Errorf("chapter %d.%d carries arc %d", n, ch.Number, ch.Arc)
			}
		}
	}
	return nil
}
