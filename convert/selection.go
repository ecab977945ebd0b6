package convert

import (
	"fmt"
	"strconv"
	"strings"

	"pervade/serial"
)

// SelectionError lists selection tokens that did not resolve against the
// index. Valid tokens from the same request still convert.
type SelectionError struct {
	Invalid []string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selection not present in the index: %s", strings.Join(e.Invalid, ", "))
}

// planItem is one chapter scheduled for conversion. The first and last
// flags describe its position within the arc's selected run and drive the
// output file lifecycle.
type planItem struct {
	arc     *serial.ArcEntry
	chapter *serial.ChapterEntry
	first   bool
	last    bool
}

// buildPlan resolves selection tokens into the ordered chapter list. A
// bare number selects the whole arc, "arc.chapter" a single chapter, no
// tokens select everything. Plan order follows the index. Invalid tokens
// are collected into the returned SelectionError while valid ones still
// make the plan.
func buildPlan(index *serial.Index, tokens []string) ([]planItem, *SelectionError) {
	wholeArcs := make(map[int]bool)
	chapters := make(map[int]map[int]bool)
	var invalid []string

	for _, tok := range tokens {
		arcPart, chapterPart, picked := strings.Cut(tok, ".")
		arcNum, err := strconv.Atoi(arcPart)
		if err != nil || index.Arc(arcNum) == nil {
			invalid = append(invalid, tok)
			continue
		}
		if !picked {
			wholeArcs[arcNum] = true
			continue
		}
		chapterNum, err := strconv.Atoi(chapterPart)
		if err != nil || index.Arc(arcNum).Chapter(chapterNum) == nil {
			invalid = append(invalid, tok)
			continue
		}
		if chapters[arcNum] == nil {
			chapters[arcNum] = make(map[int]bool)
		}
		chapters[arcNum][chapterNum] = true
	}

	everything := len(tokens) == 0
	var plan []planItem
	for _, arcNum := range index.Numbers() {
		arc := index.Arc(arcNum)

		var selected []*serial.ChapterEntry
		for i := range arc.Chapters {
			ch := &arc.Chapters[i]
			if everything || wholeArcs[arcNum] || chapters[arcNum][ch.Number] {
				selected = append(selected, ch)
			}
		}
		for i, ch := range selected {
			plan = append(plan, planItem{
				arc:     arc,
				chapter: ch,
				first:   i == 0,
				last:    i == len(selected)-1,
			})
		}
	}

	if len(invalid) > 0 {
		return plan, &SelectionError{Invalid: invalid}
	}
	return plan, nil
}
