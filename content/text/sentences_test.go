package text

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestObserve(t *testing.T) {
	c := NewCounter(zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller())))
	if c == nil {
		t.Fatal("NewCounter returned nil with the bundled english model")
	}

	var st Stats
	c.Observe(&st, "It was dark. Nobody came out to meet them.")
	c.Observe(&st, "One more line, short and plain.")
	c.Observe(&st, "   ")

	if st.Paragraphs != 2 {
		t.Errorf("Paragraphs = %d, want 2", st.Paragraphs)
	}
	if st.Sentences != 3 {
		t.Errorf("Sentences = %d, want 3", st.Sentences)
	}
	if st.Words != 15 {
		t.Errorf("Words = %d, want 15", st.Words)
	}
}

func TestObserveWithoutTokenizer(t *testing.T) {
	var c *Counter

	var st Stats
	c.Observe(&st, "First. Second. Third.")
	c.Observe(&st, "More text here.")

	if st.Paragraphs != 2 {
		t.Errorf("Paragraphs = %d, want 2", st.Paragraphs)
	}
	if st.Sentences != 2 {
		t.Errorf("Sentences = %d, want one per paragraph", st.Sentences)
	}
	if st.Words != 6 {
		t.Errorf("Words = %d, want 6", st.Words)
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"single", "word", 1},
		{"spaces", "two  words", 2},
		{"nbsp separates", "Chapter Five", 2},
		{"mixed whitespace", "a\tb\nc d", 4},
		{"leading and trailing", "  trimmed  ", 1},
		{"wide space", "one　two", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countWords(tt.in); got != tt.want {
				t.Errorf("countWords(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
