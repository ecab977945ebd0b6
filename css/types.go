// Package css parses inline style declarations found on chapter markup.
package css

// Value is a parsed CSS property value. Dimensions and percentages fill
// Value/Unit, idents and everything else keep Keyword, Raw always has the
// original text.
type Value struct {
	Raw     string
	Keyword string
	Value   float64
	Unit    string
}
