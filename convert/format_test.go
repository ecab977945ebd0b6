package convert

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"pervade/common"
	"pervade/config"
	"pervade/rtf"
)

func formatterConfig() *config.Config {
	return &config.Config{
		Overrides: []config.FormattingOverride{
			{Arc: 2, Chapter: 1, Typeface: 2, FontSize: 28, Alignment: common.AlignmentCenter, SpaceAfter: 120},
		},
	}
}

func TestFormatterStyle(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	f := NewFormatter(formatterConfig(), log)

	tests := []struct {
		name    string
		arc     int
		chapter int
		markup  string
		want    rtf.ParagraphStyle
	}{
		{
			name:    "default",
			arc:     1,
			chapter: 1,
			markup:  "<p>plain text</p>",
			want:    rtf.ParagraphStyle{Alignment: common.AlignmentJustify, Indent: true},
		},
		{
			name:    "css_right",
			arc:     1,
			chapter: 1,
			markup:  `<p style="text-align:right">THE END</p>`,
			want:    rtf.ParagraphStyle{Alignment: common.AlignmentRight},
		},
		{
			name:    "css_left",
			arc:     1,
			chapter: 1,
			markup:  `<p style="text-align:left">aside</p>`,
			want:    rtf.ParagraphStyle{Alignment: common.AlignmentLeft},
		},
		{
			name:    "css_center_for_other_values",
			arc:     1,
			chapter: 1,
			markup:  `<p style="text-align:justify">note</p>`,
			want:    rtf.ParagraphStyle{Alignment: common.AlignmentCenter},
		},
		{
			name:    "css_padding",
			arc:     1,
			chapter: 1,
			markup:  `<p style="padding-left:30px">quoted block</p>`,
			want:    rtf.ParagraphStyle{Pad: true},
		},
		{
			name:    "css_suspends_default",
			arc:     1,
			chapter: 1,
			markup:  `<p style="color:#888888">shaded</p>`,
			want:    rtf.ParagraphStyle{},
		},
		{
			name:    "styled_child_counts",
			arc:     1,
			chapter: 1,
			markup:  `<p>before <span style="text-align:right">tail</span></p>`,
			want:    rtf.ParagraphStyle{Alignment: common.AlignmentRight},
		},
		{
			name:    "override_hit",
			arc:     2,
			chapter: 1,
			markup:  "<p>verse</p>",
			want:    rtf.ParagraphStyle{Alignment: common.AlignmentCenter, HasTypeface: true, Typeface: 2, FontSize: 28, SpaceAfter: 120},
		},
		{
			name:    "override_beats_css",
			arc:     2,
			chapter: 1,
			markup:  `<p style="text-align:right">verse</p>`,
			want:    rtf.ParagraphStyle{Alignment: common.AlignmentCenter, HasTypeface: true, Typeface: 2, FontSize: 28, SpaceAfter: 120},
		},
		{
			name:    "override_other_chapter_misses",
			arc:     2,
			chapter: 2,
			markup:  "<p>prose</p>",
			want:    rtf.ParagraphStyle{Alignment: common.AlignmentJustify, Indent: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Style(tt.arc, tt.chapter, tt.markup); got != tt.want {
				t.Errorf("Style(%d, %d, %q) = %+v, want %+v", tt.arc, tt.chapter, tt.markup, got, tt.want)
			}
		})
	}
}

func TestFormatterMalformedCSS(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	f := NewFormatter(formatterConfig(), log)

	// unparseable declarations contribute nothing, the style attribute
	// still suspends the default
	got := f.Style(1, 1, `<p style="garbage;;(((">text</p>`)
	if got != (rtf.ParagraphStyle{}) {
		t.Errorf("Style() = %+v, want zero style for unparseable declarations", got)
	}
}

func TestFormatterRecognizedAmongMalformed(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	f := NewFormatter(formatterConfig(), log)

	got := f.Style(1, 1, `<p style="text-align:right;bogus">text</p>`)
	if got.Alignment != common.AlignmentRight {
		t.Errorf("Style() alignment = %v, want right when a recognized declaration precedes a malformed one", got.Alignment)
	}
}
