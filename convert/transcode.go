package convert

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// rule is one substitution step. Replacements may reference capture groups
// with $1.
type rule struct {
	re      *regexp.Regexp
	replace string
}

// tagRules convert recognized inline markup to rich text control words.
// Order matters, later rules assume earlier ones already collapsed: open
// and close emphasis run before the self-closing variants, the del pair
// removal before the bare del tags.
var tagRules = []rule{
	{regexp.MustCompile(`(<em>)|(<i>)`), `\i `},
	{regexp.MustCompile(`(</em>)|(</i>)`), `\i0 `},
	{regexp.MustCompile(`(<strong>)|(<b>)`), `\b `},
	{regexp.MustCompile(`(</strong>)|(</b>)`), `\b0 `},
	{regexp.MustCompile(`(<br/>)|(<br />)|(<br>)`), "\\line\n"},
	{regexp.MustCompile(`((<p)|(</p)).*?(>)`), ``},
	{regexp.MustCompile(`((<a)|(</a)).*?(>)`), ``},
	{regexp.MustCompile(`(?s)(<del>).*?(</del>)`), ``},
	{regexp.MustCompile(`((<del)|(</del)|(<del/)).*?(>)`), ``},
	{regexp.MustCompile(`(<em/>)|(<i/>)`), ``},
	{regexp.MustCompile(`(<strong/>)|(<b/>)`), ``},
}

// spanRules handle the special paired span patterns the source pages use,
// matched as open/content/close triples. Underline spans become underline
// controls, purely decorative color and line-height spans keep only their
// content.
var spanRules = []rule{
	{regexp.MustCompile(`(?s)<span style="text-decoration:underline;">(.*?)</span>`), `\ul $1\ul0 `},
	{regexp.MustCompile(`(?s)<span style="color:[^"]*">(.*?)</span>`), `$1`},
	{regexp.MustCompile(`(?s)<span style="line-height:[^"]*">(.*?)</span>`), `$1`},
}

// spanTag matches span tags left over after spanRules, an unhandled style
// the tables above must be extended to cover.
var spanTag = regexp.MustCompile(`</?span[^>]*>`)

// entities maps numeric character references to their output form.
// References outside the table stay in the output and are reported.
var entities = map[int]string{
	160:  `\~`,
	199:  "Ç",
	220:  "Ü",
	233:  "é",
	246:  "ö",
	8211: `\endash `,
	8212: `\emdash `,
	8216: `\lquote `,
	8217: `\rquote `,
	8220: `\ldblquote `,
	8221: `\rdblquote `,
	8230: "...",
	9632: `\bullet`,
}

var (
	entityRef = regexp.MustCompile(`&#(\d+);`)
	entityAny = regexp.MustCompile(`&#(.+?);`)
	notLetter = regexp.MustCompile(`[^a-z]`)
)

// boilerplate holds chapter navigation texts as they read after tag
// stripping, letters only and lower-cased. Paragraphs reducing to one of
// these carry no story content.
var boilerplate = map[string]struct{}{
	"lastchapter":                {},
	"nextchapter":                {},
	"lastchapternextchapter":     {},
	"nextchapterlastchapter":     {},
	"lastchapternextchapterline": {},
	"nextchapterlastchapterline": {},
}

// Transcode converts one serialized paragraph element to rich text body
// form. Deleted content and navigation boilerplate disappear entirely, an
// empty result means the paragraph should not be written. Unrecognized
// spans are stripped of their tags with the content kept, unmapped
// character references stay untouched, both are reported on log.
func Transcode(log *zap.Logger, markup string) string {
	out := markup
	for _, r := range tagRules {
		out = r.re.ReplaceAllString(out, r.replace)
	}
	for _, r := range spanRules {
		out = r.re.ReplaceAllString(out, r.replace)
	}

	if spans := spanTag.FindAllString(out, -1); len(spans) > 0 {
		for _, s := range spans {
			log.Warn("Unrecognized inline span", zap.String("fragment", s))
		}
		out = spanTag.ReplaceAllString(out, "")
	}

	out = entityRef.ReplaceAllStringFunc(out, func(m string) string {
		code, err := strconv.Atoi(m[2 : len(m)-1])
		if err != nil {
			return m
		}
		if rep, ok := entities[code]; ok {
			return rep
		}
		return m
	})

	if _, ok := boilerplate[notLetter.ReplaceAllString(strings.ToLower(out), "")]; ok {
		return ""
	}

	for _, m := range entityAny.FindAllStringSubmatch(out, -1) {
		log.Warn("Unmapped character reference", zap.String("code", m[1]))
	}
	return out
}
