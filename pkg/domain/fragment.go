package domain

import (
	"regexp"
	"strings"
)

var blankRuns = regexp.MustCompile(`\n{2,}`)

// emptyQuoteMarker is the artifact left by a suggestion whose quote is blank.
// Only the first occurrence is stripped, matching the established output format.
const emptyQuoteMarker = "{{rvw|1=}} —— "

// BuildFragment renders chapters into the wikitext block appended on commit.
// Each chapter becomes a bold title line, one bulleted {{rvw}} entry per
// suggestion, and a signature line. Blank-line runs inside advice collapse to
// {{pb}} and remaining newlines to <br> so every suggestion stays one bullet.
func BuildFragment(chapters []Chapter) string {
	var b strings.Builder
	for _, ch := range chapters {
		b.WriteString("'''" + strings.TrimSpace(ch.Title) + "'''\n")
		for _, s := range ch.Suggestions {
			quote := strings.TrimSpace(s.Quote)
			advice := strings.TrimSpace(s.Advice)
			advice = blankRuns.ReplaceAllString(advice, "{{pb}}")
			advice = strings.ReplaceAll(advice, "\n", "<br>")
			b.WriteString("* {{rvw|1=" + quote + "}} —— " + advice + "\n")
		}
		b.WriteString("--~~~~\n\n")
	}
	return strings.Replace(b.String(), emptyQuoteMarker, "", 1)
}

// HeaderMarkup returns a wikitext heading line for the given level, clamped to
// 1..6 equals signs. The line starts with a newline and carries no trailing
// blank so callers control spacing when concatenating.
func HeaderMarkup(title string, level int) string {
	if title == "" {
		return ""
	}
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	eq := strings.Repeat("=", level)
	return "\n" + eq + title + eq
}
