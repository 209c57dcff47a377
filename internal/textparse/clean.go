// Package textparse holds the pure string extractors used by the source
// normalizers: fixed-layout portal dates, dates and time ranges buried in
// free text, emails, URLs, and venue lines. Every function returns its zero
// value (nil pointer, empty slice) for input it does not recognize; none of
// them ever return an error.
package textparse

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// SquashWhitespace collapses runs of whitespace to a single space and trims
// the ends
func SquashWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

var htmlishReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	" ", " ",
)

// CleanHTMLish decodes the handful of HTML entities that survive the
// scrapers' text extraction, plus non-breaking spaces
func CleanHTMLish(s string) string {
	return htmlishReplacer.Replace(s)
}

// CleanText applies CleanHTMLish then SquashWhitespace
func CleanText(s string) string {
	return SquashWhitespace(CleanHTMLish(s))
}

// NullableText cleans s and returns nil when nothing remains
func NullableText(s string) *string {
	cleaned := CleanText(s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
