package textparse

import (
	"regexp"
	"strings"
)

var venueKeywordRe = regexp.MustCompile(`(?i)\b(boardroom|building|house|hall|room|centre|center|street|road|offices? of)\b`)

// HasVenueKeyword reports whether the line mentions a venue-like place
func HasVenueKeyword(s string) bool {
	return venueKeywordRe.MatchString(s)
}

// GuessVenueFromLine returns the line verbatim when it carries a venue
// keyword, otherwise whatever follows a lowercase "at " of length >= 5,
// otherwise nil
func GuessVenueFromLine(s string) *string {
	line := SquashWhitespace(s)
	if line == "" {
		return nil
	}

	if venueKeywordRe.MatchString(line) {
		return &line
	}

	if m := atPrefixRe.FindStringSubmatch(line); m != nil {
		rest := strings.TrimSpace(m[1])
		if len(rest) >= 5 {
			return &rest
		}
	}

	return nil
}

// lowercase "at " only; "AT" heads too many unrelated words in shouting
// portal prose
var atPrefixRe = regexp.MustCompile(`(?:^|\s)at\s+(.+)$`)
