package textparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var textualDateTimeRe = regexp.MustCompile(
	`(?i)\b(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept?|Oct|Nov|Dec)\s+(\d{4})` +
		`(?:\s*(?:@|at)?\s*(\d{1,2})(?:[:.hH](\d{2}))?\s*(AM|PM)?)?`)

// ExtractTextualDateTime finds the first "D Month YYYY [HH[:MM] [AM|PM]]"
// occurrence in s. Hour/minute separators @, H, h, :, . are accepted and a
// missing time defaults to 00:00.
func ExtractTextualDateTime(s string, loc *time.Location) *time.Time {
	m := textualDateTimeRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return nil
	}
	month, ok := monthsByPrefix[strings.ToLower(m[2])[:3]]
	if !ok {
		return nil
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return nil
	}

	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		if m[5] != "" {
			minute, _ = strconv.Atoi(m[5])
		}
		if strings.EqualFold(m[6], "PM") && hour < 12 {
			hour += 12
		}
		if strings.EqualFold(m[6], "AM") && hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return nil
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	return &t
}

var numericDateTimeRe = regexp.MustCompile(
	`\b(\d{4})[/\-.](\d{1,2})[/\-.](\d{1,2})(?:[ T](\d{1,2}):(\d{2}))?`)

// ExtractNumericDateTime finds the first "YYYY[/-.]MM[/-.]DD[ T HH:MM]"
// occurrence in s
func ExtractNumericDateTime(s string, loc *time.Location) *time.Time {
	m := numericDateTimeRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}

	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
	}
	if hour > 23 || minute > 59 {
		return nil
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	return &t
}

// TimeOfDay is a wall-clock time without a date
type TimeOfDay struct {
	Hour   int
	Minute int
}

// On anchors the time of day to the date part of d in location loc
func (t TimeOfDay) On(d time.Time, loc *time.Location) time.Time {
	local := d.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), t.Hour, t.Minute, 0, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeRange is a start/end pair of wall-clock times
type TimeRange struct {
	Start TimeOfDay
	End   TimeOfDay
}

var timeRangeRe = regexp.MustCompile(
	`\b(\d{1,2})[:.hH](\d{2})\s*[-\x{2013}]\s*(\d{1,2})[:.hH](\d{2})`)

// ExtractTimeRange finds the first "HH:MM - HH:MM" range in s. The separator
// may be an ASCII hyphen or an en-dash, and : . h H all work as hour/minute
// separators.
func ExtractTimeRange(s string) *TimeRange {
	m := timeRangeRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	sh, _ := strconv.Atoi(m[1])
	sm, _ := strconv.Atoi(m[2])
	eh, _ := strconv.Atoi(m[3])
	em, _ := strconv.Atoi(m[4])
	if sh > 23 || eh > 23 || sm > 59 || em > 59 {
		return nil
	}

	return &TimeRange{
		Start: TimeOfDay{Hour: sh, Minute: sm},
		End:   TimeOfDay{Hour: eh, Minute: em},
	}
}

var emailRe = regexp.MustCompile(`(?i)\b[A-Z0-9._%+\-]+@[A-Z0-9.\-]+\.[A-Z]{2,}\b`)

// ExtractEmails returns the de-duplicated, lowercased email addresses found
// in s, in order of first appearance
func ExtractEmails(s string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, match := range emailRe.FindAllString(s, -1) {
		email := strings.ToLower(match)
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

var urlRe = regexp.MustCompile(`https?://[^\s"'<>()\[\]]+`)

// ExtractURLs returns the de-duplicated URLs found in s, in order of first
// appearance. Trailing sentence punctuation is stripped.
func ExtractURLs(s string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, match := range urlRe.FindAllString(s, -1) {
		u := strings.TrimRight(match, ".,;:")
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// South African phone numbers: 0XX XXX XXXX or +27 XX XXX XXXX with optional
// separators.
var phoneRe = regexp.MustCompile(`(?:\+27[\s\-]?\d{2}|0\d{2})[\s\-]?\d{3}[\s\-]?\d{4}\b`)

// ExtractPhone returns the first South-African-style phone number in s
func ExtractPhone(s string) *string {
	match := phoneRe.FindString(s)
	if match == "" {
		return nil
	}
	phone := SquashWhitespace(match)
	return &phone
}
