package textparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultOffset is the local offset applied to portal timestamps that carry
// no zone of their own (South African Standard Time).
const DefaultOffset = "+02:00"

// LocationFromOffset builds a fixed-zone location from an offset string such
// as "+02:00". Unparseable offsets fall back to DefaultOffset.
func LocationFromOffset(offset string) *time.Location {
	loc, ok := parseOffset(offset)
	if !ok {
		loc, _ = parseOffset(DefaultOffset)
	}
	return loc
}

func parseOffset(offset string) (*time.Location, bool) {
	s := strings.TrimSpace(offset)
	if s == "" {
		return nil, false
	}
	sign := 1
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	}
	hh, mm, found := strings.Cut(s, ":")
	if !found {
		mm = "0"
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h > 14 {
		return nil, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m > 59 {
		return nil, false
	}
	secs := sign * (h*3600 + m*60)
	return time.FixedZone(fmt.Sprintf("UTC%s%s", map[int]string{1: "+", -1: "-"}[sign], offset[1:]), secs), true
}

// parseLayouts tries each layout in order with ParseInLocation
func parseLayouts(s string, loc *time.Location, layouts ...string) *time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return &t
		}
	}
	return nil
}

// ParseEskomDate parses the Eskom bulletin format "2025-Oct-01 09:00:00"
func ParseEskomDate(s string, loc *time.Location) *time.Time {
	return parseLayouts(s, loc, "2006-Jan-02 15:04:05", "2006-Jan-02 15:04")
}

// ParseSanralNumericDate parses the SANRAL format "2025/08/20 12:00[:00]"
func ParseSanralNumericDate(s string, loc *time.Location) *time.Time {
	return parseLayouts(s, loc, "2006/01/02 15:04:05", "2006/01/02 15:04")
}

// ParseTransnetDate parses the Transnet format "12/12/2025 4:00:00 PM".
// Single-digit day and month are tolerated and the meridiem is
// case-insensitive.
func ParseTransnetDate(s string, loc *time.Location) *time.Time {
	upper := strings.ToUpper(strings.TrimSpace(s))
	return parseLayouts(upper, loc, "1/2/2006 3:04:05 PM", "1/2/2006 3:04 PM")
}

// ParseISO parses OCDS timestamps: RFC 3339, or zone-less ISO forms which
// take the configured local offset
func ParseISO(s string, loc *time.Location) *time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &t
	}
	return parseLayouts(trimmed, loc, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02")
}
