package textparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextualDateTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{
			name:  "closing line with time",
			input: "CLOSING DATE: 20 August 2025 12:00",
			want:  timePtr(time.Date(2025, 8, 20, 12, 0, 0, 0, sast)),
		},
		{
			name:  "date only defaults to midnight",
			input: "ISSUE DATE: 1 July 2025",
			want:  timePtr(time.Date(2025, 7, 1, 0, 0, 0, 0, sast)),
		},
		{
			name:  "abbreviated month",
			input: "closing 15 Aug 2025 14h30 sharp",
			want:  timePtr(time.Date(2025, 8, 15, 14, 30, 0, 0, sast)),
		},
		{
			name:  "at separator with pm",
			input: "submissions close 3 September 2025 at 11 AM",
			want:  timePtr(time.Date(2025, 9, 3, 11, 0, 0, 0, sast)),
		},
		{
			name:  "pm converts to 24h",
			input: "due 5 June 2025 @ 2:30 PM",
			want:  timePtr(time.Date(2025, 6, 5, 14, 30, 0, 0, sast)),
		},
		{
			name:  "range keeps the first time",
			input: "BRIEFING SESSION: 14 August 2025 13:00-14:00",
			want:  timePtr(time.Date(2025, 8, 14, 13, 0, 0, 0, sast)),
		},
		{name: "no date", input: "no tender here", want: nil},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTextualDateTime(tt.input, sast)
			assertSameInstant(t, tt.want, got)
		})
	}
}

func TestExtractNumericDateTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{
			name:  "slash date with time",
			input: "valid until 2025/08/20 12:30",
			want:  timePtr(time.Date(2025, 8, 20, 12, 30, 0, 0, sast)),
		},
		{
			name:  "dash date without time",
			input: "issued 2025-07-01",
			want:  timePtr(time.Date(2025, 7, 1, 0, 0, 0, 0, sast)),
		},
		{
			name:  "dot date with T separator",
			input: "2025.06.15T09:00",
			want:  timePtr(time.Date(2025, 6, 15, 9, 0, 0, 0, sast)),
		},
		{name: "month out of range", input: "2025/13/01", want: nil},
		{name: "no match", input: "20 August 2025", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractNumericDateTime(tt.input, sast)
			assertSameInstant(t, tt.want, got)
		})
	}
}

func TestExtractTimeRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *TimeRange
	}{
		{
			name:  "colon separated ascii hyphen",
			input: "13:00-14:00",
			want:  &TimeRange{Start: TimeOfDay{13, 0}, End: TimeOfDay{14, 0}},
		},
		{
			name:  "en dash with spaces",
			input: "briefing 10h00 – 11h30 at the hall",
			want:  &TimeRange{Start: TimeOfDay{10, 0}, End: TimeOfDay{11, 30}},
		},
		{
			name:  "dot separated",
			input: "09.00 - 10.00",
			want:  &TimeRange{Start: TimeOfDay{9, 0}, End: TimeOfDay{10, 0}},
		},
		{name: "single time is not a range", input: "closes at 12:00", want: nil},
		{name: "invalid hour", input: "25:00-26:00", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTimeRange(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayOn(t *testing.T) {
	date := time.Date(2025, 8, 14, 23, 59, 0, 0, sast)
	got := TimeOfDay{Hour: 13, Minute: 30}.On(date, sast)
	assert.Equal(t, time.Date(2025, 8, 14, 13, 30, 0, 0, sast), got)
	assert.Equal(t, "13:30", TimeOfDay{13, 30}.String())
}

func TestExtractEmails(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single",
			input: "Queries: jane@example.co.za",
			want:  []string{"jane@example.co.za"},
		},
		{
			name:  "uppercase accepted and lowercased",
			input: "EMAIL JANE@EXAMPLE.CO.ZA or jane@example.co.za",
			want:  []string{"jane@example.co.za"},
		},
		{
			name:  "multiple in order",
			input: "a@x.org, b@y.net and again a@x.org",
			want:  []string{"a@x.org", "b@y.net"},
		},
		{name: "none", input: "no contact details", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEmails(tt.input))
		})
	}
}

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "dedup and trailing punctuation",
			input: "see https://example.com/doc.pdf. also https://example.com/doc.pdf",
			want:  []string{"https://example.com/doc.pdf"},
		},
		{
			name:  "query strings survive",
			input: "download https://portal.example/DownloadAll?id=X today",
			want:  []string{"https://portal.example/DownloadAll?id=X"},
		},
		{name: "none", input: "nothing linked", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractURLs(tt.input))
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{name: "local format", input: "call 011 555 1234 for info", want: strPtr("011 555 1234")},
		{name: "international", input: "tel +27 11 555 1234", want: strPtr("+27 11 555 1234")},
		{name: "none", input: "no phone", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPhone(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestSquashWhitespace(t *testing.T) {
	assert.Equal(t, "scope text", SquashWhitespace("  scope   text  "))
	assert.Equal(t, "a b c", SquashWhitespace("a\n b\t\tc"))
	assert.Equal(t, "", SquashWhitespace("   \n\t "))
}

func TestCleanHTMLish(t *testing.T) {
	assert.Equal(t, "a & b < c > d", CleanHTMLish("a &amp; b &lt; c &gt; d"))
	assert.Equal(t, "x y", SquashWhitespace(CleanHTMLish("x&nbsp;y")))
	assert.Equal(t, "x y", SquashWhitespace(CleanHTMLish("x y")))
}

func TestNullableText(t *testing.T) {
	assert.Nil(t, NullableText("  &nbsp;  "))
	got := NullableText("  scope   text ")
	require.NotNil(t, got)
	assert.Equal(t, "scope text", *got)
}

func TestGuessVenueFromLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{
			name:  "keyword line returned verbatim",
			input: "Boardroom B, 12 Main Road",
			want:  strPtr("Boardroom B, 12 Main Road"),
		},
		{
			name:  "lowercase at prefix",
			input: "briefing at the municipal square, Polokwane",
			want:  strPtr("the municipal square, Polokwane"),
		},
		{name: "at with short tail", input: "meet at 9am", want: nil},
		{name: "nothing venue-like", input: "compulsory briefing session", want: nil},
		{name: "empty", input: "   ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GuessVenueFromLine(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func strPtr(s string) *string {
	return &s
}
