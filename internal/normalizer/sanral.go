package normalizer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/textparse"
)

// sanralRecord carries short metadata plus the free-text detail prose the
// portal renders; everything interesting lives in the prose
type sanralRecord struct {
	Reference     string        `json:"reference"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Region        string        `json:"region"`
	QueriesTo     string        `json:"queriesTo"`
	URL           string        `json:"url"`
	DatePublished string        `json:"datePublished"`
	Details       sanralDetails `json:"details"`
}

type sanralDetails struct {
	RawText    string   `json:"rawText"`
	Paragraphs []string `json:"paragraphs"`
}

var (
	sanralClosingRe    = regexp.MustCompile(`CLOSING\s+(DATE|TIME)`)
	sanralBriefingRe   = regexp.MustCompile(`BRIEFING`)
	sanralIssueRe      = regexp.MustCompile(`ISSUE\s+DATE`)
	sanralCompletionRe = regexp.MustCompile(`COMPLETION\s+AND\s+DELIVERY`)
	sanralAddressRe    = regexp.MustCompile(`(?i)at the offices of|delivered to|address|offices of`)
)

type sanralNormalizer struct {
	loc    *time.Location
	json   adapter.JSON
	hasher hasher
}

// NewSanral creates the SANRAL normalizer
func NewSanral(loc *time.Location, jsonAdapter adapter.JSON, h hasher) Normalizer {
	return &sanralNormalizer{loc: loc, json: jsonAdapter, hasher: h}
}

func (n *sanralNormalizer) Source() domain.Source {
	return domain.SourceSanral
}

func (n *sanralNormalizer) Normalize(raw []byte) ([]domain.Item, error) {
	var records []sanralRecord
	if err := n.json.Unmarshal(raw, &records); err != nil {
		var one sanralRecord
		if err2 := n.json.Unmarshal(raw, &one); err2 != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
		}
		records = []sanralRecord{one}
	}

	items := make([]domain.Item, 0, len(records))
	for _, rec := range records {
		externalID := textparse.CleanText(rec.Reference)
		if externalID == "" {
			continue
		}
		items = append(items, n.normalizeRecord(rec, externalID))
	}

	// Hashing is the only fallible step and it runs on the assembled items
	for i := range items {
		t := &items[i].Tender
		hash, err := n.hasher.Sum(map[string]interface{}{
			"source":            string(domain.SourceSanral),
			"externalId":        t.ExternalID,
			"title":             t.Title,
			"description":       t.Description,
			"location":          t.Location,
			"publishedAt":       isoOrNil(t.PublishedAt),
			"closingAt":         isoOrNil(t.ClosingAt),
			"briefingAt":        isoOrNil(t.BriefingAt),
			"tenderStartAt":     isoOrNil(t.TenderStartAt),
			"briefingVenue":     t.BriefingVenue,
			"submissionAddress": t.TenderBoxAddress,
		})
		if err != nil {
			return nil, err
		}
		t.Hash = hash
	}

	return items, nil
}

func (n *sanralNormalizer) normalizeRecord(rec sanralRecord, externalID string) domain.Item {
	lines := proseLines(rec.Details)
	prose := parseSanralProse(lines, n.loc)

	tender := domain.Tender{
		ExternalID:         externalID,
		Title:              textparse.NullableText(rec.Title),
		Description:        n.chooseDescription(rec, lines),
		Category:           textparse.NullableText(rec.Category),
		Location:           textparse.NullableText(rec.Region),
		QueriesTo:          textparse.NullableText(rec.QueriesTo),
		URL:                textparse.NullableText(rec.URL),
		PublishedAt:        n.parsePublished(rec.DatePublished),
		ClosingAt:          prose.closingAt,
		BriefingAt:         prose.briefingAt,
		TenderStartAt:      prose.issueAt,
		BriefingVenue:      prose.briefingVenue,
		BriefingCompulsory: prose.briefingCompulsory,
		BriefingDetails:    prose.briefingDetails,
		TenderBoxAddress:   prose.submissionAddress,
	}

	var documents []domain.Document
	linkText := rec.Details.RawText + " " + rec.QueriesTo
	for _, u := range textparse.ExtractURLs(linkText) {
		if !isDocumentURL(u) {
			continue
		}
		documents = append(documents, domain.Document{
			URL:      u,
			MimeType: mimeFromURL(u),
		})
	}

	var contacts []domain.Contact
	contactText := rec.QueriesTo + " " + rec.Details.RawText
	phone := textparse.ExtractPhone(contactText)
	for _, email := range textparse.ExtractEmails(contactText) {
		e := email
		contacts = append(contacts, domain.Contact{Email: &e, Phone: phone})
	}

	return domain.Item{Tender: tender, Documents: documents, Contacts: contacts}
}

func (n *sanralNormalizer) parsePublished(s string) *time.Time {
	if t := textparse.ParseISO(s, n.loc); t != nil {
		return t
	}
	return textparse.ExtractNumericDateTime(s, n.loc)
}

// chooseDescription prefers the full prose over the portal's short
// description when the short form looks truncated
func (n *sanralNormalizer) chooseDescription(rec sanralRecord, lines []string) *string {
	short := textparse.CleanText(rec.Description)
	full := textparse.CleanText(strings.Join(lines, " "))

	if short == "" {
		if full == "" {
			return nil
		}
		return &full
	}
	if full != "" && looksTruncated(short) {
		return &full
	}
	return &short
}

func looksTruncated(s string) bool {
	return strings.HasSuffix(s, "…") ||
		strings.HasSuffix(s, "...") ||
		strings.Contains(s, "&n") ||
		len(s) < 80
}

// proseLines merges the raw text lines with the paragraph list, cleaned and
// with empties dropped
func proseLines(details sanralDetails) []string {
	var lines []string
	for _, line := range strings.Split(details.RawText, "\n") {
		if cleaned := textparse.CleanText(line); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	for _, p := range details.Paragraphs {
		if cleaned := textparse.CleanText(p); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines
}

// sanralProse is the result of running the line extractors over the detail
// prose
type sanralProse struct {
	closingAt          *time.Time
	briefingAt         *time.Time
	issueAt            *time.Time
	briefingVenue      *string
	briefingCompulsory *bool
	briefingDetails    *string
	submissionAddress  *string
}

func parseSanralProse(lines []string, loc *time.Location) sanralProse {
	var out sanralProse
	closingIdx, briefingIdx, issueIdx, completionIdx := -1, -1, -1, -1

	for i, line := range lines {
		upper := strings.ToUpper(line)
		if closingIdx < 0 && sanralClosingRe.MatchString(upper) {
			closingIdx = i
		}
		if briefingIdx < 0 && sanralBriefingRe.MatchString(upper) {
			briefingIdx = i
		}
		if issueIdx < 0 && sanralIssueRe.MatchString(upper) {
			issueIdx = i
		}
		if completionIdx < 0 && sanralCompletionRe.MatchString(upper) {
			completionIdx = i
		}
	}

	if closingIdx >= 0 {
		line := lines[closingIdx]
		date := dateOnLine(line, loc)
		if date != nil {
			// A range on the closing line means the deadline is the end of
			// the window
			if r := textparse.ExtractTimeRange(line); r != nil {
				t := r.End.On(*date, loc)
				out.closingAt = &t
			} else {
				out.closingAt = date
			}
		}
	}

	if briefingIdx >= 0 {
		line := lines[briefingIdx]
		date := dateOnLine(line, loc)
		if r := textparse.ExtractTimeRange(line); r != nil && date != nil {
			// The briefing starts at the beginning of the window; the end is
			// worth keeping but only as detail text
			t := r.Start.On(*date, loc)
			out.briefingAt = &t
			note := fmt.Sprintf("Briefing window ends at %s", r.End)
			out.briefingDetails = &note
		} else {
			out.briefingAt = date
		}

		upper := strings.ToUpper(line)
		compulsory := strings.Contains(upper, "COMPULSORY") && !strings.Contains(upper, "NON-COMPULSORY")
		out.briefingCompulsory = &compulsory
	}

	if issueIdx >= 0 {
		out.issueAt = dateOnLine(lines[issueIdx], loc)
	}

	for _, line := range lines {
		if textparse.HasVenueKeyword(line) {
			venue := line
			out.briefingVenue = &venue
			break
		}
	}
	if out.briefingVenue == nil && briefingIdx >= 0 {
		out.briefingVenue = textparse.GuessVenueFromLine(lines[briefingIdx])
	}

	if completionIdx >= 0 {
		out.submissionAddress = extractSubmissionAddress(lines, completionIdx)
	}

	return out
}

// extractSubmissionAddress scans the ten lines after the completion/delivery
// heading for an address marker and joins it with up to five following lines
func extractSubmissionAddress(lines []string, completionIdx int) *string {
	limit := completionIdx + 1 + 10
	if limit > len(lines) {
		limit = len(lines)
	}
	for j := completionIdx + 1; j < limit; j++ {
		if !sanralAddressRe.MatchString(lines[j]) {
			continue
		}
		end := j + 6
		if end > len(lines) {
			end = len(lines)
		}
		addr := strings.Join(lines[j:end], ", ")
		return &addr
	}
	return nil
}

// dateOnLine tries the textual date grammar first, then the numeric one
func dateOnLine(line string, loc *time.Location) *time.Time {
	if t := textparse.ExtractTextualDateTime(line, loc); t != nil {
		return t
	}
	return textparse.ExtractNumericDateTime(line, loc)
}
