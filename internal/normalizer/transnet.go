package normalizer

import (
	"fmt"
	"time"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/textparse"
)

// transnetRecord is the listing row; the scraper attaches the detail page as
// a nested details object when it managed to open it
type transnetRecord struct {
	TenderNumber      string           `json:"tenderNumber"`
	Description       string           `json:"description"`
	TenderCategory    string           `json:"tenderCategory"`
	LocationOfService string           `json:"locationOfService"`
	Institution       string           `json:"institution"`
	TenderType        string           `json:"tenderType"`
	DateAdvertised    string           `json:"dateAdvertised"`
	ClosingDate       string           `json:"closingDate"`
	URL               string           `json:"url"`
	Details           *transnetDetails `json:"details"`
}

type transnetDetails struct {
	Description     string             `json:"description"`
	ClosingDate     string             `json:"closingDate"`
	BriefingDate    string             `json:"briefingDate"`
	BriefingVenue   string             `json:"briefingVenue"`
	BriefingDetails string             `json:"briefingDetails"`
	Compulsory      *bool              `json:"compulsoryBriefing"`
	ContactPerson   string             `json:"contactPerson"`
	ContactEmail    string             `json:"contactEmail"`
	ContactPhone    string             `json:"contactPhone"`
	Documents       []transnetDocument `json:"documents"`
}

type transnetDocument struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

type transnetNormalizer struct {
	loc    *time.Location
	json   adapter.JSON
	hasher hasher
}

// NewTransnet creates the Transnet normalizer
func NewTransnet(loc *time.Location, jsonAdapter adapter.JSON, h hasher) Normalizer {
	return &transnetNormalizer{loc: loc, json: jsonAdapter, hasher: h}
}

func (n *transnetNormalizer) Source() domain.Source {
	return domain.SourceTransnet
}

func (n *transnetNormalizer) Normalize(raw []byte) ([]domain.Item, error) {
	var records []transnetRecord
	if err := n.json.Unmarshal(raw, &records); err != nil {
		var one transnetRecord
		if err2 := n.json.Unmarshal(raw, &one); err2 != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
		}
		records = []transnetRecord{one}
	}

	items := make([]domain.Item, 0, len(records))
	for _, rec := range records {
		externalID := textparse.CleanText(rec.TenderNumber)
		if externalID == "" {
			continue
		}

		// The detail page is richer than the listing row; prefer it
		// field by field where the scraper captured it
		details := rec.Details
		if details == nil {
			details = &transnetDetails{}
		}

		description := firstNonEmpty(details.Description, rec.Description)
		closing := firstNonEmpty(details.ClosingDate, rec.ClosingDate)

		tender := domain.Tender{
			ExternalID:         externalID,
			Title:              textparse.NullableText(rec.Description),
			Description:        textparse.NullableText(description),
			Category:           textparse.NullableText(rec.TenderCategory),
			Location:           textparse.NullableText(rec.LocationOfService),
			Buyer:              textparse.NullableText(rec.Institution),
			TenderType:         textparse.NullableText(rec.TenderType),
			PublishedAt:        textparse.ParseTransnetDate(rec.DateAdvertised, n.loc),
			ClosingAt:          textparse.ParseTransnetDate(closing, n.loc),
			BriefingAt:         textparse.ParseTransnetDate(details.BriefingDate, n.loc),
			BriefingVenue:      textparse.NullableText(details.BriefingVenue),
			BriefingDetails:    textparse.NullableText(details.BriefingDetails),
			BriefingCompulsory: details.Compulsory,
			QueriesTo:          textparse.NullableText(details.ContactPerson),
			URL:                textparse.NullableText(rec.URL),
		}

		hash, err := n.hasher.Sum(map[string]interface{}{
			"source":      string(domain.SourceTransnet),
			"externalId":  tender.ExternalID,
			"title":       tender.Title,
			"description": tender.Description,
			"category":    tender.Category,
			"location":    tender.Location,
			"buyer":       tender.Buyer,
			"publishedAt": isoOrNil(tender.PublishedAt),
			"closingAt":   isoOrNil(tender.ClosingAt),
			"briefingAt":  isoOrNil(tender.BriefingAt),
		})
		if err != nil {
			return nil, err
		}
		tender.Hash = hash

		var documents []domain.Document
		for _, doc := range details.Documents {
			url := textparse.CleanText(doc.URL)
			if url == "" {
				// Some detail pages list a file name with no link; there is
				// nothing to store for those
				continue
			}
			mime := textparse.NullableText(doc.MimeType)
			if mime == nil {
				mime = mimeFromURL(url)
			}
			documents = append(documents, domain.Document{
				URL:      url,
				Name:     textparse.NullableText(doc.Name),
				MimeType: mime,
			})
		}

		var contacts []domain.Contact
		if details.ContactPerson != "" || details.ContactEmail != "" {
			contacts = append(contacts, domain.Contact{
				Name:  textparse.NullableText(details.ContactPerson),
				Email: textparse.NullableText(details.ContactEmail),
				Phone: textparse.NullableText(details.ContactPhone),
			})
		}

		items = append(items, domain.Item{Tender: tender, Documents: documents, Contacts: contacts})
	}

	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if textparse.CleanText(v) != "" {
			return v
		}
	}
	return ""
}
