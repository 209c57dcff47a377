package normalizer

import (
	"fmt"
	"time"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/textparse"
)

// eskomRecord is the flat shape produced by the Eskom bulletin scraper
type eskomRecord struct {
	TenderID       string `json:"TenderID"`
	EnquiryNumber  string `json:"enquiryNumber"`
	Title          string `json:"title"`
	Dt             string `json:"dt"`
	ScopeDetails   string `json:"scopeDetails"`
	TenderBox      string `json:"tenderBox"`
	TargetAudience string `json:"targetAudience"`
	Published      string `json:"published"`
	Closing        string `json:"closing"`
	SiteMeeting    string `json:"siteMeeting"`
	ReadMore       string `json:"readMore"`
	DownloadLink   string `json:"downloadLink"`
}

type eskomNormalizer struct {
	loc    *time.Location
	json   adapter.JSON
	hasher hasher
}

// NewEskom creates the Eskom normalizer
func NewEskom(loc *time.Location, jsonAdapter adapter.JSON, h hasher) Normalizer {
	return &eskomNormalizer{loc: loc, json: jsonAdapter, hasher: h}
}

func (n *eskomNormalizer) Source() domain.Source {
	return domain.SourceEskom
}

func (n *eskomNormalizer) Normalize(raw []byte) ([]domain.Item, error) {
	var records []eskomRecord
	if err := n.json.Unmarshal(raw, &records); err != nil {
		// A single record object is also accepted
		var one eskomRecord
		if err2 := n.json.Unmarshal(raw, &one); err2 != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
		}
		records = []eskomRecord{one}
	}

	items := make([]domain.Item, 0, len(records))
	for _, rec := range records {
		externalID := textparse.CleanText(rec.TenderID)
		if externalID == "" {
			continue
		}

		tender := domain.Tender{
			ExternalID:       externalID,
			SourceTenderID:   textparse.NullableText(rec.EnquiryNumber),
			Title:            textparse.NullableText(rec.Title),
			Description:      textparse.NullableText(rec.ScopeDetails),
			Category:         textparse.NullableText(rec.Dt),
			Location:         textparse.NullableText(rec.TenderBox),
			TenderBoxAddress: textparse.NullableText(rec.TenderBox),
			TargetAudience:   textparse.NullableText(rec.TargetAudience),
			PublishedAt:      textparse.ParseEskomDate(rec.Published, n.loc),
			ClosingAt:        textparse.ParseEskomDate(rec.Closing, n.loc),
			BriefingAt:       textparse.ParseEskomDate(rec.SiteMeeting, n.loc),
			URL:              textparse.NullableText(rec.ReadMore),
		}

		hash, err := n.hasher.Sum(map[string]interface{}{
			"source":      string(domain.SourceEskom),
			"externalId":  tender.ExternalID,
			"title":       tender.Title,
			"description": tender.Description,
			"category":    tender.Category,
			"location":    tender.Location,
			"publishedAt": isoOrNil(tender.PublishedAt),
			"closingAt":   isoOrNil(tender.ClosingAt),
			"briefingAt":  isoOrNil(tender.BriefingAt),
			"download":    textparse.CleanText(rec.DownloadLink),
		})
		if err != nil {
			return nil, err
		}
		tender.Hash = hash

		var documents []domain.Document
		if link := textparse.CleanText(rec.DownloadLink); link != "" {
			documents = append(documents, domain.Document{
				URL:      link,
				MimeType: mimeFromURL(link),
			})
		}

		items = append(items, domain.Item{Tender: tender, Documents: documents})
	}

	return items, nil
}
