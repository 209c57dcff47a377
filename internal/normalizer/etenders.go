package normalizer

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/textparse"
)

const etendersDownloadBase = "https://www.etenders.gov.za/Home/Download/?blobName="

// etendersPage is the page envelope. The scraper drops `data` arrays; raw
// pages persisted by the OCDS fetcher carry `releases` instead. Whichever
// is present wins.
type etendersPage struct {
	Data     []etendersRecord `json:"data"`
	Releases []ocdsRelease    `json:"releases"`
}

type etendersRecord struct {
	ID                 int64               `json:"id"`
	TenderNo           string              `json:"tender_No"`
	Type               string              `json:"type"`
	Category           string              `json:"category"`
	Description        string              `json:"description"`
	Province           string              `json:"province"`
	Organ              string              `json:"organ_of_State"`
	Status             string              `json:"status"`
	DatePublished      string              `json:"datePublished"`
	ClosingDate        string              `json:"closing_Date"`
	BriefingDate       string              `json:"briefingSession"`
	BriefingCompulsory string              `json:"compulsory_briefing_session"`
	BriefingVenue      string              `json:"briefingVenue"`
	ContactPerson      string              `json:"contactPerson"`
	Email              string              `json:"email"`
	Telephone          string              `json:"telephone"`
	Fax                string              `json:"fax"`
	PlaceServices      string              `json:"placeServicesRequired"`
	SupportDocuments   []etendersSupportDoc `json:"supportDocument"`
}

type etendersSupportDoc struct {
	SupportDocumentID string `json:"supportDocumentID"`
	FileName          string `json:"fileName"`
	ExtractedFiles    string `json:"extractedFiles"`
}

// ocdsRelease is the subset of an OCDS release this pipeline reads
type ocdsRelease struct {
	OCID   string     `json:"ocid"`
	Date   string     `json:"date"`
	Tender ocdsTender `json:"tender"`
	Buyer  ocdsEntity `json:"buyer"`
}

type ocdsTender struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Status          string         `json:"status"`
	MainCategory    string         `json:"mainProcurementCategory"`
	MethodDetails   string         `json:"procurementMethodDetails"`
	TenderPeriod    ocdsPeriod     `json:"tenderPeriod"`
	ProcuringEntity ocdsEntity     `json:"procuringEntity"`
	Value           ocdsValue      `json:"value"`
	Documents       []ocdsDocument `json:"documents"`
	ContactPoint    ocdsContact    `json:"contactPoint"`
}

type ocdsValue struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

type ocdsPeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type ocdsEntity struct {
	Name string `json:"name"`
}

type ocdsDocument struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Format string `json:"format"`
}

type ocdsContact struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}

type etendersNormalizer struct {
	loc    *time.Location
	json   adapter.JSON
	hasher hasher
}

// NewEtenders creates the eTenders OCDS normalizer
func NewEtenders(loc *time.Location, jsonAdapter adapter.JSON, h hasher) Normalizer {
	return &etendersNormalizer{loc: loc, json: jsonAdapter, hasher: h}
}

func (n *etendersNormalizer) Source() domain.Source {
	return domain.SourceEtenders
}

func (n *etendersNormalizer) Normalize(raw []byte) ([]domain.Item, error) {
	var page etendersPage
	if err := n.json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if len(page.Data) == 0 && len(page.Releases) > 0 {
		return n.normalizeReleases(page.Releases)
	}

	items := make([]domain.Item, 0, len(page.Data))
	for _, rec := range page.Data {
		externalID := textparse.CleanText(rec.TenderNo)
		if externalID == "" {
			continue
		}

		var sourceTenderID *string
		if rec.ID != 0 {
			id := strconv.FormatInt(rec.ID, 10)
			sourceTenderID = &id
		}

		tender := domain.Tender{
			ExternalID:         externalID,
			SourceTenderID:     sourceTenderID,
			Title:              textparse.NullableText(rec.Description),
			Description:        textparse.NullableText(rec.Description),
			Category:           textparse.NullableText(rec.Category),
			Location:           textparse.NullableText(firstNonEmpty(rec.Province, rec.PlaceServices)),
			Buyer:              textparse.NullableText(rec.Organ),
			Status:             textparse.NullableText(rec.Status),
			TenderType:         textparse.NullableText(rec.Type),
			PublishedAt:        textparse.ParseISO(rec.DatePublished, n.loc),
			ClosingAt:          textparse.ParseISO(rec.ClosingDate, n.loc),
			BriefingAt:         textparse.ParseISO(rec.BriefingDate, n.loc),
			BriefingVenue:      textparse.NullableText(rec.BriefingVenue),
			BriefingCompulsory: yesNo(rec.BriefingCompulsory),
		}

		hash, err := n.hasher.Sum(map[string]interface{}{
			"source":      string(domain.SourceEtenders),
			"externalId":  tender.ExternalID,
			"title":       tender.Title,
			"description": tender.Description,
			"category":    tender.Category,
			"location":    tender.Location,
			"buyer":       tender.Buyer,
			"status":      tender.Status,
			"publishedAt": isoOrNil(tender.PublishedAt),
			"closingAt":   isoOrNil(tender.ClosingAt),
			"briefingAt":  isoOrNil(tender.BriefingAt),
		})
		if err != nil {
			return nil, err
		}
		tender.Hash = hash

		var documents []domain.Document
		for _, doc := range rec.SupportDocuments {
			blob := textparse.CleanText(doc.SupportDocumentID)
			if blob == "" {
				continue
			}
			// The API hands out a blob id, not a URL; the download endpoint
			// dereferences it
			url := etendersDownloadBase + blob
			mime := mimeFromExtension(path.Ext(doc.FileName))
			documents = append(documents, domain.Document{
				URL:      url,
				Name:     textparse.NullableText(doc.FileName),
				MimeType: mime,
			})
		}

		if contact := n.buildContact(rec); contact != nil {
			items = append(items, domain.Item{Tender: tender, Documents: documents, Contacts: []domain.Contact{*contact}})
		} else {
			items = append(items, domain.Item{Tender: tender, Documents: documents})
		}
	}

	return items, nil
}

// normalizeReleases handles the raw OCDS page bodies the fetcher persists.
// The tender block inside each release carries the same semantic fields as
// the scraper shape under different names.
func (n *etendersNormalizer) normalizeReleases(releases []ocdsRelease) ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(releases))
	for _, rel := range releases {
		externalID := textparse.CleanText(rel.Tender.ID)
		if externalID == "" {
			continue
		}

		buyer := firstNonEmpty(rel.Buyer.Name, rel.Tender.ProcuringEntity.Name)

		tender := domain.Tender{
			ExternalID:               externalID,
			SourceTenderID:           textparse.NullableText(rel.OCID),
			Title:                    textparse.NullableText(rel.Tender.Title),
			Description:              textparse.NullableText(rel.Tender.Description),
			Category:                 textparse.NullableText(rel.Tender.MainCategory),
			Buyer:                    textparse.NullableText(buyer),
			Status:                   textparse.NullableText(rel.Tender.Status),
			ProcurementMethodDetails: textparse.NullableText(rel.Tender.MethodDetails),
			PublishedAt:              textparse.ParseISO(rel.Date, n.loc),
			TenderStartAt:            textparse.ParseISO(rel.Tender.TenderPeriod.StartDate, n.loc),
			ClosingAt:                textparse.ParseISO(rel.Tender.TenderPeriod.EndDate, n.loc),
			ValueAmount:              rel.Tender.Value.Amount,
			ValueCurrency:            textparse.NullableText(rel.Tender.Value.Currency),
		}

		hash, err := n.hasher.Sum(map[string]interface{}{
			"source":      string(domain.SourceEtenders),
			"externalId":  tender.ExternalID,
			"title":       tender.Title,
			"description": tender.Description,
			"category":    tender.Category,
			"location":    tender.Location,
			"buyer":       tender.Buyer,
			"status":      tender.Status,
			"publishedAt": isoOrNil(tender.PublishedAt),
			"closingAt":   isoOrNil(tender.ClosingAt),
			"briefingAt":  isoOrNil(tender.BriefingAt),
		})
		if err != nil {
			return nil, err
		}
		tender.Hash = hash

		var documents []domain.Document
		for _, doc := range rel.Tender.Documents {
			url := textparse.CleanText(doc.URL)
			if url == "" {
				continue
			}
			mime := textparse.NullableText(doc.Format)
			if mime == nil {
				mime = mimeFromURL(url)
			}
			documents = append(documents, domain.Document{
				URL:      url,
				Name:     textparse.NullableText(doc.Title),
				MimeType: mime,
			})
		}

		item := domain.Item{Tender: tender, Documents: documents}
		cp := rel.Tender.ContactPoint
		name := textparse.NullableText(cp.Name)
		email := textparse.NullableText(cp.Email)
		phone := textparse.NullableText(cp.Telephone)
		if name != nil || email != nil || phone != nil {
			item.Contacts = []domain.Contact{{Name: name, Email: email, Phone: phone}}
		}

		items = append(items, item)
	}

	return items, nil
}

// buildContact folds the flat contact columns into one contact; fax is kept
// only when no telephone is present
func (n *etendersNormalizer) buildContact(rec etendersRecord) *domain.Contact {
	name := textparse.NullableText(rec.ContactPerson)
	email := textparse.NullableText(rec.Email)
	phone := textparse.NullableText(rec.Telephone)
	if phone == nil {
		phone = textparse.NullableText(rec.Fax)
	}
	if name == nil && email == nil && phone == nil {
		return nil
	}
	return &domain.Contact{Name: name, Email: email, Phone: phone}
}

func yesNo(s string) *bool {
	switch strings.ToLower(textparse.CleanText(s)) {
	case "yes", "true":
		b := true
		return &b
	case "no", "false":
		b := false
		return &b
	}
	return nil
}
