package rest

import (
	"encoding/json"
	"time"

	"github.com/satenders/tender-indexer/internal/store/schema"
)

// TenderSummary is the list-view shape of a tender
type TenderSummary struct {
	ID          int64      `json:"id"`
	SourceID    int64      `json:"source_id"`
	ExternalID  string     `json:"external_id"`
	Title       *string    `json:"title"`
	Category    *string    `json:"category"`
	Status      *string    `json:"status"`
	Buyer       *string    `json:"buyer"`
	Location    *string    `json:"location"`
	PublishedAt *time.Time `json:"published_at"`
	ClosingAt   *time.Time `json:"closing_at"`
	URL         *string    `json:"url"`
}

// TenderDetail is the full tender record with children embedded
type TenderDetail struct {
	TenderSummary

	SourceTenderID           *string    `json:"source_tender_id"`
	Description              *string    `json:"description"`
	ProcurementMethod        *string    `json:"procurement_method"`
	ProcurementMethodDetails *string    `json:"procurement_method_details"`
	TenderType               *string    `json:"tender_type"`
	BriefingAt               *time.Time `json:"briefing_at"`
	TenderStartAt            *time.Time `json:"tender_start_at"`
	BriefingVenue            *string    `json:"briefing_venue"`
	BriefingCompulsory       *bool      `json:"briefing_compulsory"`
	BriefingDetails          *string    `json:"briefing_details"`
	ValueAmount              *float64   `json:"value_amount"`
	ValueCurrency            *string    `json:"value_currency"`
	TenderBoxAddress         *string    `json:"tender_box_address"`
	TargetAudience           *string    `json:"target_audience"`
	ContractType             *string    `json:"contract_type"`
	ProjectType              *string    `json:"project_type"`
	QueriesTo                *string    `json:"queries_to"`
	LastSeenAt               time.Time  `json:"last_seen_at"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`

	Documents []DocumentDTO `json:"documents"`
	Contacts  []ContactDTO  `json:"contacts"`
}

// DocumentDTO is the API shape of a tender attachment
type DocumentDTO struct {
	ID          int64      `json:"id"`
	URL         string     `json:"url"`
	Name        *string    `json:"name"`
	MimeType    *string    `json:"mime_type"`
	PublishedAt *time.Time `json:"published_at"`
}

// ContactDTO is the API shape of a tender contact
type ContactDTO struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// ChangeDTO is the API shape of one ingest audit entry
type ChangeDTO struct {
	Cursor     int64           `json:"cursor"`
	ChangeType string          `json:"change_type"`
	ChangedAt  time.Time       `json:"changed_at"`
	Meta       json.RawMessage `json:"meta"`
}

// ListTendersResponse is the paginated list envelope
type ListTendersResponse struct {
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	Results []TenderSummary `json:"results"`
}

// PreferencesRequest is the body of POST /user/preferences
type PreferencesRequest struct {
	Email      string   `json:"email" binding:"required,email"`
	Categories []string `json:"categories" binding:"required"`
}

// PreferencesResponse confirms a preference replacement
type PreferencesResponse struct {
	UserID     int64    `json:"user_id"`
	Categories []string `json:"categories"`
}

func toTenderSummary(t *schema.Tender) TenderSummary {
	return TenderSummary{
		ID:          t.ID,
		SourceID:    t.SourceID,
		ExternalID:  t.ExternalID,
		Title:       t.Title,
		Category:    t.Category,
		Status:      t.Status,
		Buyer:       t.Buyer,
		Location:    t.Location,
		PublishedAt: t.PublishedAt,
		ClosingAt:   t.ClosingAt,
		URL:         t.URL,
	}
}

func toTenderDetail(t *schema.Tender, documents []*schema.Document, contacts []*schema.Contact) TenderDetail {
	detail := TenderDetail{
		TenderSummary:            toTenderSummary(t),
		SourceTenderID:           t.SourceTenderID,
		Description:              t.Description,
		ProcurementMethod:        t.ProcurementMethod,
		ProcurementMethodDetails: t.ProcurementMethodDetails,
		TenderType:               t.TenderType,
		BriefingAt:               t.BriefingAt,
		TenderStartAt:            t.TenderStartAt,
		BriefingVenue:            t.BriefingVenue,
		BriefingCompulsory:       t.BriefingCompulsory,
		BriefingDetails:          t.BriefingDetails,
		ValueAmount:              t.ValueAmount,
		ValueCurrency:            t.ValueCurrency,
		TenderBoxAddress:         t.TenderBoxAddress,
		TargetAudience:           t.TargetAudience,
		ContractType:             t.ContractType,
		ProjectType:              t.ProjectType,
		QueriesTo:                t.QueriesTo,
		LastSeenAt:               t.LastSeenAt,
		CreatedAt:                t.CreatedAt,
		UpdatedAt:                t.UpdatedAt,
		Documents:                make([]DocumentDTO, 0, len(documents)),
		Contacts:                 make([]ContactDTO, 0, len(contacts)),
	}

	for _, d := range documents {
		detail.Documents = append(detail.Documents, toDocumentDTO(d))
	}
	for _, c := range contacts {
		detail.Contacts = append(detail.Contacts, toContactDTO(c))
	}
	return detail
}

func toDocumentDTO(d *schema.Document) DocumentDTO {
	return DocumentDTO{
		ID:          d.ID,
		URL:         d.URL,
		Name:        d.Name,
		MimeType:    d.MimeType,
		PublishedAt: d.PublishedAt,
	}
}

func toContactDTO(c *schema.Contact) ContactDTO {
	return ContactDTO{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
	}
}

func toChangeDTO(ch *schema.ChangesJournal) ChangeDTO {
	return ChangeDTO{
		Cursor:     ch.Cursor,
		ChangeType: string(ch.ChangeType),
		ChangedAt:  ch.ChangedAt,
		Meta:       json.RawMessage(ch.Meta),
	}
}
