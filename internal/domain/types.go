package domain

import (
	"strings"
	"time"
)

// Source identifies the originating tender portal
type Source string

const (
	// SourceEskom is the Eskom tender bulletin
	SourceEskom Source = "eskom"
	// SourceSanral is the SANRAL projects portal
	SourceSanral Source = "sanral"
	// SourceTransnet is the Transnet tender portal
	SourceTransnet Source = "transnet"
	// SourceEtenders is the national eTenders OCDS API
	SourceEtenders Source = "etenders"
)

// Valid reports whether the source is one of the known portals
func (s Source) Valid() bool {
	switch s {
	case SourceEskom, SourceSanral, SourceTransnet, SourceEtenders:
		return true
	}
	return false
}

func (s Source) String() string {
	return string(s)
}

// SourceFromKey derives the source from an object store key prefix
// (eskom/, sanral/, transnet/, etenders/). Returns false for unknown prefixes.
func SourceFromKey(key string) (Source, bool) {
	prefix, _, found := strings.Cut(key, "/")
	if !found {
		return "", false
	}
	s := Source(strings.ToLower(prefix))
	return s, s.Valid()
}

// ObjectCreatedEvent is the queue payload emitted when a raw payload lands
// in the object store
type ObjectCreatedEvent struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Tender is the canonical normalized tender record
type Tender struct {
	ExternalID     string
	SourceTenderID *string

	Title                    *string
	Description              *string
	Category                 *string
	Location                 *string
	Buyer                    *string
	ProcurementMethod        *string
	ProcurementMethodDetails *string
	Status                   *string
	TenderType               *string

	PublishedAt   *time.Time
	BriefingAt    *time.Time
	TenderStartAt *time.Time
	ClosingAt     *time.Time

	BriefingVenue      *string
	BriefingCompulsory *bool
	BriefingDetails    *string

	ValueAmount   *float64
	ValueCurrency *string

	TenderBoxAddress *string
	TargetAudience   *string
	ContractType     *string
	ProjectType      *string
	QueriesTo        *string
	URL              *string

	Hash string
}

// Document is a tender attachment reference
type Document struct {
	URL         string
	Name        *string
	MimeType    *string
	PublishedAt *time.Time
}

// Contact is a tender contact point
type Contact struct {
	Name  *string
	Email *string
	Phone *string
}

// Item is the output of a source normalizer: one tender with its fully
// owned child collections
type Item struct {
	Tender    Tender
	Documents []Document
	Contacts  []Contact
}

// TenderNotification is the message published per upserted tender
type TenderNotification struct {
	MessageID   string     `json:"messageId"`
	Subject     string     `json:"subject"`
	TenderID    int64      `json:"tenderId"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at"`
	ClosingAt   *time.Time `json:"closing_at"`
	URL         *string    `json:"url"`
	Description string     `json:"description"`
}
