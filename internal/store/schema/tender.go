package schema

import (
	"time"
)

// Tender represents the tenders table - the canonical normalized tender
// record. The (source_id, external_id) pair is the idempotency key; every
// re-ingest of the same portal record lands on the same row.
type Tender struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// SourceID references the originating portal
	SourceID int64 `gorm:"column:source_id;not null;uniqueIndex:idx_tenders_source_external"`
	// ExternalID is the portal-assigned reference used for per-source dedup
	ExternalID string `gorm:"column:external_id;not null;type:text;uniqueIndex:idx_tenders_source_external"`
	// SourceTenderID is a secondary portal identifier where one exists
	SourceTenderID *string `gorm:"column:source_tender_id;type:text"`

	Title                    *string `gorm:"column:title;type:text"`
	Description              *string `gorm:"column:description;type:text"`
	Category                 *string `gorm:"column:category;type:text;index"`
	Location                 *string `gorm:"column:location;type:text"`
	Buyer                    *string `gorm:"column:buyer;type:text"`
	ProcurementMethod        *string `gorm:"column:procurement_method;type:text"`
	ProcurementMethodDetails *string `gorm:"column:procurement_method_details;type:text"`
	Status                   *string `gorm:"column:status;type:text"`
	TenderType               *string `gorm:"column:tender_type;type:text"`

	// Timestamps are stored in UTC; inputs without a zone were parsed with
	// the configured local offset
	PublishedAt   *time.Time `gorm:"column:published_at;type:timestamptz;index"`
	BriefingAt    *time.Time `gorm:"column:briefing_at;type:timestamptz"`
	TenderStartAt *time.Time `gorm:"column:tender_start_at;type:timestamptz"`
	ClosingAt     *time.Time `gorm:"column:closing_at;type:timestamptz;index"`

	BriefingVenue      *string `gorm:"column:briefing_venue;type:text"`
	BriefingCompulsory *bool   `gorm:"column:briefing_compulsory"`
	BriefingDetails    *string `gorm:"column:briefing_details;type:text"`

	ValueAmount   *float64 `gorm:"column:value_amount;type:numeric(18,2)"`
	ValueCurrency *string  `gorm:"column:value_currency;type:text"`

	TenderBoxAddress *string `gorm:"column:tender_box_address;type:text"`
	TargetAudience   *string `gorm:"column:target_audience;type:text"`
	ContractType     *string `gorm:"column:contract_type;type:text"`
	ProjectType      *string `gorm:"column:project_type;type:text"`
	QueriesTo        *string `gorm:"column:queries_to;type:text"`
	URL              *string `gorm:"column:url;type:text"`

	// Hash is the SHA-256 of the canonical JSON of the per-source semantic
	// field subset; a change observability aid, not an upsert gate
	Hash string `gorm:"column:hash;not null;type:text"`
	// LastSeenAt advances on every ingest that touches the row, changed or not
	LastSeenAt time.Time `gorm:"column:last_seen_at;not null;default:now();type:timestamptz"`
	// CreatedAt is the timestamp when this record was first ingested
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Documents []Document `gorm:"foreignKey:TenderID;constraint:OnDelete:CASCADE"`
	Contacts  []Contact  `gorm:"foreignKey:TenderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Tender model
func (Tender) TableName() string {
	return "tenders"
}
