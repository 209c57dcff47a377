package schema

import (
	"time"
)

// Document represents the documents table - tender attachments. Rows are
// fully owned by their tender and replaced wholesale on re-ingest.
type Document struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	TenderID int64  `gorm:"column:tender_id;not null;index"`
	URL      string `gorm:"column:url;not null;type:text"`
	// Name is the portal's display name for the file
	Name        *string    `gorm:"column:name;type:text"`
	MimeType    *string    `gorm:"column:mime_type;type:text"`
	PublishedAt *time.Time `gorm:"column:published_at;type:timestamptz"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Tender Tender `gorm:"foreignKey:TenderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Document model
func (Document) TableName() string {
	return "documents"
}
