package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ChangeType represents the kind of change recorded for a tender row
type ChangeType string

const (
	// ChangeTypeCreated indicates a tender row was inserted for the first time
	ChangeTypeCreated ChangeType = "created"
	// ChangeTypeUpdated indicates a re-ingest rewrote a tender row with a
	// different canonical hash
	ChangeTypeUpdated ChangeType = "updated"
)

// ChangesJournal represents the changes_journal table - audit log of tender
// rows created or materially changed by ingest. Re-ingests that leave the
// canonical hash unchanged are not journaled.
type ChangesJournal struct {
	// Cursor is an auto-incrementing sequence number for efficient pagination and ordering
	Cursor int64 `gorm:"column:\"cursor\";primaryKey;autoIncrement"`
	// TenderID is the tender row the change applies to
	TenderID int64 `gorm:"column:tender_id;not null;index"`
	// ChangeType identifies whether the row was created or updated
	ChangeType ChangeType `gorm:"column:change_type;not null;type:text"`
	// ChangedAt is the timestamp when the change occurred
	ChangedAt time.Time `gorm:"column:changed_at;not null;default:now();type:timestamptz"`
	// Meta contains the hash transition as JSON
	Meta datatypes.JSON `gorm:"column:meta;type:jsonb"`

	// Associations
	Tender Tender `gorm:"foreignKey:TenderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the ChangesJournal model
func (ChangesJournal) TableName() string {
	return "changes_journal"
}
