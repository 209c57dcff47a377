package schema

import (
	"time"
)

// Contact represents the contacts table - tender contact points. Like
// documents, contacts are owned by their tender and replaced on re-ingest.
type Contact struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TenderID  int64     `gorm:"column:tender_id;not null;index"`
	Name      *string   `gorm:"column:name;type:text"`
	Email     *string   `gorm:"column:email;type:text"`
	Phone     *string   `gorm:"column:phone;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Tender Tender `gorm:"foreignKey:TenderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Contact model
func (Contact) TableName() string {
	return "contacts"
}
