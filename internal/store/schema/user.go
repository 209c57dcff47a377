package schema

import (
	"time"
)

// User represents the users table - notification subscribers identified by
// email
type User struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Email     string    `gorm:"column:email;not null;uniqueIndex;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Preferences []UserPreference `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// UserPreference represents the user_preferences table - one row per
// category a user wants notifications for
type UserPreference struct {
	UserID int64 `gorm:"column:user_id;primaryKey"`
	// TenderCategory is the lowercased category token the user subscribed to
	TenderCategory string `gorm:"column:tender_category;primaryKey;type:text"`

	// Associations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the UserPreference model
func (UserPreference) TableName() string {
	return "user_preferences"
}
