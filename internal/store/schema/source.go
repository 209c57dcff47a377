package schema

// Source represents the sources table - static reference data naming the
// portals the pipeline ingests from
type Source struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Name is the portal identifier (eskom, sanral, transnet, etenders)
	Name string `gorm:"column:name;not null;uniqueIndex;type:text"`
}

// TableName specifies the table name for the Source model
func (Source) TableName() string {
	return "sources"
}
