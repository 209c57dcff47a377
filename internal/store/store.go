package store

import (
	"context"
	"time"

	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/store/schema"
)

// UpsertResult reports one successfully upserted tender
type UpsertResult struct {
	// TenderID is the database id of the inserted or updated row
	TenderID int64
	// Item is the normalized item that produced the row
	Item domain.Item
}

// SortOrder is the sort direction for list queries
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TenderQuery is the filter surface of the list endpoint. All filters are
// conjunctive; nil/zero values mean "no constraint".
type TenderQuery struct {
	Source   *domain.Source
	Category *string
	Status   *string
	Buyer    *string
	// Text is matched against title and description with Postgres full-text
	// search
	Text *string

	ClosingAfter    *time.Time
	ClosingBefore   *time.Time
	PublishedAfter  *time.Time
	PublishedBefore *time.Time

	// SortBy must be one of closing_at, published_at, id
	SortBy string
	Order  SortOrder

	Limit  int
	Offset int
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// UpsertTenderBatch writes one batch of normalized items for a source in
	// a single transaction. Each row runs under a savepoint so one bad row
	// cannot poison the batch; failed rows are logged and omitted from the
	// result. Child documents and contacts are replaced wholesale.
	UpsertTenderBatch(ctx context.Context, source domain.Source, items []domain.Item) ([]UpsertResult, error)

	// ListTenders returns a page of tenders plus the total count matching
	// the query
	ListTenders(ctx context.Context, q TenderQuery) ([]*schema.Tender, int64, error)
	// GetTenderByID retrieves a tender by database id, nil when absent
	GetTenderByID(ctx context.Context, id int64) (*schema.Tender, error)
	// GetTenderDocuments retrieves the documents attached to a tender
	GetTenderDocuments(ctx context.Context, tenderID int64) ([]*schema.Document, error)
	// GetTenderContacts retrieves the contacts attached to a tender
	GetTenderContacts(ctx context.Context, tenderID int64) ([]*schema.Contact, error)
	// GetTenderChanges retrieves the ingest audit trail for a tender, newest
	// first
	GetTenderChanges(ctx context.Context, tenderID int64) ([]*schema.ChangesJournal, error)

	// GetUserByEmail retrieves a user by email, nil when absent
	GetUserByEmail(ctx context.Context, email string) (*schema.User, error)
	// GetUserPreferences retrieves the categories a user subscribed to
	GetUserPreferences(ctx context.Context, userID int64) ([]string, error)
	// ReplaceUserPreferences replaces a user's category subscriptions
	ReplaceUserPreferences(ctx context.Context, userID int64, categories []string) error
}
