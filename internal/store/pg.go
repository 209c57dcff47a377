package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/logger"
	"github.com/satenders/tender-indexer/internal/store/schema"
)

// tenderMutableColumns are the columns rewritten by the canonical upsert.
// Identity columns (source_id, external_id) and created_at stay untouched.
var tenderMutableColumns = []string{
	"source_tender_id",
	"title",
	"description",
	"category",
	"location",
	"buyer",
	"procurement_method",
	"procurement_method_details",
	"status",
	"tender_type",
	"published_at",
	"briefing_at",
	"tender_start_at",
	"closing_at",
	"briefing_venue",
	"briefing_compulsory",
	"briefing_details",
	"value_amount",
	"value_currency",
	"tender_box_address",
	"target_audience",
	"contract_type",
	"project_type",
	"queries_to",
	"url",
	"hash",
}

// sortColumns is the allow-list for ListTenders ordering
var sortColumns = map[string]struct{}{
	"closing_at":   {},
	"published_at": {},
	"id":           {},
}

type pgStore struct {
	db *gorm.DB

	// Source rows are static reference data; resolve once per instance
	sourceMu  sync.Mutex
	sourceIDs map[domain.Source]int64
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{
		db:        db,
		sourceIDs: make(map[domain.Source]int64),
	}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults: 20 open, 5 idle,
// 5 minute lifetime, 10 minute idle time.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// resolveSourceID returns the database id for a source name, creating the
// reference row on first sight and caching the result for the instance
// lifetime
func (s *pgStore) resolveSourceID(ctx context.Context, tx *gorm.DB, source domain.Source) (int64, error) {
	s.sourceMu.Lock()
	if id, ok := s.sourceIDs[source]; ok {
		s.sourceMu.Unlock()
		return id, nil
	}
	s.sourceMu.Unlock()

	row := schema.Source{Name: source.String()}
	if err := tx.WithContext(ctx).Where("name = ?", source.String()).
		FirstOrCreate(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to resolve source %q: %w", source, err)
	}

	s.sourceMu.Lock()
	s.sourceIDs[source] = row.ID
	s.sourceMu.Unlock()

	return row.ID, nil
}

// UpsertTenderBatch writes one batch of items in a single transaction
func (s *pgStore) UpsertTenderBatch(ctx context.Context, source domain.Source, items []domain.Item) ([]UpsertResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var results []UpsertResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sourceID, err := s.resolveSourceID(ctx, tx, source)
		if err != nil {
			return err
		}

		for i, item := range items {
			savepoint := fmt.Sprintf("sp_item_%d", i)
			tx.SavePoint(savepoint)

			tenderID, err := s.upsertItem(tx, sourceID, item)
			if err != nil {
				// One bad row must not sink the batch; roll back to the
				// savepoint and move on
				tx.RollbackTo(savepoint)
				logger.ErrorCtx(ctx, err,
					zap.String("source", source.String()),
					zap.String("external_id", item.Tender.ExternalID))
				continue
			}

			results = append(results, UpsertResult{TenderID: tenderID, Item: item})
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert tender batch: %w", err)
	}

	return results, nil
}

// upsertItem runs the canonical upsert for one item and replaces its child
// rows. Runs inside the batch transaction.
func (s *pgStore) upsertItem(tx *gorm.DB, sourceID int64, item domain.Item) (int64, error) {
	t := item.Tender

	// The prior hash decides whether this ingest gets a journal entry
	var prior schema.Tender
	priorFound := true
	if err := tx.Select("id", "hash").
		Where("source_id = ? AND external_id = ?", sourceID, t.ExternalID).
		First(&prior).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("failed to look up prior tender: %w", err)
		}
		priorFound = false
	}

	row := schema.Tender{
		SourceID:                 sourceID,
		ExternalID:               t.ExternalID,
		SourceTenderID:           t.SourceTenderID,
		Title:                    t.Title,
		Description:              t.Description,
		Category:                 t.Category,
		Location:                 t.Location,
		Buyer:                    t.Buyer,
		ProcurementMethod:        t.ProcurementMethod,
		ProcurementMethodDetails: t.ProcurementMethodDetails,
		Status:                   t.Status,
		TenderType:               t.TenderType,
		PublishedAt:              t.PublishedAt,
		BriefingAt:               t.BriefingAt,
		TenderStartAt:            t.TenderStartAt,
		ClosingAt:                t.ClosingAt,
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
		URL:                      t.URL,
		Hash:                     t.Hash,
	}

	// ON CONFLICT (source_id, external_id) DO UPDATE SET <all mutable
	// columns> plus last_seen_at = now(), RETURNING id
	assignments := clause.AssignmentColumns(tenderMutableColumns)
	assignments = append(assignments,
		clause.Assignment{Column: clause.Column{Name: "last_seen_at"}, Value: gorm.Expr("now()")},
		clause.Assignment{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("now()")},
	)

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}, {Name: "external_id"}},
		DoUpdates: assignments,
	}).Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to upsert tender: %w", err)
	}
	if row.ID == 0 {
		return 0, errors.New("upsert returned no tender id")
	}

	switch {
	case !priorFound:
		if err := journalChange(tx, row.ID, schema.ChangeTypeCreated, "", t.Hash); err != nil {
			return 0, err
		}
	case prior.Hash != t.Hash:
		if err := journalChange(tx, row.ID, schema.ChangeTypeUpdated, prior.Hash, t.Hash); err != nil {
			return 0, err
		}
	}

	// Children are owned by the ingest: replace them wholesale so removed
	// attachments disappear
	if err := tx.Where("tender_id = ?", row.ID).Delete(&schema.Document{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete stale documents: %w", err)
	}
	if err := tx.Where("tender_id = ?", row.ID).Delete(&schema.Contact{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete stale contacts: %w", err)
	}

	if len(item.Documents) > 0 {
		docs := make([]schema.Document, 0, len(item.Documents))
		for _, d := range item.Documents {
			docs = append(docs, schema.Document{
				TenderID:    row.ID,
				URL:         d.URL,
				Name:        d.Name,
				MimeType:    d.MimeType,
				PublishedAt: d.PublishedAt,
			})
		}
		if err := tx.Create(&docs).Error; err != nil {
			return 0, fmt.Errorf("failed to insert documents: %w", err)
		}
	}

	if len(item.Contacts) > 0 {
		contacts := make([]schema.Contact, 0, len(item.Contacts))
		for _, c := range item.Contacts {
			contacts = append(contacts, schema.Contact{
				TenderID: row.ID,
				Name:     c.Name,
				Email:    c.Email,
				Phone:    c.Phone,
			})
		}
		if err := tx.Create(&contacts).Error; err != nil {
			return 0, fmt.Errorf("failed to insert contacts: %w", err)
		}
	}

	return row.ID, nil
}

// changeMeta is the jsonb payload stored alongside each journal entry
type changeMeta struct {
	OldHash string `json:"oldHash,omitempty"`
	NewHash string `json:"newHash"`
}

// journalChange appends one audit row for a created or materially changed
// tender. Runs inside the batch transaction.
func journalChange(tx *gorm.DB, tenderID int64, changeType schema.ChangeType, oldHash, newHash string) error {
	meta, err := json.Marshal(changeMeta{OldHash: oldHash, NewHash: newHash})
	if err != nil {
		return fmt.Errorf("failed to marshal change meta: %w", err)
	}

	entry := schema.ChangesJournal{
		TenderID:   tenderID,
		ChangeType: changeType,
		Meta:       datatypes.JSON(meta),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to journal change: %w", err)
	}
	return nil
}

// GetTenderChanges retrieves the audit trail for a tender, newest first
func (s *pgStore) GetTenderChanges(ctx context.Context, tenderID int64) ([]*schema.ChangesJournal, error) {
	var changes []*schema.ChangesJournal
	err := s.db.WithContext(ctx).
		Where("tender_id = ?", tenderID).
		Order("\"cursor\" DESC").
		Find(&changes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tender changes: %w", err)
	}
	return changes, nil
}

// ListTenders returns a page of tenders plus the total count matching the
// query
func (s *pgStore) ListTenders(ctx context.Context, q TenderQuery) ([]*schema.Tender, int64, error) {
	db := s.db.WithContext(ctx).Model(&schema.Tender{})

	if q.Source != nil {
		sourceID, err := s.resolveSourceID(ctx, s.db, *q.Source)
		if err != nil {
			return nil, 0, err
		}
		db = db.Where("source_id = ?", sourceID)
	}
	if q.Category != nil {
		db = db.Where("category = ?", *q.Category)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.Buyer != nil {
		db = db.Where("buyer = ?", *q.Buyer)
	}
	if q.Text != nil {
		db = db.Where(
			"to_tsvector('english', coalesce(title, '') || ' ' || coalesce(description, '')) @@ plainto_tsquery('english', ?)",
			*q.Text)
	}
	if q.ClosingAfter != nil {
		db = db.Where("closing_at >= ?", *q.ClosingAfter)
	}
	if q.ClosingBefore != nil {
		db = db.Where("closing_at <= ?", *q.ClosingBefore)
	}
	if q.PublishedAfter != nil {
		db = db.Where("published_at >= ?", *q.PublishedAfter)
	}
	if q.PublishedBefore != nil {
		db = db.Where("published_at <= ?", *q.PublishedBefore)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tenders: %w", err)
	}

	order, err := buildOrderClause(q.SortBy, q.Order)
	if err != nil {
		return nil, 0, err
	}

	var tenders []*schema.Tender
	if err := db.Order(order).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&tenders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tenders: %w", err)
	}

	return tenders, total, nil
}

// buildOrderClause validates the sort column against the allow-list and
// renders the ORDER BY expression. Nullable sort columns sort NULLS LAST and
// id breaks ties so pagination stays stable.
func buildOrderClause(sortBy string, order SortOrder) (string, error) {
	if sortBy == "" {
		sortBy = "closing_at"
	}
	if _, ok := sortColumns[sortBy]; !ok {
		return "", fmt.Errorf("unsupported sort column %q", sortBy)
	}

	dir := "ASC"
	if order == SortDesc {
		dir = "DESC"
	}

	if sortBy == "id" {
		return fmt.Sprintf("id %s", dir), nil
	}
	return fmt.Sprintf("%s %s NULLS LAST, id %s", sortBy, dir, dir), nil
}

// GetTenderByID retrieves a tender by database id
func (s *pgStore) GetTenderByID(ctx context.Context, id int64) (*schema.Tender, error) {
	var tender schema.Tender
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&tender).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tender: %w", err)
	}
	return &tender, nil
}

// GetTenderDocuments retrieves the documents attached to a tender
func (s *pgStore) GetTenderDocuments(ctx context.Context, tenderID int64) ([]*schema.Document, error) {
	var documents []*schema.Document
	err := s.db.WithContext(ctx).
		Where("tender_id = ?", tenderID).
		Order("id ASC").
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tender documents: %w", err)
	}
	return documents, nil
}

// GetTenderContacts retrieves the contacts attached to a tender
func (s *pgStore) GetTenderContacts(ctx context.Context, tenderID int64) ([]*schema.Contact, error) {
	var contacts []*schema.Contact
	err := s.db.WithContext(ctx).
		Where("tender_id = ?", tenderID).
		Order("id ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tender contacts: %w", err)
	}
	return contacts, nil
}

// GetUserByEmail retrieves a user by email
func (s *pgStore) GetUserByEmail(ctx context.Context, email string) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserPreferences retrieves the categories a user subscribed to
func (s *pgStore) GetUserPreferences(ctx context.Context, userID int64) ([]string, error) {
	var categories []string
	err := s.db.WithContext(ctx).
		Model(&schema.UserPreference{}).
		Where("user_id = ?", userID).
		Order("tender_category ASC").
		Pluck("tender_category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user preferences: %w", err)
	}
	return categories, nil
}

// ReplaceUserPreferences replaces a user's category subscriptions in one
// transaction
func (s *pgStore) ReplaceUserPreferences(ctx context.Context, userID int64, categories []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&schema.UserPreference{}).Error; err != nil {
			return fmt.Errorf("failed to clear preferences: %w", err)
		}

		if len(categories) == 0 {
			return nil
		}

		rows := make([]schema.UserPreference, 0, len(categories))
		seen := make(map[string]struct{}, len(categories))
		for _, category := range categories {
			c := strings.ToLower(strings.TrimSpace(category))
			if c == "" {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			rows = append(rows, schema.UserPreference{UserID: userID, TenderCategory: c})
		}
		if len(rows) == 0 {
			return nil
		}

		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert preferences: %w", err)
		}
		return nil
	})
}
