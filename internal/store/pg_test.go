package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/store/schema"
)

var (
	testDB      *gorm.DB
	pgContainer *postgres.PostgresContainer
)

// TestMain sets up the test database before running tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	// An external database can be supplied for CI or local development
	dbHost := os.Getenv("TEST_DB_HOST")

	var dsn string
	var err error

	if dbHost != "" {
		dbPort := envOr("TEST_DB_PORT", "5432")
		dbUser := envOr("TEST_DB_USER", "postgres")
		dbPassword := envOr("TEST_DB_PASSWORD", "postgres")
		dbName := envOr("TEST_DB_NAME", "test_db")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPassword, dbName)
	} else {
		pgContainer, err = postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("test_db"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			fmt.Printf("Failed to start PostgreSQL container: %v\n", err)
			os.Exit(1)
		}

		dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Printf("Failed to get connection string: %v\n", err)
			terminateContainer(ctx)
			os.Exit(1)
		}
	}

	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		terminateContainer(ctx)
		os.Exit(1)
	}

	if err := initializeTestDatabase(testDB); err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		terminateContainer(ctx)
		os.Exit(1)
	}

	code := m.Run()

	terminateContainer(ctx)
	os.Exit(code)
}

func terminateContainer(ctx context.Context) {
	if pgContainer != nil {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// initializeTestDatabase runs the schema initialization SQL
func initializeTestDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	schemaPath := filepath.Join("..", "..", "db", "init_pg_db.sql")
	schemaSQL, err := os.ReadFile(schemaPath) //nolint:gosec,G304
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := sqlDB.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// initPGTestDB returns a fresh store. Data tables are truncated after each
// test; the seeded sources reference rows stay.
func initPGTestDB(t *testing.T) Store {
	t.Helper()
	require.NotNil(t, testDB, "test database not initialized")

	t.Cleanup(func() {
		err := testDB.Exec("TRUNCATE tenders, documents, contacts, changes_journal, users, user_preferences RESTART IDENTITY CASCADE").Error
		require.NoError(t, err)
	})

	return NewPGStore(testDB)
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func testItem(externalID string) domain.Item {
	closing := time.Date(2025, 11, 15, 10, 0, 0, 0, time.UTC)
	return domain.Item{
		Tender: domain.Tender{
			ExternalID:  externalID,
			Title:       strPtr("Supply of transformers"),
			Description: strPtr("scope text"),
			Category:    strPtr("Goods"),
			ClosingAt:   timePtr(closing),
			Hash:        "hash-" + externalID,
		},
		Documents: []domain.Document{
			{URL: "https://example.com/" + externalID + ".pdf", MimeType: strPtr("application/pdf")},
		},
		Contacts: []domain.Contact{
			{Name: strPtr("J. Doe"), Email: strPtr("j.doe@example.com")},
		},
	}
}

func TestUpsertTenderBatchInsert(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	results, err := s.UpsertTenderBatch(ctx, domain.SourceEskom, []domain.Item{
		testItem("T-1"),
		testItem("T-2"),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	tender, err := s.GetTenderByID(ctx, results[0].TenderID)
	require.NoError(t, err)
	require.NotNil(t, tender)
	assert.Equal(t, "T-1", tender.ExternalID)
	assert.Equal(t, "hash-T-1", tender.Hash)
	assert.False(t, tender.LastSeenAt.IsZero())

	documents, err := s.GetTenderDocuments(ctx, results[0].TenderID)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "https://example.com/T-1.pdf", documents[0].URL)

	contacts, err := s.GetTenderContacts(ctx, results[0].TenderID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.NotNil(t, contacts[0].Email)
	assert.Equal(t, "j.doe@example.com", *contacts[0].Email)
}

func TestUpsertReingestUnchanged(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	first, err := s.UpsertTenderBatch(ctx, domain.SourceEskom, []domain.Item{testItem("T-1")})
	require.NoError(t, err)
	require.Len(t, first, 1)

	before, err := s.GetTenderByID(ctx, first[0].TenderID)
	require.NoError(t, err)
	require.NotNil(t, before)

	time.Sleep(50 * time.Millisecond)

	second, err := s.UpsertTenderBatch(ctx, domain.SourceEskom, []domain.Item{testItem("T-1")})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].TenderID, second[0].TenderID)

	var count int64
	require.NoError(t, testDB.Model(&schema.Tender{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	after, err := s.GetTenderByID(ctx, second[0].TenderID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, before.Hash, after.Hash)
	assert.True(t, after.LastSeenAt.After(before.LastSeenAt),
		"last_seen_at must advance on re-ingest: before=%v after=%v", before.LastSeenAt, after.LastSeenAt)
}

func TestUpsertReplacesChildren(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	_, err := s.UpsertTenderBatch(ctx, domain.SourceEskom, []domain.Item{testItem("T-1")})
	require.NoError(t, err)

	changed := testItem("T-1")
	changed.Documents = []domain.Document{{URL: "https://example.com/NewZip"}}
	changed.Contacts = nil

	results, err := s.UpsertTenderBatch(ctx, domain.SourceEskom, []domain.Item{changed})
	require.NoError(t, err)
	require.Len(t, results, 1)

	documents, err := s.GetTenderDocuments(ctx, results[0].TenderID)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "https://example.com/NewZip", documents[0].URL)

	contacts, err := s.GetTenderContacts(ctx, results[0].TenderID)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestTenderChangesJournal(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	first, err := s.UpsertTenderBatch(ctx, domain.SourceEskom, []domain.Item{testItem("T-1")})
	require.NoError(t, err)
	require.Len(t, first, 1)
	tenderID := first[0].TenderID

	changes, err := s.GetTenderChanges(ctx, tenderID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, schema.ChangeTypeCreated, changes[0].ChangeType)
	assert.JSONEq(t, `{"newHash":"hash-T-1"}`, string(changes[0].Meta))

	// Unchanged re-ingest leaves the journal alone
	_, err = s.UpsertTenderBatch(ctx, domain.SourceEskom, []domain.Item{testItem("T-1")})
	require.NoError(t, err)

	changes, err = s.GetTenderChanges(ctx, tenderID)
	require.NoError(t, err)
	assert.Len(t, changes, 1)

	// A hash change appends an update entry, newest first
	changed := testItem("T-1")
	changed.Tender.Title = strPtr("Supply of transformers (amended)")
	changed.Tender.Hash = "hash-T-1-v2"
	_, err = s.UpsertTenderBatch(ctx, domain.SourceEskom, []domain.Item{changed})
	require.NoError(t, err)

	changes, err = s.GetTenderChanges(ctx, tenderID)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, schema.ChangeTypeUpdated, changes[0].ChangeType)
	assert.JSONEq(t, `{"oldHash":"hash-T-1","newHash":"hash-T-1-v2"}`, string(changes[0].Meta))
	assert.Equal(t, schema.ChangeTypeCreated, changes[1].ChangeType)
}

func TestUpsertSameExternalIDAcrossSources(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	_, err := s.UpsertTenderBatch(ctx, domain.SourceEskom, []domain.Item{testItem("T-1")})
	require.NoError(t, err)
	_, err = s.UpsertTenderBatch(ctx, domain.SourceSanral, []domain.Item{testItem("T-1")})
	require.NoError(t, err)

	// Dedup is per source; the same reference on two portals is two rows
	var count int64
	require.NoError(t, testDB.Model(&schema.Tender{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestListTenders(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	early := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	items := []domain.Item{
		{Tender: domain.Tender{ExternalID: "A", Title: strPtr("Road resurfacing project"), Category: strPtr("Civils"), ClosingAt: timePtr(late), Hash: "h1"}},
		{Tender: domain.Tender{ExternalID: "B", Title: strPtr("Transformer maintenance"), Category: strPtr("Goods"), ClosingAt: timePtr(early), Hash: "h2"}},
		{Tender: domain.Tender{ExternalID: "C", Title: strPtr("Security services"), Category: strPtr("Services"), Hash: "h3"}},
	}
	_, err := s.UpsertTenderBatch(ctx, domain.SourceEskom, items)
	require.NoError(t, err)
	_, err = s.UpsertTenderBatch(ctx, domain.SourceSanral, []domain.Item{
		{Tender: domain.Tender{ExternalID: "D", Title: strPtr("Bridge rehabilitation"), Category: strPtr("Civils"), ClosingAt: timePtr(early), Hash: "h4"}},
	})
	require.NoError(t, err)

	t.Run("no filters sorts by closing_at with nulls last", func(t *testing.T) {
		tenders, total, err := s.ListTenders(ctx, TenderQuery{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, tenders, 4)
		// Ascending close dates, the undated row last
		assert.Nil(t, tenders[3].ClosingAt)
	})

	t.Run("source filter", func(t *testing.T) {
		src := domain.SourceSanral
		tenders, total, err := s.ListTenders(ctx, TenderQuery{Source: &src, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, tenders, 1)
		assert.Equal(t, "D", tenders[0].ExternalID)
	})

	t.Run("category filter", func(t *testing.T) {
		tenders, total, err := s.ListTenders(ctx, TenderQuery{Category: strPtr("Civils"), Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, tenders, 2)
	})

	t.Run("full text search", func(t *testing.T) {
		tenders, total, err := s.ListTenders(ctx, TenderQuery{Text: strPtr("transformer"), Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, tenders, 1)
		assert.Equal(t, "B", tenders[0].ExternalID)
	})

	t.Run("closing window", func(t *testing.T) {
		after := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
		tenders, total, err := s.ListTenders(ctx, TenderQuery{ClosingAfter: &after, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, tenders, 1)
		assert.Equal(t, "A", tenders[0].ExternalID)
	})

	t.Run("pagination keeps total", func(t *testing.T) {
		tenders, total, err := s.ListTenders(ctx, TenderQuery{SortBy: "id", Order: SortAsc, Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, tenders, 2)
	})

	t.Run("unsupported sort column rejected", func(t *testing.T) {
		_, _, err := s.ListTenders(ctx, TenderQuery{SortBy: "hash", Limit: 10})
		require.Error(t, err)
	})
}

func TestGetTenderByIDMissing(t *testing.T) {
	s := initPGTestDB(t)

	tender, err := s.GetTenderByID(context.Background(), 999999)
	require.NoError(t, err)
	assert.Nil(t, tender)
}

func TestUserPreferences(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	user := schema.User{Email: "sam@example.co.za"}
	require.NoError(t, testDB.Create(&user).Error)

	require.NoError(t, s.ReplaceUserPreferences(ctx, user.ID, []string{"Civils", "goods", "GOODS", " "}))

	categories, err := s.GetUserPreferences(ctx, user.ID)
	require.NoError(t, err)
	// Lowercased, de-duplicated, blanks dropped
	assert.Equal(t, []string{"civils", "goods"}, categories)

	require.NoError(t, s.ReplaceUserPreferences(ctx, user.ID, []string{"services"}))
	categories, err = s.GetUserPreferences(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"services"}, categories)

	found, err := s.GetUserByEmail(ctx, "sam@example.co.za")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := s.GetUserByEmail(ctx, "nobody@example.co.za")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
