package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satenders/tender-indexer/internal/mocks"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoadIngestWorkerConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *IngestWorkerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  host: localhost
  port: 5432
  user: tenders
  password: secret
  dbname: tenders
  sslmode: require
nats:
  url: "nats://localhost:4222"
  stream_name: "RAW"
  consumer_name: "worker-1"
object_store:
  bucket: raw-tenders
  region: af-south-1
timezone:
  offset: "+02:00"
ingest:
  batch_size: 50
`,
			validate: func(t *testing.T, cfg *IngestWorkerConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "RAW", cfg.NATS.StreamName)
				assert.Equal(t, "worker-1", cfg.NATS.ConsumerName)
				assert.Equal(t, "raw-tenders", cfg.ObjectStore.Bucket)
				assert.Equal(t, "+02:00", cfg.Timezone.Offset)
				assert.Equal(t, 50, cfg.Ingest.BatchSize)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: tenders
  password: secret
  dbname: tenders
nats:
  url: "nats://localhost:4222"
`,
			validate: func(t *testing.T, cfg *IngestWorkerConfig) {
				// Check defaults
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 20, cfg.Database.MaxOpenConns)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
				assert.Equal(t, "RAW_OBJECTS", cfg.NATS.StreamName)
				assert.Equal(t, "ingest-worker", cfg.NATS.ConsumerName)
				assert.Equal(t, 30*time.Second, cfg.NATS.AckWait)
				assert.Equal(t, 5, cfg.NATS.MaxDeliver)
				assert.Equal(t, "+02:00", cfg.Timezone.Offset)
				assert.Equal(t, 100, cfg.Ingest.BatchSize)
			},
		},
		{
			name: "invalid yaml",
			configFile: `
database:
  port: not-a-number
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfigFile(t, tt.configFile)

			cfg, err := LoadIngestWorkerConfig(configFile, t.TempDir())
			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadAPIConfigFromEnv(t *testing.T) {
	t.Setenv("TENDERS_DATABASE_HOST", "db.internal")
	t.Setenv("TENDERS_DATABASE_USER", "api")
	t.Setenv("TENDERS_SERVER_PORT", "9090")
	t.Setenv("TENDERS_AUTH_JWT_PUBLIC_KEY", "pem-data")

	cfg, err := LoadAPIConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "api", cfg.Database.User)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "pem-data", cfg.Auth.JWTPublicKey)
	// Defaults survive alongside env overrides
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30, cfg.Server.ReadTimeout)
}

func TestLoadOCDSFetcherConfigDefaults(t *testing.T) {
	cfg, err := LoadOCDSFetcherConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Fetcher.PageSize)
	assert.Equal(t, 1, cfg.Fetcher.StartPage)
	assert.Equal(t, 5*time.Minute, cfg.Fetcher.TimeBudget)
	assert.Equal(t, 260*time.Second, cfg.Fetcher.BudgetCutoff)
	assert.Equal(t, 45*time.Second, cfg.Fetcher.HTTPTimeout)
	assert.False(t, cfg.Fetcher.Concurrent)
	assert.Equal(t, "ocds-fetcher", cfg.NATS.ConsumerName)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "tenders",
		Password: "secret",
		DBName:   "tenders",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=tenders password=secret dbname=tenders sslmode=disable",
		cfg.DSN())
}

func TestResolvePassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	secrets := mocks.NewMockSecrets(ctrl)

	t.Run("resolves from parameter store", func(t *testing.T) {
		cfg := DatabaseConfig{PasswordParam: "/tenders/db-password"}
		secrets.EXPECT().
			GetParameter(gomock.Any(), "/tenders/db-password").
			Return("from-ssm", nil)

		require.NoError(t, cfg.ResolvePassword(context.Background(), secrets))
		assert.Equal(t, "from-ssm", cfg.Password)
	})

	t.Run("explicit password wins", func(t *testing.T) {
		cfg := DatabaseConfig{Password: "explicit", PasswordParam: "/tenders/db-password"}
		require.NoError(t, cfg.ResolvePassword(context.Background(), secrets))
		assert.Equal(t, "explicit", cfg.Password)
	})

	t.Run("no reference configured", func(t *testing.T) {
		cfg := DatabaseConfig{}
		require.NoError(t, cfg.ResolvePassword(context.Background(), secrets))
		assert.Empty(t, cfg.Password)
	})
}
