package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/satenders/tender-indexer/internal/adapter"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// PasswordParam is a parameter store reference resolved at startup when
	// Password itself is not set
	PasswordParam   string        `mapstructure:"password_param"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	ConsumerName   string        `mapstructure:"consumer_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	AckWait        time.Duration `mapstructure:"ack_wait"`
	MaxDeliver     int           `mapstructure:"max_deliver"`
	// NotifyStreamName is the stream carrying tender notifications
	NotifyStreamName string `mapstructure:"notify_stream_name"`
}

// ObjectStoreConfig holds raw payload storage configuration
type ObjectStoreConfig struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	// Endpoint overrides the S3 endpoint, used for MinIO in development
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// TimezoneConfig holds the local time interpretation for portal timestamps
type TimezoneConfig struct {
	// Offset is applied to portal timestamps that carry no zone, e.g. +02:00
	Offset string `mapstructure:"offset"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string `mapstructure:"jwt_public_key"`
}

// FetcherConfig holds OCDS crawler configuration
type FetcherConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	PageSize     int           `mapstructure:"page_size"`
	StartPage    int           `mapstructure:"start_page"`
	MaxPage      int           `mapstructure:"max_page"`
	DateFrom     string        `mapstructure:"date_from"`
	DateTo       string        `mapstructure:"date_to"`
	Throttle     time.Duration `mapstructure:"throttle"`
	Concurrent   bool          `mapstructure:"concurrent"`
	TimeBudget   time.Duration `mapstructure:"time_budget"`
	BudgetCutoff time.Duration `mapstructure:"budget_cutoff"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
}

// IngestConfig holds ingest worker tuning
type IngestConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Auth       AuthConfig     `mapstructure:"auth"`
}

// IngestWorkerConfig holds configuration for the ingest worker
type IngestWorkerConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	ObjectStore ObjectStoreConfig `mapstructure:"object_store"`
	Timezone    TimezoneConfig    `mapstructure:"timezone"`
	Ingest      IngestConfig      `mapstructure:"ingest"`
}

// OCDSFetcherConfig holds configuration for the OCDS fetcher
type OCDSFetcherConfig struct {
	BaseConfig  `mapstructure:",squash"`
	NATS        NATSConfig        `mapstructure:"nats"`
	ObjectStore ObjectStoreConfig `mapstructure:"object_store"`
	Fetcher     FetcherConfig     `mapstructure:"fetcher"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 120)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadIngestWorkerConfig loads configuration for the ingest worker
func LoadIngestWorkerConfig(configFile string, envPath string) (*IngestWorkerConfig, error) {
	v := configureViper("ingest-worker", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("nats.consumer_name", "ingest-worker")
	v.SetDefault("timezone.offset", "+02:00")
	v.SetDefault("ingest.batch_size", 100)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config IngestWorkerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadOCDSFetcherConfig loads configuration for the OCDS fetcher
func LoadOCDSFetcherConfig(configFile string, envPath string) (*OCDSFetcherConfig, error) {
	v := configureViper("ocds-fetcher", configFile, envPath)

	// Set defaults
	setNATSDefaults(v)
	v.SetDefault("nats.consumer_name", "ocds-fetcher")
	v.SetDefault("fetcher.page_size", 50)
	v.SetDefault("fetcher.start_page", 1)
	v.SetDefault("fetcher.time_budget", "5m")
	v.SetDefault("fetcher.budget_cutoff", "260s")
	v.SetDefault("fetcher.http_timeout", "45s")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config OCDSFetcherConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "10m")
}

func setNATSDefaults(v *viper.Viper) {
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "RAW_OBJECTS")
	v.SetDefault("nats.notify_stream_name", "TENDER_NOTIFICATIONS")
	v.SetDefault("nats.ack_wait", "30s")
	v.SetDefault("nats.max_deliver", 5)
}

// readConfig reads the config file, tolerating its absence
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("TENDERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	// Common config keys
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.password_param",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.notify_stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		// Object store
		"object_store.bucket",
		"object_store.region",
		"object_store.endpoint",
		"object_store.access_key",
		"object_store.secret_key",
		// Timezone
		"timezone.offset",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		// Fetcher
		"fetcher.base_url",
		"fetcher.page_size",
		"fetcher.start_page",
		"fetcher.max_page",
		"fetcher.date_from",
		"fetcher.date_to",
		"fetcher.throttle",
		"fetcher.concurrent",
		"fetcher.time_budget",
		"fetcher.budget_cutoff",
		"fetcher.http_timeout",
		// Ingest
		"ingest.batch_size",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// ResolvePassword fills Password from the parameter store when only a
// parameter reference is configured
func (c *DatabaseConfig) ResolvePassword(ctx context.Context, secrets adapter.Secrets) error {
	if c.Password != "" || c.PasswordParam == "" {
		return nil
	}

	password, err := secrets.GetParameter(ctx, c.PasswordParam)
	if err != nil {
		return fmt.Errorf("failed to resolve database password: %w", err)
	}
	c.Password = password
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
