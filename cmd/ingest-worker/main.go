package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/config"
	"github.com/satenders/tender-indexer/internal/ingest"
	"github.com/satenders/tender-indexer/internal/logger"
	"github.com/satenders/tender-indexer/internal/normalizer"
	jsprovider "github.com/satenders/tender-indexer/internal/providers/jetstream"
	"github.com/satenders/tender-indexer/internal/store"
	"github.com/satenders/tender-indexer/internal/textparse"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadIngestWorkerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "ingest-worker",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting tender ingest worker")

	// Resolve database password from the parameter store if referenced
	if cfg.Database.PasswordParam != "" {
		secrets, err := adapter.NewSecrets(ctx, cfg.ObjectStore.Region)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create secrets source", zap.Error(err))
		}
		if err := cfg.Database.ResolvePassword(ctx, secrets); err != nil {
			logger.FatalCtx(ctx, "Failed to resolve database password", zap.Error(err))
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	jcsAdapter := adapter.NewJCS()

	objectStore, err := adapter.NewObjectStore(ctx, adapter.ObjectStoreConfig{
		Region:       cfg.ObjectStore.Region,
		BaseEndpoint: cfg.ObjectStore.Endpoint,
		AccessKey:    cfg.ObjectStore.AccessKey,
		SecretKey:    cfg.ObjectStore.SecretKey,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create object store client", zap.Error(err))
	}

	// Portal timestamps carry no zone; interpret them in the configured
	// local offset
	loc := textparse.LocationFromOffset(cfg.Timezone.Offset)
	registry := normalizer.NewRegistry(loc, jsonAdapter, jcsAdapter)

	// Notification publisher on the notify stream
	pub, err := jsprovider.NewPublisher(jsprovider.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.NotifyStreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: "tender-ingest-publisher",
	}, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create notification publisher", zap.Error(err))
	}
	defer pub.Close()

	// Create the worker
	worker, err := ingest.NewWorker(ingest.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		ConsumerName:   cfg.NATS.ConsumerName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: "tender-ingest-worker",
		AckWaitTimeout: cfg.NATS.AckWait,
		MaxDeliver:     cfg.NATS.MaxDeliver,
		BatchSize:      cfg.Ingest.BatchSize,
	}, adapter.NewNatsJetStream(), objectStore, dataStore, pub, registry, jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create ingest worker", zap.Error(err))
	}
	defer worker.Close()

	// Run until signalled
	errCh := make(chan error, 1)
	go func() {
		errCh <- worker.Run(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err, zap.String("component", "worker"))
		}
	}

	logger.Info("Ingest worker stopped")
}
