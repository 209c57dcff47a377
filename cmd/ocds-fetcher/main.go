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

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/config"
	"github.com/satenders/tender-indexer/internal/fetcher"
	"github.com/satenders/tender-indexer/internal/logger"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	once       = flag.Bool("once", false, "Run a single crawl and exit instead of consuming continuation messages")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadOCDSFetcherConfig(*configFile, *envPath)
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
			"service": "ocds-fetcher",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting OCDS fetcher")

	objectStore, err := adapter.NewObjectStore(ctx, adapter.ObjectStoreConfig{
		Region:       cfg.ObjectStore.Region,
		BaseEndpoint: cfg.ObjectStore.Endpoint,
		AccessKey:    cfg.ObjectStore.AccessKey,
		SecretKey:    cfg.ObjectStore.SecretKey,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create object store client", zap.Error(err))
	}

	f, err := fetcher.NewFetcher(fetcher.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		ConsumerName:   cfg.NATS.ConsumerName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: "ocds-fetcher",
		AckWaitTimeout: cfg.NATS.AckWait,
		MaxDeliver:     cfg.NATS.MaxDeliver,
		BaseURL:        cfg.Fetcher.BaseURL,
		Bucket:         cfg.ObjectStore.Bucket,
		PageSize:       cfg.Fetcher.PageSize,
		StartPage:      cfg.Fetcher.StartPage,
		MaxPage:        cfg.Fetcher.MaxPage,
		DateFrom:       cfg.Fetcher.DateFrom,
		DateTo:         cfg.Fetcher.DateTo,
		Throttle:       cfg.Fetcher.Throttle,
		Concurrent:     cfg.Fetcher.Concurrent,
		TimeBudget:     cfg.Fetcher.TimeBudget,
		BudgetCutoff:   cfg.Fetcher.BudgetCutoff,
	}, adapter.NewNatsJetStream(), adapter.NewHTTPClient(cfg.Fetcher.HTTPTimeout), objectStore, adapter.NewJSON(), adapter.NewClock())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create fetcher", zap.Error(err))
	}
	defer f.Close()

	if *once {
		summary, err := f.Crawl(ctx)
		if err != nil {
			logger.FatalCtx(ctx, "Crawl failed", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Crawl finished",
			zap.Int("pagesSaved", summary.PagesSaved),
			zap.Ints("failedPages", summary.FailedPages),
			zap.Bool("continued", summary.Continued))
		return
	}

	// Consumer mode: start with a crawl from the configured page, then keep
	// consuming continuation messages so long runs pick up where they left off
	errCh := make(chan error, 1)
	go func() {
		if _, err := f.Crawl(ctx); err != nil {
			errCh <- err
			return
		}
		errCh <- f.Run(ctx)
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
			logger.ErrorCtx(ctx, err, zap.String("component", "fetcher"))
		}
	}

	logger.Info("OCDS fetcher stopped")
}
