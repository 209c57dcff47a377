// Package ingest implements the queue-driven worker that turns raw object
// store payloads into committed tender rows and post-commit notifications.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/logger"
	"github.com/satenders/tender-indexer/internal/messaging"
	"github.com/satenders/tender-indexer/internal/normalizer"
	"github.com/satenders/tender-indexer/internal/store"
)

// defaultBatchSize is the number of items per upsert transaction
const defaultBatchSize = 100

// connectMaxWait bounds the initial NATS dial retries
const connectMaxWait = 30 * time.Second

// Config holds the configuration for the ingest worker
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	// BatchSize caps items per transaction; defaults to 100
	BatchSize int
}

// Worker defines the interface for the ingest worker
type Worker interface {
	// Run starts consuming object-created events until the context ends
	Run(ctx context.Context) error
	// HandleMessage processes one queue message end to end, including its
	// ack disposition
	HandleMessage(ctx context.Context, msg adapter.Message)
	// Close closes the worker and cleans up resources
	Close()
}

type worker struct {
	nc          adapter.NatsConn
	js          adapter.JetStream
	objectStore adapter.ObjectStore
	store       store.Store
	publisher   messaging.Publisher
	normalizers *normalizer.Registry
	json        adapter.JSON
	config      Config
}

// NewWorker creates a new ingest worker
func NewWorker(
	cfg Config,
	natsJS adapter.NatsJetStream,
	objectStore adapter.ObjectStore,
	st store.Store,
	publisher messaging.Publisher,
	normalizers *normalizer.Registry,
	jsonAdapter adapter.JSON,
) (Worker, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	nc, js, err := adapter.ConnectWithRetry(natsJS, cfg.URL, connectMaxWait, connectOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &worker{
		nc:          nc,
		js:          js,
		objectStore: objectStore,
		store:       st,
		publisher:   publisher,
		normalizers: normalizers,
		json:        jsonAdapter,
		config:      cfg,
	}, nil
}

// Run starts the ingest worker
func (w *worker) Run(ctx context.Context) error {
	logger.Info("Starting ingest worker",
		zap.String("stream", w.config.StreamName),
		zap.String("consumer", w.config.ConsumerName))

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       w.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       w.config.AckWaitTimeout,
		MaxDeliver:    w.config.MaxDeliver,
		FilterSubject: "objects.created.>",
	}

	consumer, err := w.js.CreateOrUpdateConsumer(ctx, w.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	msgChan := make(chan adapter.Message, 100)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.Info("Started consuming messages")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down ingest worker")
			return ctx.Err()
		case msg := <-msgChan:
			// One event batch at a time; at-least-once delivery plus the
			// idempotent upsert make sequential processing the safe choice
			w.HandleMessage(ctx, msg)
		}
	}
}

// HandleMessage processes a single queue message
func (w *worker) HandleMessage(ctx context.Context, msg adapter.Message) {
	metadata, _ := msg.Metadata()

	events, err := decodeEvents(w.json, msg.Data())
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("subject", msg.Subject()))
		// Unparseable envelopes never become parseable; drop them
		if err := msg.Term(); err != nil {
			logger.ErrorCtx(ctx, err)
		}
		return
	}

	if metadata != nil {
		logger.InfoCtx(ctx, "Received object-created event batch",
			zap.String("subject", msg.Subject()),
			zap.Int("events", len(events)),
			zap.Uint64("deliveryCount", metadata.NumDelivered))
	}

	intents, err := w.processEvents(ctx, events)
	if err != nil {
		// Likely transient (object fetch, DB); redeliver and let the
		// idempotent upsert absorb the replay
		logger.ErrorCtx(ctx, err)
		if err := msg.Nak(); err != nil {
			logger.ErrorCtx(ctx, err)
		}
		return
	}

	// Rows are durable from here on; notifications are best-effort
	w.publishIntents(ctx, intents)

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err)
	}
}

// publishIntent is one queued notification awaiting commit
type publishIntent struct {
	tenderID int64
	tender   domain.Tender
	source   domain.Source
}

// processEvents runs every event's full ingest and returns the accumulated
// publish intents. An error means the whole message should be redelivered.
func (w *worker) processEvents(ctx context.Context, events []domain.ObjectCreatedEvent) ([]publishIntent, error) {
	var intents []publishIntent

	for _, event := range events {
		source, ok := domain.SourceFromKey(event.Key)
		if !ok {
			logger.WarnCtx(ctx, "Skipping object with unknown source prefix",
				zap.String("bucket", event.Bucket),
				zap.String("key", event.Key))
			continue
		}

		norm, ok := w.normalizers.ForSource(source)
		if !ok {
			logger.WarnCtx(ctx, "No normalizer registered for source",
				zap.String("source", source.String()))
			continue
		}

		raw, err := w.objectStore.GetObject(ctx, event.Bucket, event.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch object %s/%s: %w", event.Bucket, event.Key, err)
		}

		items, err := norm.Normalize(raw)
		if err != nil {
			// Malformed payloads are logged and skipped; redelivery cannot
			// fix the content
			logger.ErrorCtx(ctx, err,
				zap.String("source", source.String()),
				zap.String("key", event.Key))
			continue
		}

		logger.InfoCtx(ctx, "Normalized payload",
			zap.String("source", source.String()),
			zap.String("key", event.Key),
			zap.Int("items", len(items)))

		for start := 0; start < len(items); start += w.config.BatchSize {
			end := start + w.config.BatchSize
			if end > len(items) {
				end = len(items)
			}

			results, err := w.store.UpsertTenderBatch(ctx, source, items[start:end])
			if err != nil {
				return nil, fmt.Errorf("failed to upsert batch for %s: %w", event.Key, err)
			}

			for _, r := range results {
				intents = append(intents, publishIntent{
					tenderID: r.TenderID,
					tender:   r.Item.Tender,
					source:   source,
				})
			}
		}
	}

	return intents, nil
}

// publishIntents sends one notification per committed tender. Failures are
// logged only; the rows are already durable.
func (w *worker) publishIntents(ctx context.Context, intents []publishIntent) {
	for _, intent := range intents {
		notification := messaging.BuildNotification(intent.tenderID, intent.tender, intent.source)
		if err := w.publisher.PublishTenderNotification(ctx, &notification); err != nil {
			logger.ErrorCtx(ctx, err,
				zap.Int64("tenderId", intent.tenderID),
				zap.String("category", notification.Category))
		}
	}
}

// Close closes the worker and cleans up resources
func (w *worker) Close() {
	if w.nc == nil {
		return
	}

	w.nc.Close()
}
