package ingest

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/logger"
)

// s3EventEnvelope is the classic S3 notification shape some producers still
// emit; only bucket and key matter
type s3EventEnvelope struct {
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// decodeEvents accepts either the native {bucket,key} payload or an S3-style
// Records envelope and returns the flattened event list
func decodeEvents(json adapter.JSON, data []byte) ([]domain.ObjectCreatedEvent, error) {
	var envelope s3EventEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Records) > 0 {
		events := make([]domain.ObjectCreatedEvent, 0, len(envelope.Records))
		for _, record := range envelope.Records {
			events = append(events, domain.ObjectCreatedEvent{
				Bucket: record.S3.Bucket.Name,
				Key:    record.S3.Object.Key,
			})
		}
		return events, nil
	}

	var event domain.ObjectCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if event.Bucket == "" || event.Key == "" {
		return nil, fmt.Errorf("%w: event missing bucket or key", domain.ErrMalformedPayload)
	}

	return []domain.ObjectCreatedEvent{event}, nil
}

// connectOptions builds the standard connection options with reconnect
// logging
func connectOptions(cfg Config) []nats.Option {
	return []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
}
