package messaging

import (
	"context"

	"github.com/satenders/tender-indexer/internal/domain"
)

// Publisher defines the interface for publishing tender notifications to the
// message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishTenderNotification publishes one per-tender message. Called
	// only after the batch that produced the tender has committed.
	PublishTenderNotification(ctx context.Context, notification *domain.TenderNotification) error
	// Close closes the connection
	Close()
}
