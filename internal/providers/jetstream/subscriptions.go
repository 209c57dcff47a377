package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/messaging"
)

// Subscriptions maintains one durable consumer per user on the notification
// stream, filtered to the subjects of that user's categories. Updating a
// consumer with new filter subjects is an idempotent CreateOrUpdate.
type Subscriptions struct {
	js         adapter.JetStream
	streamName string
}

// NewSubscriptions creates a subscription manager on an existing JetStream
// connection
func NewSubscriptions(js adapter.JetStream, streamName string) *Subscriptions {
	return &Subscriptions{js: js, streamName: streamName}
}

// consumerName derives the durable consumer name for a user
func consumerName(userID int64) string {
	return fmt.Sprintf("notify-user-%d", userID)
}

// Sync aligns the user's durable consumer with their category list. An empty
// list leaves the consumer filtered to a subject no publisher uses, which
// silences it without losing its position.
func (s *Subscriptions) Sync(ctx context.Context, userID int64, categories []string) error {
	subjects := make([]string, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		subject := messaging.NotifySubject(category)
		if _, dup := seen[subject]; dup {
			continue
		}
		seen[subject] = struct{}{}
		subjects = append(subjects, subject)
	}
	if len(subjects) == 0 {
		subjects = []string{"tenders.notify.none"}
	}

	cfg := jetstream.ConsumerConfig{
		Durable:        consumerName(userID),
		AckPolicy:      jetstream.AckExplicitPolicy,
		AckWait:        30 * time.Second,
		MaxDeliver:     5,
		FilterSubjects: subjects,
	}

	if _, err := s.js.CreateOrUpdateConsumer(ctx, s.streamName, cfg); err != nil {
		return fmt.Errorf("failed to sync subscription consumer: %w", err)
	}

	return nil
}
