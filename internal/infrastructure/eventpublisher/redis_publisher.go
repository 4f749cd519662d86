package eventpublisher

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/sahmly/engine/internal/domain"
)

// RedisStreamPublisher publishes outbox events to a Redis stream, where
// the notification service consumes them.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisStreamPublisher creates a new RedisStreamPublisher.
func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisStreamPublisher {
	if stream == "" {
		stream = "sahmly.events"
	}
	return &RedisStreamPublisher{client: client, stream: stream}
}

// Publish appends the event to the stream.
func (p *RedisStreamPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":       event.ID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
			"payload":        string(payload),
		},
	}).Err()
}
