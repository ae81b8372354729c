package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisEventPublisher implements domain.FileEventPublisher by publishing
// events to a Redis channel named after the event, where the real-time
// notification layer subscribes.
type RedisEventPublisher struct {
	client *redis.Client
}

// NewRedisEventPublisher creates a new Redis event publisher
func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{
		client: client,
	}
}

// Publish serializes the event to JSON and publishes it on the channel
// matching the event name.
func (p *RedisEventPublisher) Publish(ctx context.Context, event domain.FileEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, event.Name, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
