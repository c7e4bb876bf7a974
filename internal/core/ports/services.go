package ports

import (
	"context"

	"github.com/jmerino/hiddengems/internal/core/domain"
)

// EventPublisher publishes catalog mutation events to a message broker.
type EventPublisher interface {
	PublishGemAdded(ctx context.Context, gem domain.Gem) error
	PublishGemUpdated(ctx context.Context, gem domain.Gem) error
	PublishGemRemoved(ctx context.Context, gem domain.Gem) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
