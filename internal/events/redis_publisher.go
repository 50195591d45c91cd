package events

import (
	"context"
	"encoding/json"
	"fmt"

	"winterops/stationboard/internal/logging"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher mirrors allocation change events onto a Redis Stream
// so other processes (map frontends, exporters) can invalidate their
// own caches without polling.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

// Publish appends one event to the stream
func (p *RedisPublisher) Publish(ctx context.Context, ev ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 10000,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	return nil
}

// Forward drains a subscription channel into the stream until ctx is
// done or the channel closes. Run it in its own goroutine.
func (p *RedisPublisher) Forward(ctx context.Context, ch <-chan ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := p.Publish(ctx, ev); err != nil {
				logging.Warn("Failed to publish change event to Redis",
					"stream", p.stream,
					"type", string(ev.Type),
					"error", err.Error(),
				)
			}
		}
	}
}
