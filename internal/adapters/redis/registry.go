package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Registry struct {
	redis *redis.Client
}

func NewRegistry(r *redis.Client) *Registry {
	return &Registry{redis: r}
}

func (r *Registry) Append(ctx context.Context, stream string, payload any, maxLen int64) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("registry marshal failed: %w", err)
	}

	id, err := r.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"data": data,
		},
		MaxLen: maxLen,
		Approx: maxLen > 0,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("registry xadd failed: %w", err)
	}

	return id, nil
}

// StreamSink appends snapshot envelopes to one capped stream.
type StreamSink struct {
	registry *Registry
	stream   string
	maxLen   int64
}

func NewStreamSink(registry *Registry, stream string, maxLen int64) *StreamSink {
	return &StreamSink{registry: registry, stream: stream, maxLen: maxLen}
}

func (s *StreamSink) Name() string {
	return "redis:" + s.stream
}

func (s *StreamSink) Publish(ctx context.Context, payload []byte) error {
	_, err := s.registry.Append(ctx, s.stream, json.RawMessage(payload), s.maxLen)
	return err
}
