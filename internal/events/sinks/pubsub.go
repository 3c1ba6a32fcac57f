package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/haianibrahim/tiktok-scraper/internal/events"
)

// topicPublisher is the slice of *pubsub.Topic the sink depends on,
// narrowed for testing.
type topicPublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
	Stop()
}

// PubSubSink publishes domain events to a Google Cloud Pub/Sub topic so
// external consumers can react to scrape outcomes.
type PubSubSink struct {
	topic topicPublisher
}

// NewPubSubSink wraps a prepared topic handle.
func NewPubSubSink(topic topicPublisher) (*PubSubSink, error) {
	if topic == nil {
		return nil, fmt.Errorf("pubsub topic is required")
	}
	return &PubSubSink{topic: topic}, nil
}

// Consume marshals each event to JSON and publishes it. The event type is
// attached as a message attribute for subscriber-side filtering.
func (s *PubSubSink) Consume(ctx context.Context, batch []events.Event) error {
	for _, evt := range batch {
		data, err := json.Marshal(map[string]any{
			"type":        string(evt.Type),
			"ts":          evt.TS,
			"url":         evt.URL,
			"video_id":    evt.VideoID,
			"username":    evt.Username,
			"error_kind":  evt.ErrorKind,
			"note":        evt.Note,
			"cache_hit":   evt.CacheHit,
			"duration_ms": evt.Dur.Milliseconds(),
		})
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		result := s.topic.Publish(ctx, &pubsub.Message{
			Data:       data,
			Attributes: map[string]string{"type": string(evt.Type)},
		})
		if _, err := result.Get(ctx); err != nil {
			return fmt.Errorf("publish event: %w", err)
		}
	}
	return nil
}

// Close flushes and stops the topic's publish goroutines.
func (s *PubSubSink) Close(context.Context) error {
	s.topic.Stop()
	return nil
}
