// Package publisher pushes match events onto Redis streams for the
// broadcaster to fan out to websocket clients.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pavilion-live/pavilion/pkg/models"
)

// AllMatchesStream carries every event; per-match streams carry one
// match's events for consumers that only care about a single fixture.
const AllMatchesStream = "match.updates.all"

// StreamKey returns the per-match stream name
func StreamKey(matchID string) string {
	return fmt.Sprintf("match.updates.%s", matchID)
}

// StreamPublisher publishes match events to Redis streams
type StreamPublisher struct {
	client *redis.Client
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{
		client: client,
	}
}

// PublishEvents publishes an ordered batch of events. One XAdd per
// event per stream; stream IDs preserve the engine's emission order.
func (p *StreamPublisher) PublishEvents(ctx context.Context, matchID string, events []models.MatchEvent) error {
	if len(events) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshaling event %s: %w", ev.Type, err)
		}
		values := map[string]interface{}{
			"data":     string(data),
			"match_id": matchID,
			"type":     string(ev.Type),
		}
		pipe.XAdd(ctx, &redis.XAddArgs{Stream: AllMatchesStream, Values: values})
		pipe.XAdd(ctx, &redis.XAddArgs{Stream: StreamKey(matchID), Values: values})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing %d events: %w", len(events), err)
	}
	return nil
}
