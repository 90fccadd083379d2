// Package consumer reads match events off Redis streams and feeds the
// broadcast hub.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pavilion-live/pavilion/internal/config"
	"github.com/pavilion-live/pavilion/internal/hub"
	"github.com/pavilion-live/pavilion/pkg/models"
)

const (
	// Batch size for reading messages
	batchSize = 100

	// Block duration when waiting for new messages
	blockDuration = 1 * time.Second
)

// StreamConsumer consumes match events from Redis Streams
type StreamConsumer struct {
	redis        *redis.Client
	hub          *hub.Hub
	streamConfig config.StreamConfig
}

// NewStreamConsumer creates a new stream consumer
func NewStreamConsumer(redisClient *redis.Client, h *hub.Hub, streamConfig config.StreamConfig) *StreamConsumer {
	return &StreamConsumer{
		redis:        redisClient,
		hub:          h,
		streamConfig: streamConfig,
	}
}

// Start begins consuming from Redis Streams
func (sc *StreamConsumer) Start(ctx context.Context) error {
	fmt.Println("✓ Stream consumer started")

	streams := sc.streamConfig.Streams
	fmt.Printf("  📡 Configured streams: %v\n", streams)

	// Create consumer groups (ignore errors if they already exist)
	for _, stream := range streams {
		sc.createConsumerGroup(ctx, stream)
	}

	for _, stream := range streams {
		streamName := stream // Capture for goroutine
		go sc.consumeStream(ctx, streamName)
	}

	<-ctx.Done()
	return nil
}

// createConsumerGroup creates a consumer group for a stream
func (sc *StreamConsumer) createConsumerGroup(ctx context.Context, stream string) {
	err := sc.redis.XGroupCreateMkStream(ctx, stream, sc.streamConfig.ConsumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		fmt.Printf("⚠️  Failed to create consumer group for %s: %v\n", stream, err)
	}
}

// consumeStream consumes messages from a specific stream
func (sc *StreamConsumer) consumeStream(ctx context.Context, stream string) {
	fmt.Printf("  📡 Consuming stream: %s\n", stream)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			streams, err := sc.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    sc.streamConfig.ConsumerGroup,
				Consumer: sc.streamConfig.ConsumerID,
				Streams:  []string{stream, ">"},
				Count:    batchSize,
				Block:    blockDuration,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					// No new messages - continue
					continue
				}
				fmt.Printf("⚠️  Stream read error (%s): %v\n", stream, err)
				time.Sleep(1 * time.Second)
				continue
			}

			for _, s := range streams {
				for _, message := range s.Messages {
					sc.processMessage(ctx, s.Stream, message)
				}
			}
		}
	}
}

// processMessage decodes one stream entry and hands it to the hub.
// Malformed entries are acked and dropped so they cannot wedge the
// consumer group.
func (sc *StreamConsumer) processMessage(ctx context.Context, stream string, msg redis.XMessage) {
	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		fmt.Printf("⚠️  Invalid message format in %s: %v\n", stream, msg.Values)
		sc.ackMessage(ctx, stream, msg.ID)
		return
	}

	var event models.MatchEvent
	if err := json.Unmarshal([]byte(dataStr), &event); err != nil {
		fmt.Printf("⚠️  Failed to parse event from %s: %v\n", stream, err)
		sc.ackMessage(ctx, stream, msg.ID)
		return
	}

	sc.hub.Broadcast(event)
	sc.ackMessage(ctx, stream, msg.ID)
}

// ackMessage acknowledges a message in the stream
func (sc *StreamConsumer) ackMessage(ctx context.Context, stream string, messageID string) {
	err := sc.redis.XAck(ctx, stream, sc.streamConfig.ConsumerGroup, messageID).Err()
	if err != nil {
		fmt.Printf("⚠️  Failed to ack message %s in %s: %v\n", messageID, stream, err)
	}
}
