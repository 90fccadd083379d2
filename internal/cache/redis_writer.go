// Package cache mirrors hot match state into Redis so score reads do
// not hit Postgres on every poll.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pavilion-live/pavilion/pkg/models"
)

// TTL constants
const (
	TodaysMatchesTTL  = 24 * time.Hour
	LiveScoreTTL      = 4 * time.Hour
	CompletedScoreTTL = 12 * time.Hour
	SummaryTTL        = 12 * time.Hour
)

// RedisWriter handles reading and writing match data in Redis
type RedisWriter struct {
	client *redis.Client
}

// NewRedisWriter creates a new Redis writer
func NewRedisWriter(client *redis.Client) *RedisWriter {
	return &RedisWriter{
		client: client,
	}
}

// SetLiveScore stores the live scorecard payload for a match
func (w *RedisWriter) SetLiveScore(ctx context.Context, matchID string, payload *models.LiveScorePayload) error {
	key := fmt.Sprintf("match:%s:live", matchID)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling live score: %w", err)
	}

	return w.client.Set(ctx, key, data, LiveScoreTTL).Err()
}

// GetLiveScore retrieves the cached live scorecard, nil on a miss
func (w *RedisWriter) GetLiveScore(ctx context.Context, matchID string) (*models.LiveScorePayload, error) {
	key := fmt.Sprintf("match:%s:live", matchID)

	data, err := w.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var payload models.LiveScorePayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("unmarshaling live score: %w", err)
	}
	return &payload, nil
}

// SetMatchSummary stores the computed summary of a match
func (w *RedisWriter) SetMatchSummary(ctx context.Context, matchID string, summary *models.MatchSummary) error {
	key := fmt.Sprintf("match:%s:summary", matchID)

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	return w.client.Set(ctx, key, data, SummaryTTL).Err()
}

// GetMatchSummary retrieves a cached match summary, nil on a miss
func (w *RedisWriter) GetMatchSummary(ctx context.Context, matchID string) (*models.MatchSummary, error) {
	key := fmt.Sprintf("match:%s:summary", matchID)

	data, err := w.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary models.MatchSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("unmarshaling summary: %w", err)
	}
	return &summary, nil
}

// SetTodaysMatches stores the list of match IDs scheduled for a date
func (w *RedisWriter) SetTodaysMatches(ctx context.Context, date time.Time, matchIDs []string) error {
	key := fmt.Sprintf("matches:today:%s", date.Format("2006-01-02"))

	values := make([]interface{}, len(matchIDs))
	for i, id := range matchIDs {
		values[i] = id
	}

	pipe := w.client.Pipeline()
	pipe.Del(ctx, key)
	if len(values) > 0 {
		pipe.RPush(ctx, key, values...)
	}
	pipe.Expire(ctx, key, TodaysMatchesTTL)

	_, err := pipe.Exec(ctx)
	return err
}

// GetTodaysMatches retrieves the list of match IDs for a date
func (w *RedisWriter) GetTodaysMatches(ctx context.Context, date time.Time) ([]string, error) {
	key := fmt.Sprintf("matches:today:%s", date.Format("2006-01-02"))

	return w.client.LRange(ctx, key, 0, -1).Result()
}

// InvalidateMatch drops every cached view of a match. Called on undo
// and on lifecycle transitions so stale snapshots never outlive state.
func (w *RedisWriter) InvalidateMatch(ctx context.Context, matchID string) error {
	keys := []string{
		fmt.Sprintf("match:%s:live", matchID),
		fmt.Sprintf("match:%s:summary", matchID),
	}
	return w.client.Del(ctx, keys...).Err()
}
