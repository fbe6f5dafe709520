package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRunStarted     EventType = "run.started"
	EventTypeRunTraveled    EventType = "run.traveled"
	EventTypeRunAction      EventType = "run.action"
	EventTypeEventTriggered EventType = "event.triggered"
	EventTypeEventResolved  EventType = "event.resolved"
	EventTypeRunEnded       EventType = "run.ended"
)

// Event is one message on a run channel.
type Event struct {
	Type  EventType      `json:"type"`
	RunID string         `json:"run_id"`
	Day   int            `json:"day,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Publisher sends run activity to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Channel is the pub/sub channel a run's activity is published on.
func Channel(runID string) string {
	return "run-events:" + runID
}

// Broadcaster publishes events to Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Publish sends event to the run's channel.
func (b *Broadcaster) Publish(ctx context.Context, event Event) error {
	channel := Channel(event.RunID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}

// Nop discards every event. It is used when no Redis backend is configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, event Event) error { return nil }
