package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBroadcasterPublish(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, Channel("run-1"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	b := NewBroadcaster(client, logger)
	event := Event{
		Type:  EventTypeRunTraveled,
		RunID: "run-1",
		Day:   2,
		Data:  map[string]any{"to": "quebec"},
	}
	if err := b.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage() error: %v", err)
	}
	if msg.Channel != "run-events:run-1" {
		t.Errorf("channel = %q", msg.Channel)
	}
	var got Event
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got.Type != EventTypeRunTraveled || got.Day != 2 || got.Data["to"] != "quebec" {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), Event{Type: EventTypeRunEnded}); err != nil {
		t.Errorf("Nop.Publish() error: %v", err)
	}
}
