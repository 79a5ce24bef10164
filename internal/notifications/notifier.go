// Package notifications publishes post change events over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"folio/internal/middleware"
	"folio/internal/observability"

	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis channel post change events are published on.
const EventsChannel = "folio:events"

// Event types.
const (
	EventPostCreated = "post_created"
	EventPostUpdated = "post_updated"
	EventPostDeleted = "post_deleted"
)

// Event is the JSON envelope published for every post change.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Notifier provides helpers to publish events into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish marshals payload into an Event of the given type and sends it.
func (n *Notifier) Publish(ctx context.Context, eventType string, payload any) error {
	if n == nil || n.rdb == nil {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	msg, err := json.Marshal(Event{Type: eventType, Payload: body, Timestamp: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := n.rdb.Publish(ctx, EventsChannel, msg).Err(); err != nil {
		observability.PostEventsPublished.WithLabelValues(eventType, "error").Inc()
		return err
	}
	observability.PostEventsPublished.WithLabelValues(eventType, "ok").Inc()
	return nil
}

// Subscribe listens on EventsChannel until ctx is done and calls onEvent for
// every well-formed message. It returns once the subscription is confirmed.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, EventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", EventsChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Warn("dropping malformed event", slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(ev)
				}()
			}
		}
	}()

	return nil
}
