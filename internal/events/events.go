// Package events carries change notifications from the write paths to
// connected clients. Events are published to a redis pub/sub channel
// and fanned out to per-user WebSocket connections by a subscriber,
// so any instance can notify users connected elsewhere.
//
// Events are refresh hints, not patches: clients are expected to
// re-fetch the affected list on every event, so redundant or
// out-of-order delivery is harmless.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const channel = "memora:events"

// Event types published by the services.
const (
	TypeConnectionCreated        = "connection_created"
	TypeConnectionUpdated        = "connection_updated"
	TypeConnectionDeleted        = "connection_deleted"
	TypeMemoryCreated            = "memory_created"
	TypeMemoryUpdated            = "memory_updated"
	TypeMemoryDeleted            = "memory_deleted"
	TypeDeletionRequestCreated   = "deletion_request_created"
	TypeDeletionRequestResponded = "deletion_request_responded"
)

// Event is a change notification addressed to one or more users.
type Event struct {
	Type    string         `json:"type"`
	UserIDs []string       `json:"user_ids"`
	Data    map[string]any `json:"data,omitempty"`
}

// Publisher publishes change events for interested clients.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Bus is a redis-backed event bus.
type Bus struct {
	rdb *redis.Client
}

// NewBus creates a bus over the given redis client.
func NewBus(rdb *redis.Client) *Bus {
	return &Bus{rdb: rdb}
}

// Publish sends an event to the shared channel.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe consumes events from the shared channel and invokes fn for
// each one until ctx is cancelled. Malformed payloads are logged and
// skipped.
func (b *Bus) Subscribe(ctx context.Context, fn func(Event)) error {
	sub := b.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Error().Err(err).Msg("Failed to decode event payload")
				continue
			}
			fn(ev)
		}
	}
}
