// Package events publishes session state changes so that other processes
// (or the console UI) can react to them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/odyssey-engine/pkg/session"
	"github.com/redis/go-redis/v9"
)

// EventType names the kind of event being broadcast.
type EventType string

const EventTypeStateChanged EventType = "state.changed"

// Event is the wire form published on a game channel.
type Event struct {
	Type   EventType      `json:"type"`
	GameID string         `json:"game_id"`
	Data   session.Change `json:"data"`
}

// Channel is the pub/sub channel for one game.
func Channel(gameID uuid.UUID) string {
	return "game:" + gameID.String()
}

// Broadcaster publishes state changes to Redis Pub/Sub.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ session.Notifier = (*Broadcaster)(nil)

func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// StateChanged publishes a state.changed event for the session.
func (b *Broadcaster) StateChanged(ctx context.Context, c session.Change) error {
	return b.publishToGame(ctx, c.SessionID, Event{
		Type:   EventTypeStateChanged,
		GameID: c.SessionID.String(),
		Data:   c,
	})
}

func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "redis_channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"redis_channel", channel,
		"event_type", event.Type,
		"action", event.Data.Action,
	)
	return nil
}
