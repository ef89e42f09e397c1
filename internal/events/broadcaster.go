package events

import (
	"log/slog"
	"time"
)

// Broadcaster publishes board change notifications through a Publisher.
// The notification is a side effect layered after the data mutation it
// describes: a failed publish is logged and swallowed, never surfaced to
// the caller and never able to roll the mutation back.
type Broadcaster struct {
	transport Publisher
}

// NewBroadcaster creates a Broadcaster on top of the given transport.
func NewBroadcaster(transport Publisher) *Broadcaster {
	return &Broadcaster{transport: transport}
}

// Publish emits one event on the board's topic, stamped with the publish
// time. A nil Broadcaster or nil transport is a no-op so call sites never
// need a guard.
func (b *Broadcaster) Publish(boardID int, action Action, entityType EntityType, entityID int) {
	if b == nil || b.transport == nil {
		return
	}

	event := Event{
		BoardID:    boardID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Timestamp:  time.Now().UTC(),
	}

	if err := b.transport.Publish(Topic(boardID), event); err != nil {
		slog.Warn("board event publish failed",
			"topic", Topic(boardID),
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err)
	}
}
