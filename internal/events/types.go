// Package events defines the board change notifications delivered to
// realtime subscribers, and the Broadcaster that emits them.
package events

import (
	"fmt"
	"time"
)

// Action is the closed set of change kinds carried by board events.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
	ActionMoved   Action = "moved"
)

// EntityType names the kind of entity an event refers to.
type EntityType string

const (
	EntityBoard  EntityType = "board"
	EntityColumn EntityType = "column"
	EntityTask   EntityType = "task"
)

// Event is the payload delivered to a board topic. It carries no entity
// data; subscribers re-fetch authoritative state after a notification, and
// after any reconnect, since missed events are never replayed.
type Event struct {
	BoardID    int        `json:"board_id"`
	Action     Action     `json:"action"`
	EntityType EntityType `json:"entity_type,omitempty"`
	EntityID   int        `json:"entity_id,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Topic returns the delivery topic for a board's update channel.
func Topic(boardID int) string {
	return fmt.Sprintf("board.%d", boardID)
}
