package domain

import (
	"context"
	"time"
)

// EventType defines the kind of interaction a user performed on a row.
type EventType string

const (
	EventPeerSelected EventType = "peer_selected"
	EventSetPinned    EventType = "set_pinned"
	EventSetMuted     EventType = "set_muted"
	EventDeletePeer   EventType = "delete_peer"
	EventSetRead      EventType = "set_read"
)

// Valid reports whether t is a known interaction.
func (t EventType) Valid() bool {
	switch t {
	case EventPeerSelected, EventSetPinned, EventSetMuted, EventDeletePeer, EventSetRead:
		return true
	}
	return false
}

// InteractionEvent is a command emitted by the rendering layer for one row.
// Value carries the flag for pin/mute/read toggles and is ignored otherwise.
type InteractionEvent struct {
	Type      EventType `json:"type"`
	ListID    string    `json:"list_id"`
	RoomID    string    `json:"room_id"`
	Value     bool      `json:"value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReconcileEvent is emitted after a list update has been reconciled and persisted.
type ReconcileEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	ListID    string           `json:"list_id"`
	Version   uint64           `json:"version"`
	Counts    TransitionCounts `json:"counts"`
	Duration  time.Duration    `json:"duration"`
}

// LifecycleHooks defines callbacks for list observability.
type LifecycleHooks struct {
	OnReconcile   func(context.Context, *ReconcileEvent)
	OnInteraction func(context.Context, *InteractionEvent)
}
