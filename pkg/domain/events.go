package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTokenCreated      EventType = "token_created"
	EventTokenDiscarded    EventType = "token_discarded"
	EventMovementQueued    EventType = "movement_queued"
	EventMovementCompleted EventType = "movement_completed"
	EventRotationPhase     EventType = "rotation_phase"
	EventAssetLoadFailed   EventType = "asset_load_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	BoardID   string    `json:"board_id"`
}

// TokenEvent represents a token entering, leaving or moving on the board.
type TokenEvent struct {
	EventBase
	TokenID TokenID `json:"token_id"`
	Label   string  `json:"label"`
	Cell    Cell    `json:"cell"`
}

// RotationEvent represents a phase change of the rotation state machine.
type RotationEvent struct {
	EventBase
	From  Phase   `json:"from"`
	To    Phase   `json:"to"`
	Angle float64 `json:"angle"`
	Delta int     `json:"delta"`
}

// AssetEvent represents an asset loader failure for a pending creation.
type AssetEvent struct {
	EventBase
	Label string `json:"label"`
	Cell  Cell   `json:"cell"`
	Err   error  `json:"-"`
}

// LifecycleHooks defines callbacks for board observability.
// All hooks run on the board's logical thread and must not block.
type LifecycleHooks struct {
	OnTokenCreated      func(context.Context, *TokenEvent)
	OnTokenDiscarded    func(context.Context, *TokenEvent)
	OnMovementQueued    func(context.Context, *TokenEvent)
	OnMovementCompleted func(context.Context, *TokenEvent)
	OnRotationPhase     func(context.Context, *RotationEvent)
	OnAssetLoadFailed   func(context.Context, *AssetEvent)
}
