/*
journal.go - Append-only production event log

PURPOSE:
  Records every production event the engine applies, so that any counter
  or buffer value can be explained after the fact. The journal is strictly
  append-only: no update, no delete. It is an audit trail, not state; the
  engine never reads it back during reconciliation.

EVENT GRANULARITY:
  One event per producer per sync (not per tick): a 40-day catch-up that
  grants 480 research points is one event with quantity 480.
*/
package lab

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warp/lab-engine/content"
)

// =============================================================================
// PRODUCTION EVENTS
// =============================================================================

type EventType string

const (
	EventResearchGranted   EventType = "research_granted"
	EventEssenceGranted    EventType = "essence_granted"
	EventBrewsProduced     EventType = "brews_produced"
	EventBrewsCollected    EventType = "brews_collected"
	EventBonusApplied      EventType = "bonus_applied"
	EventUpgradePurchased  EventType = "upgrade_purchased"
	EventCreatureHatched   EventType = "creature_hatched"
)

// ProductionEvent is one journal entry.
type ProductionEvent struct {
	ID       string
	PlayerID PlayerID
	Type     EventType

	// ItemID is set for item-producing events (brews), empty otherwise.
	ItemID content.ItemID

	// Quantity is the magnitude of the event: points granted, units
	// brewed, bonus delta. Essence grants use Amount instead.
	Quantity int

	// Amount is the decimal magnitude for fractional currencies.
	Amount string

	Reason     string
	OccurredAt time.Time
}

// NewEvent builds a journal entry with a fresh id.
func NewEvent(playerID PlayerID, typ EventType, at time.Time) ProductionEvent {
	return ProductionEvent{
		ID:         uuid.NewString(),
		PlayerID:   playerID,
		Type:       typ,
		OccurredAt: at,
	}
}

// Journal stores production events. Append-only.
type Journal interface {
	Append(ctx context.Context, ev ProductionEvent) error

	// Events returns a player's events, oldest first.
	Events(ctx context.Context, playerID PlayerID) ([]ProductionEvent, error)
}

// NopJournal discards events; used when auditing is disabled.
type NopJournal struct{}

func (NopJournal) Append(context.Context, ProductionEvent) error { return nil }
func (NopJournal) Events(context.Context, PlayerID) ([]ProductionEvent, error) {
	return nil, nil
}
