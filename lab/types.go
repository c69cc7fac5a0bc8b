/*
Package lab implements the passive-progression engine for the player
laboratory.

PURPOSE:
  Given a player who may have been offline for an arbitrary stretch, the
  engine recomputes on next access exactly how many production events
  (research points, essence, auto-brewed batches) should have occurred,
  applies them, advances the stored tick anchors by exactly the time
  consumed, and reconciles derived stat bonuses idempotently.

KEY CONCEPTS IN THIS FILE (types.go):
  - Player: gold, inventory, capacity (the bonus-reconciled stat)
  - Lab: owned upgrades, counters, tick anchors, auto-brewer state
  - Inventory: mutable multiset of items
  - Constructors populate every field with its neutral default, so the
    engine never null-checks persisted state

DESIGN PRINCIPLES:
  1. Pull-based: no background clock; absence of activity just means a
     larger tick count on the next access
  2. Anchors advance only by whole-tick multiples, preserving fractional
     progress across calls
  3. The engine performs no locking; callers must guarantee at most one
     in-flight reconciliation per player (see Engine.Sync)

SEE ALSO:
  - tick.go: Anchor reconciliation
  - effects.go: Upgrade levels to effect record
  - engine.go: Orchestration and persistence
*/
package lab

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/lab-engine/content"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PlayerID string

// BonusKind identifies a derived bonus baked into player stats.
type BonusKind string

const (
	// BonusCapacity is the inventory capacity bonus from storage upgrades.
	BonusCapacity BonusKind = "capacity"
)

// BaseCapacity is the inventory capacity of a player with no storage
// upgrades; the bonus reconciler never clamps below it.
const BaseCapacity = 20

// =============================================================================
// INVENTORY - Mutable multiset of items
// =============================================================================

// Inventory maps item ids to owned quantities. Zero-quantity entries are
// removed on subtraction so iteration only sees owned items.
type Inventory map[content.ItemID]int

func NewInventory() Inventory {
	return make(Inventory)
}

// Count returns the owned quantity of an item (0 if absent).
func (inv Inventory) Count(id content.ItemID) int {
	return inv[id]
}

// Has reports whether at least qty of the item is owned.
func (inv Inventory) Has(id content.ItemID, qty int) bool {
	return inv[id] >= qty
}

// Add increases the owned quantity of an item.
func (inv Inventory) Add(id content.ItemID, qty int) {
	if qty <= 0 {
		return
	}
	inv[id] += qty
}

// Remove subtracts qty of the item, deleting the entry when it reaches
// zero. Returns false (and changes nothing) if not enough is owned.
func (inv Inventory) Remove(id content.ItemID, qty int) bool {
	if qty <= 0 {
		return true
	}
	if inv[id] < qty {
		return false
	}
	inv[id] -= qty
	if inv[id] == 0 {
		delete(inv, id)
	}
	return true
}

// Total returns the total number of units across all items.
func (inv Inventory) Total() int {
	n := 0
	for _, qty := range inv {
		n += qty
	}
	return n
}

// Clone returns an independent copy.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for id, qty := range inv {
		out[id] = qty
	}
	return out
}

// =============================================================================
// PLAYER
// =============================================================================

// Player holds the persistent player state the lab engine touches: gold
// (upgrade purchases), the inventory (auto-brewer inputs, collected
// output), and capacity (the bonus-reconciled stat).
type Player struct {
	ID        PlayerID
	Name      string
	Gold      int
	Capacity  int
	Inventory Inventory
	CreatedAt time.Time
}

// NewPlayer creates a player with every field at its neutral default.
func NewPlayer(id PlayerID, name string, createdAt time.Time) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Gold:      0,
		Capacity:  BaseCapacity,
		Inventory: NewInventory(),
		CreatedAt: createdAt,
	}
}

// =============================================================================
// LAB
// =============================================================================

// OwnedUpgrade records one purchased upgrade at its current level.
// Unique by ID within a lab; Level is in [1, definition.MaxLevel].
type OwnedUpgrade struct {
	ID    content.UpgradeID
	Level int
}

// AutoBrewer is the auto-production pipeline state: the selected recipe,
// the holding buffer of uncollected output, and the tick anchor.
type AutoBrewer struct {
	SelectedRecipeID content.RecipeID
	HoldingBuffer    Inventory
	LastTick         *time.Time
}

// Lab is the per-player laboratory. Created lazily on first access and
// mutated only by this engine and the upgrade purchase operation.
type Lab struct {
	PlayerID PlayerID

	// Level is always the sum of all owned upgrade levels, recomputed on
	// every purchase. Never set directly.
	Level    int
	Upgrades []OwnedUpgrade

	ResearchPoints   int
	LastResearchTick *time.Time

	Essence         decimal.Decimal
	LastEssenceTick *time.Time

	AutoBrewer AutoBrewer

	// AppliedBonuses records the last bonus value folded into player stats,
	// per kind. Read and written only by the bonus reconciler.
	AppliedBonuses map[BonusKind]int

	CreatedAt time.Time
}

// NewLab creates a lab with every field at its neutral default. Tick
// anchors start nil, meaning "never initialized": the first sync
// establishes them without granting retroactive production.
func NewLab(playerID PlayerID, createdAt time.Time) *Lab {
	return &Lab{
		PlayerID:       playerID,
		Level:          0,
		Upgrades:       nil,
		ResearchPoints: 0,
		Essence:        decimal.Zero,
		AutoBrewer: AutoBrewer{
			HoldingBuffer: NewInventory(),
		},
		AppliedBonuses: make(map[BonusKind]int),
		CreatedAt:      createdAt,
	}
}

// UpgradeLevel returns the owned level of an upgrade (0 if not owned).
func (l *Lab) UpgradeLevel(id content.UpgradeID) int {
	for _, u := range l.Upgrades {
		if u.ID == id {
			return u.Level
		}
	}
	return 0
}

// SetUpgradeLevel sets the owned level of an upgrade, adding it if absent,
// then recomputes Level as the sum of all owned levels.
func (l *Lab) SetUpgradeLevel(id content.UpgradeID, level int) {
	found := false
	for i := range l.Upgrades {
		if l.Upgrades[i].ID == id {
			l.Upgrades[i].Level = level
			found = true
			break
		}
	}
	if !found {
		l.Upgrades = append(l.Upgrades, OwnedUpgrade{ID: id, Level: level})
	}
	l.recomputeLevel()
}

func (l *Lab) recomputeLevel() {
	sum := 0
	for _, u := range l.Upgrades {
		sum += u.Level
	}
	l.Level = sum
}
