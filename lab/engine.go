/*
engine.go - Sync orchestration

PURPOSE:
  One entry point ties the pieces together: compute the effect record
  once, run the three reconciliation steps in a fixed order, track which
  of the two entities changed, persist only those, and hand the effect
  record back to the caller for its own rules (brew success, hatch odds).

ORDERING:
  research -> essence -> auto-brewer -> bonuses. The only hard constraint
  is that the bonus reconciler sees the same effect record the producers
  saw; the record is computed exactly once per sync.

CONCURRENCY REQUIREMENT (not enforced here):
  The engine performs no locking. Two overlapping syncs for the same
  player would both read the same anchors and both apply production.
  Callers MUST guarantee at most one in-flight reconciliation per player;
  the HTTP layer does this with a per-player mutex. This is a documented
  requirement, not an internal safeguard.
*/
package lab

import (
	"context"
	"time"

	"github.com/warp/lab-engine/content"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine wires the content catalog, the stores, and the journal.
type Engine struct {
	Content content.Repository
	Players PlayerStore
	Labs    LabStore
	Journal Journal

	// Clock returns the current time; defaults to time.Now. Tests inject
	// a fixed clock.
	Clock func() time.Time
}

func NewEngine(catalog content.Repository, players PlayerStore, labs LabStore, journal Journal) *Engine {
	if journal == nil {
		journal = NopJournal{}
	}
	return &Engine{
		Content: catalog,
		Players: players,
		Labs:    labs,
		Journal: journal,
		Clock:   time.Now,
	}
}

func (e *Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

// SyncReport describes what one sync pass changed.
type SyncReport struct {
	LabChanged    bool
	PlayerChanged bool

	ResearchTicks   int
	ResearchGranted int

	EssenceTicks   int
	EssenceGranted string // decimal string; empty when nothing granted

	BrewTicksPending int
	BrewBatches      int
	BrewUnits        int
	RecipeCleared    bool

	CapacityDelta int
}

// =============================================================================
// SYNC
// =============================================================================

// LoadOrCreateLab returns the player's lab, creating and persisting an
// empty one on first access.
func (e *Engine) LoadOrCreateLab(ctx context.Context, playerID PlayerID) (*Lab, error) {
	l, err := e.Labs.GetLab(ctx, playerID)
	if err == nil {
		return l, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	l = NewLab(playerID, e.now())
	if err := e.Labs.SaveLab(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Sync reconciles all passive production for one player and persists
// whatever changed. Returns the effect record for the caller's own rules.
//
// Callers must serialize Sync per player id; see the package note above.
func (e *Engine) Sync(ctx context.Context, p *Player, l *Lab) (Effects, SyncReport, error) {
	now := e.now()
	effects := ComputeEffects(l.Upgrades, e.Content)
	report := SyncReport{}

	research := syncResearch(l, effects, now)
	if research.Changed {
		report.LabChanged = true
		report.ResearchTicks = research.Ticks
		report.ResearchGranted = research.Granted
	}

	essence := syncEssence(l, effects, now)
	if essence.Changed {
		report.LabChanged = true
		report.EssenceTicks = essence.Ticks
		if essence.Granted.IsPositive() {
			report.EssenceGranted = essence.Granted.String()
		}
	}

	brews := syncAutoBrewer(l, p, effects, e.Content, now)
	report.LabChanged = report.LabChanged || brews.LabChanged
	report.PlayerChanged = report.PlayerChanged || brews.PlayerChanged
	report.BrewTicksPending = brews.TicksPending
	report.BrewBatches = brews.Batches
	report.BrewUnits = brews.UnitsProduced
	report.RecipeCleared = brews.RecipeCleared

	bonuses := syncBonuses(l, p, effects)
	report.LabChanged = report.LabChanged || bonuses.LabChanged
	report.PlayerChanged = report.PlayerChanged || bonuses.PlayerChanged
	report.CapacityDelta = bonuses.CapacityDelta

	if err := e.journalSync(ctx, p.ID, report, brews, now); err != nil {
		return effects, report, err
	}

	if report.LabChanged {
		if err := e.Labs.SaveLab(ctx, l); err != nil {
			return effects, report, err
		}
	}
	if report.PlayerChanged {
		if err := e.Players.SavePlayer(ctx, p); err != nil {
			return effects, report, err
		}
	}

	return effects, report, nil
}

func (e *Engine) journalSync(ctx context.Context, playerID PlayerID, report SyncReport, brews brewResult, now time.Time) error {
	if report.ResearchGranted > 0 {
		ev := NewEvent(playerID, EventResearchGranted, now)
		ev.Quantity = report.ResearchGranted
		ev.Reason = "passive research"
		if err := e.Journal.Append(ctx, ev); err != nil {
			return err
		}
	}
	if report.EssenceGranted != "" {
		ev := NewEvent(playerID, EventEssenceGranted, now)
		ev.Amount = report.EssenceGranted
		ev.Reason = "passive essence"
		if err := e.Journal.Append(ctx, ev); err != nil {
			return err
		}
	}
	if report.BrewUnits > 0 {
		ev := NewEvent(playerID, EventBrewsProduced, now)
		ev.ItemID = brews.OutputItem
		ev.Quantity = report.BrewUnits
		ev.Reason = "auto-brewer"
		if err := e.Journal.Append(ctx, ev); err != nil {
			return err
		}
	}
	if report.CapacityDelta != 0 {
		ev := NewEvent(playerID, EventBonusApplied, now)
		ev.Quantity = report.CapacityDelta
		ev.Reason = string(BonusCapacity)
		if err := e.Journal.Append(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// COLLECT
// =============================================================================

// Collect moves the holding buffer into the player inventory, persists
// both entities, and returns the units transferred.
func (e *Engine) Collect(ctx context.Context, p *Player, l *Lab) (int, error) {
	moved := CollectBrews(l, p)
	if moved == 0 {
		return 0, nil
	}

	ev := NewEvent(p.ID, EventBrewsCollected, e.now())
	ev.Quantity = moved
	ev.Reason = "holding buffer collected"
	if err := e.Journal.Append(ctx, ev); err != nil {
		return moved, err
	}

	if err := e.Labs.SaveLab(ctx, l); err != nil {
		return moved, err
	}
	if err := e.Players.SavePlayer(ctx, p); err != nil {
		return moved, err
	}
	return moved, nil
}

// SelectRecipe points the auto-brewer at a recipe and persists the lab.
// The anchor is reset to now: idle time before selection never counts as
// pending production.
func (e *Engine) SelectRecipe(ctx context.Context, l *Lab, id content.RecipeID) error {
	if _, ok := e.Content.Recipe(id); !ok {
		return ErrUnknownRecipe
	}
	l.AutoBrewer.SelectedRecipeID = id
	reanchorNow(&l.AutoBrewer, e.now())
	return e.Labs.SaveLab(ctx, l)
}
