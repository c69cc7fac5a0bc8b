/*
autoproducer.go - Input-constrained auto-brewer

PURPOSE:
  The auto-brewer is the one producer that cannot use closed-form catch-up:
  each tick consumes recipe inputs from the player's inventory, and the
  inventory can run out partway through a long offline window. The loop
  therefore runs tick by tick and stops at the first tick whose inputs are
  short, leaving correctly partial state.

ANCHOR RULES:
  - Batches processed: anchor = last + batches*interval, banking the
    leftover fraction exactly as the simple producers do.
  - Zero batches processed (inputs short from the first tick): anchor
    moves to now. Retrying the same known-insufficient ticks forever would
    grant nothing and re-walk the gap on every access.
  - Idle (no recipe selected, or the upgrade unowned): anchor moves to
    now, so time doesn't silently accumulate while idle.

BATCH ATOMICITY:
  A batch either fully succeeds (every input present and consumed, output
  added to the holding buffer) or is not attempted. Inputs are never
  partially consumed.

SEE ALSO:
  - tick.go: Shared anchor reconciliation
  - engine.go: Calls this during sync; CollectBrews is caller-invoked
*/
package lab

import (
	"time"

	"github.com/warp/lab-engine/content"
)

// =============================================================================
// AUTO-BREWER SYNC
// =============================================================================

type brewResult struct {
	TicksPending   int
	Batches        int
	UnitsProduced  int
	RecipeCleared  bool
	LabChanged     bool
	PlayerChanged  bool
	OutputItem     content.ItemID
}

// syncAutoBrewer runs the constrained catch-up loop for the auto-brewer.
func syncAutoBrewer(l *Lab, p *Player, eff Effects, catalog content.Repository, now time.Time) brewResult {
	out := brewResult{}
	brewer := &l.AutoBrewer

	// Pipeline off or idle: keep the anchor at now so an eventual recipe
	// selection doesn't inherit a backlog of idle time.
	if eff.AutoBrewInterval <= 0 || eff.AutoBrewBatchSize <= 0 || brewer.SelectedRecipeID == "" {
		out.LabChanged = reanchorNow(brewer, now)
		return out
	}

	recipe, ok := catalog.Recipe(brewer.SelectedRecipeID)
	if !ok {
		// Recipe removed from content: reset the dangling reference and
		// drop output that can no longer be attributed to a recipe.
		brewer.SelectedRecipeID = ""
		brewer.HoldingBuffer = NewInventory()
		reanchorNow(brewer, now)
		out.RecipeCleared = true
		out.LabChanged = true
		return out
	}

	res := ReconcileTicks(brewer.LastTick, now, eff.AutoBrewInterval)
	if res.Initialized {
		anchor := res.Anchor
		brewer.LastTick = &anchor
		out.LabChanged = true
		return out
	}
	if res.Ticks == 0 {
		return out
	}
	out.TicksPending = res.Ticks

	// Tick-by-tick: availability can run out partway through the window.
	batches := 0
	for i := 0; i < res.Ticks; i++ {
		if !consumeBatchInputs(p.Inventory, recipe, eff.AutoBrewBatchSize) {
			break
		}
		brewer.HoldingBuffer.Add(recipe.Output.ItemID, recipe.Output.Quantity*eff.AutoBrewBatchSize)
		batches++
	}

	if batches > 0 {
		anchor := brewer.LastTick.Add(time.Duration(batches) * eff.AutoBrewInterval)
		brewer.LastTick = &anchor
		out.Batches = batches
		out.UnitsProduced = recipe.Output.Quantity * eff.AutoBrewBatchSize * batches
		out.OutputItem = recipe.Output.ItemID
		out.LabChanged = true
		out.PlayerChanged = true
	} else {
		// Known-insufficient ticks are forfeited, not retried.
		out.LabChanged = reanchorNow(brewer, now)
	}

	return out
}

// consumeBatchInputs atomically takes one batch's inputs from the
// inventory. Either every input is present and all are consumed, or
// nothing is touched.
func consumeBatchInputs(inv Inventory, recipe content.Recipe, batchSize int) bool {
	for _, in := range recipe.Inputs {
		if !inv.Has(in.ItemID, in.Quantity*batchSize) {
			return false
		}
	}
	for _, in := range recipe.Inputs {
		inv.Remove(in.ItemID, in.Quantity*batchSize)
	}
	return true
}

// reanchorNow moves the brewer anchor to now, reporting whether anything
// actually changed.
func reanchorNow(b *AutoBrewer, now time.Time) bool {
	if b.LastTick != nil && b.LastTick.Equal(now) {
		return false
	}
	anchor := now
	b.LastTick = &anchor
	return true
}

// =============================================================================
// COLLECTION
// =============================================================================

// CollectBrews moves the entire holding buffer into the player's inventory
// and empties it, returning the total units transferred. Explicit and
// caller-invoked; never part of the reconciliation pass.
func CollectBrews(l *Lab, p *Player) int {
	total := 0
	for item, qty := range l.AutoBrewer.HoldingBuffer {
		p.Inventory.Add(item, qty)
		total += qty
	}
	l.AutoBrewer.HoldingBuffer = NewInventory()
	return total
}
