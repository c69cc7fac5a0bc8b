/*
upgrade.go - Upgrade purchase operation

PURPOSE:
  The one mutation of lab.Upgrades outside the engine's reconcilers.
  Validates the purchase (catalog existence, level cap, gold), deducts the
  cost, raises the owned level, and recomputes Lab.Level as the sum of all
  owned levels. The caller must run a sync afterwards so the new effect
  record is applied (the engine method below does both).

ERROR SURFACE:
  This is the input-validation layer the reconcilers don't have: unknown
  upgrade, max level reached, and insufficient gold all surface here as
  typed errors for the command layer to render.
*/
package lab

import (
	"context"

	"github.com/warp/lab-engine/content"
)

// PurchaseUpgrade buys the next level of an upgrade, mutating player gold
// and the lab's upgrade set. Returns the gold spent.
func PurchaseUpgrade(p *Player, l *Lab, def content.UpgradeDefinition) (int, error) {
	next := l.UpgradeLevel(def.ID) + 1
	if next > def.MaxLevel {
		return 0, &MaxLevelError{UpgradeID: def.ID, MaxLevel: def.MaxLevel}
	}

	cost, ok := def.CostAt(next)
	if !ok {
		// Level exists but no cost configured: content bug, treat as capped.
		return 0, &MaxLevelError{UpgradeID: def.ID, MaxLevel: len(def.Costs)}
	}
	if p.Gold < cost {
		return 0, &InsufficientGoldError{UpgradeID: def.ID, Level: next, Cost: cost, Gold: p.Gold}
	}

	p.Gold -= cost
	l.SetUpgradeLevel(def.ID, next)
	return cost, nil
}

// Purchase performs PurchaseUpgrade against the catalog, journals it, and
// runs a full sync so the new effect record (including any derived
// bonuses) is applied and both entities are persisted.
func (e *Engine) Purchase(ctx context.Context, p *Player, l *Lab, id content.UpgradeID) (Effects, SyncReport, error) {
	def, ok := e.Content.Upgrade(id)
	if !ok {
		return Effects{}, SyncReport{}, ErrUnknownUpgrade
	}

	cost, err := PurchaseUpgrade(p, l, def)
	if err != nil {
		return Effects{}, SyncReport{}, err
	}

	ev := NewEvent(p.ID, EventUpgradePurchased, e.now())
	ev.Quantity = cost
	ev.Reason = string(id)
	if err := e.Journal.Append(ctx, ev); err != nil {
		return Effects{}, SyncReport{}, err
	}

	effects, report, err := e.Sync(ctx, p, l)
	if err != nil {
		return effects, report, err
	}

	// The purchase itself always dirties both entities even if the sync
	// pass saw nothing to do (e.g. first upgrade, zero elapsed time).
	if !report.LabChanged {
		if err := e.Labs.SaveLab(ctx, l); err != nil {
			return effects, report, err
		}
		report.LabChanged = true
	}
	if !report.PlayerChanged {
		if err := e.Players.SavePlayer(ctx, p); err != nil {
			return effects, report, err
		}
		report.PlayerChanged = true
	}

	return effects, report, nil
}
