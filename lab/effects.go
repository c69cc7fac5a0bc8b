/*
effects.go - Flattened effect record and the upgrade effect registry

PURPOSE:
  Maps the open-ended set of owned upgrades into one flat record of named
  modifiers. Every other rule in the game (brew success, hatch odds,
  producer rates, stat bonuses) reads this record and nothing else.

REGISTRY:
  Each upgrade id maps to an applier function that writes the upgrade's
  per-level payload into the record. Adding an upgrade means registering
  one applier; no central branch list to touch. Appliers accumulate rather
  than overwrite, so content may later split one concern across upgrades.

PURITY:
  ComputeEffects is pure and total: same inputs, same output, no I/O.
  Owned upgrades missing from the catalog are skipped silently (content
  was removed); levels are clamped to the catalog's max level defensively.

SEE ALSO:
  - content/defaults.go: The upgrade ids this registry covers
  - engine.go: Computes the record once per sync
*/
package lab

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/lab-engine/content"
)

// =============================================================================
// EFFECT RECORD
// =============================================================================

// Effects is the derived snapshot of all modifiers implied by a player's
// owned upgrades. Never persisted; recomputed on every sync. Zero/neutral
// defaults mean owning no upgrades yields no effect.
type Effects struct {
	// Research point production. Zero interval means the producer is off.
	ResearchRate     int
	ResearchInterval time.Duration

	// Essence production (fractional amounts allowed).
	EssenceRate     decimal.Decimal
	EssenceInterval time.Duration

	// Auto-brewer pipeline. Zero interval or batch size means off.
	AutoBrewInterval  time.Duration
	AutoBrewBatchSize int

	// Brewing modifiers read by the crafting rules.
	BrewSuccessBonus   float64
	MaterialSaveChance float64
	BrewBatchLimit     int

	// Hatching modifiers.
	HatchTimeReduction float64
	RarityBonus        float64

	// Player stat bonuses.
	CapacityBonus     int
	HealingMultiplier float64
	XPBonus           float64
	StaminaMaxBonus   int
	StaminaRegenBonus float64
	CooldownReduction float64
	GoldFindBonus     float64

	// Feature unlocks.
	RecyclerUnlocked bool
}

// NeutralEffects returns the record for a player owning no upgrades.
// Multiplicative fields start at 1, everything else at zero.
func NeutralEffects() Effects {
	return Effects{
		EssenceRate:       decimal.Zero,
		HealingMultiplier: 1.0,
	}
}

// =============================================================================
// EFFECT REGISTRY
// =============================================================================

// EffectApplier folds one upgrade's per-level payload into the record.
type EffectApplier func(p content.EffectPayload, e *Effects)

// effectRegistry maps upgrade ids to their appliers. Populated once at
// init; RegisterEffect allows extension packages to add entries.
var effectRegistry = map[content.UpgradeID]EffectApplier{}

// RegisterEffect binds an upgrade id to an applier. Registering an id
// twice replaces the previous applier.
func RegisterEffect(id content.UpgradeID, fn EffectApplier) {
	effectRegistry[id] = fn
}

func init() {
	RegisterEffect(content.UpgradeResearchStation, func(p content.EffectPayload, e *Effects) {
		e.ResearchRate += p.Points
		e.ResearchInterval = time.Duration(p.IntervalMinutes) * time.Minute
	})
	RegisterEffect(content.UpgradeEssenceCollector, func(p content.EffectPayload, e *Effects) {
		e.EssenceRate = e.EssenceRate.Add(decimal.NewFromFloat(p.Amount))
		e.EssenceInterval = time.Duration(p.IntervalMinutes) * time.Minute
	})
	RegisterEffect(content.UpgradeAutoBrewer, func(p content.EffectPayload, e *Effects) {
		e.AutoBrewInterval = time.Duration(p.IntervalMinutes) * time.Minute
		e.AutoBrewBatchSize += p.BatchSize
	})
	RegisterEffect(content.UpgradeStorageExpansion, func(p content.EffectPayload, e *Effects) {
		e.CapacityBonus += p.Capacity
	})
	RegisterEffect(content.UpgradeCauldron, func(p content.EffectPayload, e *Effects) {
		e.BrewSuccessBonus += p.Percent
	})
	RegisterEffect(content.UpgradeHerbPress, func(p content.EffectPayload, e *Effects) {
		e.MaterialSaveChance += p.Percent
	})
	RegisterEffect(content.UpgradeBrewRack, func(p content.EffectPayload, e *Effects) {
		e.BrewBatchLimit += p.BatchSize
	})
	RegisterEffect(content.UpgradeIncubator, func(p content.EffectPayload, e *Effects) {
		e.HatchTimeReduction += p.Percent
	})
	RegisterEffect(content.UpgradePrism, func(p content.EffectPayload, e *Effects) {
		e.RarityBonus += p.Percent
	})
	RegisterEffect(content.UpgradeHealingGarden, func(p content.EffectPayload, e *Effects) {
		e.HealingMultiplier *= p.Multiplier
	})
	RegisterEffect(content.UpgradeScholarDesk, func(p content.EffectPayload, e *Effects) {
		e.XPBonus += p.Percent
	})
	RegisterEffect(content.UpgradeStaminaSpring, func(p content.EffectPayload, e *Effects) {
		e.StaminaMaxBonus += p.Points
		e.StaminaRegenBonus += p.Percent
	})
	RegisterEffect(content.UpgradeChronoLens, func(p content.EffectPayload, e *Effects) {
		e.CooldownReduction += p.Percent
	})
	RegisterEffect(content.UpgradeGoldMagnet, func(p content.EffectPayload, e *Effects) {
		e.GoldFindBonus += p.Percent
	})
	RegisterEffect(content.UpgradeRecycler, func(p content.EffectPayload, e *Effects) {
		e.RecyclerUnlocked = e.RecyclerUnlocked || p.Unlock
	})
}

// =============================================================================
// AGGREGATION
// =============================================================================

// ComputeEffects flattens owned upgrade levels into one effect record.
// Unknown upgrade ids and ids missing from the catalog are skipped.
func ComputeEffects(upgrades []OwnedUpgrade, catalog content.Repository) Effects {
	effects := NeutralEffects()

	for _, owned := range upgrades {
		def, ok := catalog.Upgrade(owned.ID)
		if !ok {
			continue // content removed; player keeps the purchase record
		}
		apply, ok := effectRegistry[owned.ID]
		if !ok {
			continue
		}
		apply(def.EffectAt(owned.Level), &effects)
	}

	return effects
}
