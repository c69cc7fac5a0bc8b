/*
selection.go - Rarity-weighted selection

PURPOSE:
  Picks a rarity tier from a weighted table, with the lab's rarity bonus
  tilting the distribution toward rarer tiers, then picks a candidate from
  that tier. When the drawn tier has no candidates the search falls back
  to the NEAREST RARER tier first, then the nearest commoner tier.

  The rarer-first fallback order is a deliberate distribution choice, not
  incidental: changing it changes effective drop rates. Preserve it.

BONUS APPLICATION:
  Every tier above the lowest tier present in the weight table has its
  weight multiplied by (1 + bonus); weights are then renormalized. The
  lowest weighted tier is never boosted, so a bonus always shifts
  probability mass away from it, whatever tier that happens to be.
*/
package lab

import (
	"github.com/warp/lab-engine/content"
)

// =============================================================================
// RARITY DRAW
// =============================================================================

// BoostedWeights applies the rarity bonus to a base weight table and
// renormalizes so the weights sum to 1. Unknown rarities are dropped.
// The lowest tier carrying weight in the table is the one left unboosted;
// a table that omits common still keeps its own lowest tier fixed.
func BoostedWeights(base map[content.Rarity]float64, bonus float64) map[content.Rarity]float64 {
	if bonus < 0 {
		bonus = 0
	}

	lowest := len(content.RarityScale)
	for r, w := range base {
		if idx := content.RarityIndex(r); idx >= 0 && w > 0 && idx < lowest {
			lowest = idx
		}
	}

	boosted := make(map[content.Rarity]float64, len(base))
	total := 0.0
	for r, w := range base {
		idx := content.RarityIndex(r)
		if idx < 0 || w <= 0 {
			continue
		}
		if idx > lowest {
			w *= 1 + bonus
		}
		boosted[r] = w
		total += w
	}
	if total == 0 {
		return boosted
	}
	for r := range boosted {
		boosted[r] /= total
	}
	return boosted
}

// PickRarity draws a tier from the boosted table. roll must be in [0, 1).
// Walks the scale in ascending rarity order so a given roll always lands
// deterministically for a given table.
func PickRarity(base map[content.Rarity]float64, bonus, roll float64) content.Rarity {
	weights := BoostedWeights(base, bonus)

	cumulative := 0.0
	for _, r := range content.RarityScale {
		w, ok := weights[r]
		if !ok {
			continue
		}
		cumulative += w
		if roll < cumulative {
			return r
		}
	}
	// Floating point can leave the last sliver uncovered; the rarest
	// weighted tier takes it.
	for i := len(content.RarityScale) - 1; i >= 0; i-- {
		if _, ok := weights[content.RarityScale[i]]; ok {
			return content.RarityScale[i]
		}
	}
	return content.RarityCommon
}

// =============================================================================
// CANDIDATE SELECTION
// =============================================================================

// SelectCreature picks a creature of the drawn tier, falling back to the
// nearest rarer tier with candidates, then the nearest commoner tier.
// Returns false only when the candidate pool is empty. tieBreak picks an
// index in [0, n) among the tier's candidates.
func SelectCreature(pool []content.Creature, drawn content.Rarity, tieBreak func(n int) int) (content.Creature, bool) {
	if len(pool) == 0 {
		return content.Creature{}, false
	}

	byTier := make(map[content.Rarity][]content.Creature)
	for _, c := range pool {
		byTier[c.Rarity] = append(byTier[c.Rarity], c)
	}

	start := content.RarityIndex(drawn)
	if start < 0 {
		start = 0
	}

	// Rarer tiers first, in increasing distance, then commoner tiers.
	var order []content.Rarity
	for i := start; i < len(content.RarityScale); i++ {
		order = append(order, content.RarityScale[i])
	}
	for i := start - 1; i >= 0; i-- {
		order = append(order, content.RarityScale[i])
	}

	for _, tier := range order {
		candidates := byTier[tier]
		if len(candidates) == 0 {
			continue
		}
		return candidates[tieBreak(len(candidates))], true
	}
	return content.Creature{}, false
}
