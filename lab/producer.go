/*
producer.go - Closed-form resource producers

PURPOSE:
  The two simple producers: research points and essence. Both apply the
  shared tick reconciliation and then add rate x ticks to their counter in
  closed form. No per-tick loop is needed because nothing constrains these
  ticks; they always succeed.

NO-OP CONDITIONS:
  A zero rate or zero interval means the backing upgrade is not owned; the
  producer changes nothing, not even the anchor. The anchor only starts
  existing once production is possible.
*/
package lab

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESEARCH PRODUCER
// =============================================================================

type researchResult struct {
	Ticks   int
	Granted int
	Changed bool
}

// syncResearch advances the research point counter by rate x ticks.
func syncResearch(l *Lab, eff Effects, now time.Time) researchResult {
	if eff.ResearchRate <= 0 || eff.ResearchInterval <= 0 {
		return researchResult{}
	}

	res := ReconcileTicks(l.LastResearchTick, now, eff.ResearchInterval)
	if !res.Changed() {
		return researchResult{}
	}

	anchor := res.Anchor
	l.LastResearchTick = &anchor

	granted := eff.ResearchRate * res.Ticks
	l.ResearchPoints += granted

	return researchResult{Ticks: res.Ticks, Granted: granted, Changed: true}
}

// =============================================================================
// ESSENCE PRODUCER
// =============================================================================

type essenceResult struct {
	Ticks   int
	Granted decimal.Decimal
	Changed bool
}

// syncEssence advances the essence counter by rate x ticks.
func syncEssence(l *Lab, eff Effects, now time.Time) essenceResult {
	if !eff.EssenceRate.IsPositive() || eff.EssenceInterval <= 0 {
		return essenceResult{Granted: decimal.Zero}
	}

	res := ReconcileTicks(l.LastEssenceTick, now, eff.EssenceInterval)
	if !res.Changed() {
		return essenceResult{Granted: decimal.Zero}
	}

	anchor := res.Anchor
	l.LastEssenceTick = &anchor

	granted := eff.EssenceRate.Mul(decimal.NewFromInt(int64(res.Ticks)))
	l.Essence = l.Essence.Add(granted)

	return essenceResult{Ticks: res.Ticks, Granted: granted, Changed: true}
}
