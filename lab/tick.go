/*
tick.go - Anchor reconciliation

PURPOSE:
  Converts a real-world time gap into whole production ticks. This is the
  one algorithm every producer shares: given the stored anchor, the current
  time, and the producer's interval, how many ticks elapsed and where does
  the anchor land.

CRITICAL INVARIANTS:
  1. A nil anchor means "never initialized": the first call establishes the
     anchor at now and grants zero ticks (no retroactive production).
  2. Zero elapsed ticks leaves the anchor untouched, which is what makes
     repeated calls idempotent.
  3. The new anchor is last + ticks*interval, never now. The leftover
     fraction of an interval stays banked for the next call.

SEE ALSO:
  - producer.go: Closed-form consumers (rate x ticks)
  - autoproducer.go: Per-tick consumer bounded by input availability
*/
package lab

import "time"

// =============================================================================
// TICK RECONCILIATION
// =============================================================================

// TickResult is the outcome of reconciling one anchor.
type TickResult struct {
	// Ticks is the number of whole intervals elapsed since the anchor.
	Ticks int

	// Anchor is where the stored anchor should now point.
	Anchor time.Time

	// Initialized is true when the anchor was nil and has just been
	// established at now.
	Initialized bool
}

// Changed reports whether the stored anchor needs to be rewritten.
func (r TickResult) Changed() bool {
	return r.Ticks > 0 || r.Initialized
}

// ReconcileTicks computes elapsed whole ticks for a producer.
//
// last == nil establishes the anchor at now with zero ticks. A
// non-positive interval grants nothing and leaves the anchor where it is
// (covers "upgrade not purchased"). Clocks that move backwards are treated
// as zero elapsed time.
func ReconcileTicks(last *time.Time, now time.Time, interval time.Duration) TickResult {
	if last == nil {
		return TickResult{Ticks: 0, Anchor: now, Initialized: true}
	}
	if interval <= 0 {
		return TickResult{Ticks: 0, Anchor: *last}
	}

	elapsed := now.Sub(*last)
	if elapsed < interval {
		return TickResult{Ticks: 0, Anchor: *last}
	}

	ticks := int(elapsed / interval)
	return TickResult{
		Ticks:  ticks,
		Anchor: last.Add(time.Duration(ticks) * interval),
	}
}
