/*
bonus.go - Derived bonus reconciliation

PURPOSE:
  Some effects must be baked into a separately-owned mutable stat exactly
  once per change: the storage upgrade's capacity bonus lives inside
  Player.Capacity, which other systems also read and mutate. The
  reconciler diffs the currently effective bonus against the value already
  applied and folds in only the delta, in either direction.

IDEMPOTENCE:
  AppliedBonuses[kind] records what has been folded in. Equal effective
  and applied values are a no-op, so repeated syncs never double-apply,
  and removing an upgrade retracts exactly what it granted.
*/
package lab

// bonusResult reports what one reconciliation pass changed.
type bonusResult struct {
	CapacityDelta int
	LabChanged    bool
	PlayerChanged bool
}

// syncBonuses reconciles every derived bonus kind. Currently the only
// kind is capacity; new kinds follow the same applied-vs-effective diff.
func syncBonuses(l *Lab, p *Player, eff Effects) bonusResult {
	out := bonusResult{}

	applied := l.AppliedBonuses[BonusCapacity]
	delta := eff.CapacityBonus - applied
	if delta != 0 {
		p.Capacity += delta
		if p.Capacity < BaseCapacity {
			p.Capacity = BaseCapacity
		}
		l.AppliedBonuses[BonusCapacity] = eff.CapacityBonus
		out.CapacityDelta = delta
		out.LabChanged = true
		out.PlayerChanged = true
	}

	return out
}
