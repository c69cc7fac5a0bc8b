// Package memory provides in-memory store implementations (for testing/dev).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/warp/lab-engine/lab"
)

// =============================================================================
// MEMORY STORE - In-memory implementation of all persistence interfaces
// =============================================================================

// Store keeps players, labs, and the journal in maps. Entities are deep
// copied on the way in and out so callers never share state with the
// store, matching the isolation a real database gives.
type Store struct {
	mu      sync.RWMutex
	players map[lab.PlayerID]*lab.Player
	labs    map[lab.PlayerID]*lab.Lab
	events  map[lab.PlayerID][]lab.ProductionEvent
}

func New() *Store {
	return &Store{
		players: make(map[lab.PlayerID]*lab.Player),
		labs:    make(map[lab.PlayerID]*lab.Lab),
		events:  make(map[lab.PlayerID][]lab.ProductionEvent),
	}
}

// -----------------------------------------------------------------------------
// PlayerStore
// -----------------------------------------------------------------------------

func (s *Store) GetPlayer(_ context.Context, id lab.PlayerID) (*lab.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, lab.ErrPlayerNotFound
	}
	return copyPlayer(p), nil
}

func (s *Store) SavePlayer(_ context.Context, p *lab.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players[p.ID] = copyPlayer(p)
	return nil
}

// ListPlayers returns all players, unordered.
func (s *Store) ListPlayers(_ context.Context) ([]*lab.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*lab.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, copyPlayer(p))
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// LabStore
// -----------------------------------------------------------------------------

func (s *Store) GetLab(_ context.Context, playerID lab.PlayerID) (*lab.Lab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.labs[playerID]
	if !ok {
		return nil, lab.ErrLabNotFound
	}
	return copyLab(l), nil
}

func (s *Store) SaveLab(_ context.Context, l *lab.Lab) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.labs[l.PlayerID] = copyLab(l)
	return nil
}

// -----------------------------------------------------------------------------
// Journal
// -----------------------------------------------------------------------------

func (s *Store) Append(_ context.Context, ev lab.ProductionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.PlayerID] = append(s.events[ev.PlayerID], ev)
	return nil
}

func (s *Store) Events(_ context.Context, playerID lab.PlayerID) ([]lab.ProductionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]lab.ProductionEvent(nil), s.events[playerID]...), nil
}

// -----------------------------------------------------------------------------
// Deep copies
// -----------------------------------------------------------------------------

func copyPlayer(p *lab.Player) *lab.Player {
	out := *p
	out.Inventory = p.Inventory.Clone()
	return &out
}

func copyLab(l *lab.Lab) *lab.Lab {
	out := *l
	out.Upgrades = append([]lab.OwnedUpgrade(nil), l.Upgrades...)
	out.AutoBrewer.HoldingBuffer = l.AutoBrewer.HoldingBuffer.Clone()
	out.AutoBrewer.LastTick = copyTime(l.AutoBrewer.LastTick)
	out.LastResearchTick = copyTime(l.LastResearchTick)
	out.LastEssenceTick = copyTime(l.LastEssenceTick)
	out.AppliedBonuses = make(map[lab.BonusKind]int, len(l.AppliedBonuses))
	for k, v := range l.AppliedBonuses {
		out.AppliedBonuses[k] = v
	}
	return &out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
