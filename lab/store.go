/*
store.go - Persistence interfaces

PURPOSE:
  The engine persists through these interfaces and nothing else. Each save
  is atomic for a single entity; saving the lab and the player is NOT
  transactional across both, and the sync report's dirty flags exist so
  callers persist only what changed.

IMPLEMENTATIONS:
  - store/memory: In-memory, for tests and development
  - store/sqlite: SQLite with WAL, for production
*/
package lab

import "context"

// PlayerStore persists players.
type PlayerStore interface {
	// GetPlayer returns ErrPlayerNotFound if the id is unknown.
	GetPlayer(ctx context.Context, id PlayerID) (*Player, error)

	// SavePlayer upserts the full player state atomically.
	SavePlayer(ctx context.Context, p *Player) error
}

// LabStore persists labs, one per player.
type LabStore interface {
	// GetLab returns ErrLabNotFound if the player has no lab yet.
	GetLab(ctx context.Context, playerID PlayerID) (*Lab, error)

	// SaveLab upserts the full lab state atomically.
	SaveLab(ctx context.Context, l *Lab) error
}
