/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements lab.PlayerStore, lab.LabStore, and lab.Journal on SQLite.
  The same patterns apply to PostgreSQL; only minor dialect differences.

KEY TABLES:
  players:           Player stats (gold, capacity)
  player_items:      Player inventory multiset
  labs:              Counters, tick anchors, selected recipe
  lab_upgrades:      Owned upgrade levels
  lab_holding:       Auto-brewer holding buffer
  lab_bonuses:       Applied bonus values (delta detection)
  production_events: Append-only journal

ATOMICITY:
  SavePlayer and SaveLab each run in one database transaction, so a single
  entity is always written atomically. The two saves are deliberately NOT
  wrapped in a shared transaction: the engine's contract is per-entity
  atomicity with independent dirty flags.

JOURNAL:
  production_events is append-only: no UPDATE, no DELETE.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/lab.db")
  engine := lab.NewEngine(catalog, store, store, store)

SEE ALSO:
  - lab/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/lab-engine/content"
	"github.com/warp/lab-engine/lab"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		gold INTEGER NOT NULL DEFAULT 0,
		capacity INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS player_items (
		player_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		PRIMARY KEY (player_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS labs (
		player_id TEXT PRIMARY KEY,
		level INTEGER NOT NULL DEFAULT 0,
		research_points INTEGER NOT NULL DEFAULT 0,
		last_research_tick TEXT,
		essence TEXT NOT NULL DEFAULT '0',
		last_essence_tick TEXT,
		selected_recipe_id TEXT NOT NULL DEFAULT '',
		last_brew_tick TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lab_upgrades (
		player_id TEXT NOT NULL,
		upgrade_id TEXT NOT NULL,
		level INTEGER NOT NULL,
		PRIMARY KEY (player_id, upgrade_id)
	);

	CREATE TABLE IF NOT EXISTS lab_holding (
		player_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		PRIMARY KEY (player_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS lab_bonuses (
		player_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		value INTEGER NOT NULL,
		PRIMARY KEY (player_id, kind)
	);

	-- Append-only production journal
	CREATE TABLE IF NOT EXISTS production_events (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		item_id TEXT,
		quantity INTEGER NOT NULL DEFAULT 0,
		amount TEXT,
		reason TEXT,
		occurred_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_player
		ON production_events(player_id, occurred_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TIME ENCODING - nullable RFC3339 anchors
// =============================================================================

func encodeTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// =============================================================================
// PLAYER STORE
// =============================================================================

func (s *Store) GetPlayer(ctx context.Context, id lab.PlayerID) (*lab.Player, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, gold, capacity, created_at
		FROM players WHERE id = ?`, string(id))

	var p lab.Player
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Gold, &p.Capacity, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, lab.ErrPlayerNotFound
		}
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		p.CreatedAt = t
	}

	p.Inventory = lab.NewInventory()
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, quantity FROM player_items WHERE player_id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item string
		var qty int
		if err := rows.Scan(&item, &qty); err != nil {
			return nil, err
		}
		if qty > 0 {
			p.Inventory[content.ItemID(item)] = qty
		}
	}
	return &p, rows.Err()
}

func (s *Store) SavePlayer(ctx context.Context, p *lab.Player) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO players (id, name, gold, capacity, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			gold = excluded.gold,
			capacity = excluded.capacity`,
		string(p.ID), p.Name, p.Gold, p.Capacity,
		p.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_items WHERE player_id = ?`, string(p.ID)); err != nil {
		return err
	}
	for item, qty := range p.Inventory {
		if qty <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO player_items (player_id, item_id, quantity)
			VALUES (?, ?, ?)`, string(p.ID), string(item), qty); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListPlayers returns all players ordered by creation time.
func (s *Store) ListPlayers(ctx context.Context) ([]*lab.Player, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM players ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []lab.PlayerID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, lab.PlayerID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*lab.Player, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetPlayer(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// =============================================================================
// LAB STORE
// =============================================================================

func (s *Store) GetLab(ctx context.Context, playerID lab.PlayerID) (*lab.Lab, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT player_id, level, research_points, last_research_tick,
		       essence, last_essence_tick, selected_recipe_id, last_brew_tick,
		       created_at
		FROM labs WHERE player_id = ?`, string(playerID))

	l := lab.NewLab(playerID, time.Time{})
	var lastResearch, lastEssence, lastBrew sql.NullString
	var essence, createdAt, recipeID string
	if err := row.Scan(&l.PlayerID, &l.Level, &l.ResearchPoints, &lastResearch,
		&essence, &lastEssence, &recipeID, &lastBrew, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, lab.ErrLabNotFound
		}
		return nil, err
	}

	var err error
	if l.LastResearchTick, err = decodeTime(lastResearch); err != nil {
		return nil, err
	}
	if l.LastEssenceTick, err = decodeTime(lastEssence); err != nil {
		return nil, err
	}
	if l.AutoBrewer.LastTick, err = decodeTime(lastBrew); err != nil {
		return nil, err
	}
	if l.Essence, err = decimal.NewFromString(essence); err != nil {
		return nil, fmt.Errorf("corrupt essence value %q: %w", essence, err)
	}
	l.AutoBrewer.SelectedRecipeID = content.RecipeID(recipeID)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		l.CreatedAt = t
	}

	if err := s.loadLabChildren(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Store) loadLabChildren(ctx context.Context, l *lab.Lab) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT upgrade_id, level FROM lab_upgrades WHERE player_id = ?`, string(l.PlayerID))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var level int
		if err := rows.Scan(&id, &level); err != nil {
			return err
		}
		l.Upgrades = append(l.Upgrades, lab.OwnedUpgrade{ID: content.UpgradeID(id), Level: level})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	holding, err := s.db.QueryContext(ctx, `
		SELECT item_id, quantity FROM lab_holding WHERE player_id = ?`, string(l.PlayerID))
	if err != nil {
		return err
	}
	defer holding.Close()
	for holding.Next() {
		var item string
		var qty int
		if err := holding.Scan(&item, &qty); err != nil {
			return err
		}
		if qty > 0 {
			l.AutoBrewer.HoldingBuffer[content.ItemID(item)] = qty
		}
	}
	if err := holding.Err(); err != nil {
		return err
	}

	bonuses, err := s.db.QueryContext(ctx, `
		SELECT kind, value FROM lab_bonuses WHERE player_id = ?`, string(l.PlayerID))
	if err != nil {
		return err
	}
	defer bonuses.Close()
	for bonuses.Next() {
		var kind string
		var value int
		if err := bonuses.Scan(&kind, &value); err != nil {
			return err
		}
		l.AppliedBonuses[lab.BonusKind(kind)] = value
	}
	return bonuses.Err()
}

func (s *Store) SaveLab(ctx context.Context, l *lab.Lab) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO labs (player_id, level, research_points, last_research_tick,
			essence, last_essence_tick, selected_recipe_id, last_brew_tick, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			level = excluded.level,
			research_points = excluded.research_points,
			last_research_tick = excluded.last_research_tick,
			essence = excluded.essence,
			last_essence_tick = excluded.last_essence_tick,
			selected_recipe_id = excluded.selected_recipe_id,
			last_brew_tick = excluded.last_brew_tick`,
		string(l.PlayerID), l.Level, l.ResearchPoints, encodeTime(l.LastResearchTick),
		l.Essence.String(), encodeTime(l.LastEssenceTick),
		string(l.AutoBrewer.SelectedRecipeID), encodeTime(l.AutoBrewer.LastTick),
		l.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	for _, stmt := range []string{
		`DELETE FROM lab_upgrades WHERE player_id = ?`,
		`DELETE FROM lab_holding WHERE player_id = ?`,
		`DELETE FROM lab_bonuses WHERE player_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, string(l.PlayerID)); err != nil {
			return err
		}
	}

	for _, u := range l.Upgrades {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lab_upgrades (player_id, upgrade_id, level)
			VALUES (?, ?, ?)`, string(l.PlayerID), string(u.ID), u.Level); err != nil {
			return err
		}
	}
	for item, qty := range l.AutoBrewer.HoldingBuffer {
		if qty <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lab_holding (player_id, item_id, quantity)
			VALUES (?, ?, ?)`, string(l.PlayerID), string(item), qty); err != nil {
			return err
		}
	}
	for kind, value := range l.AppliedBonuses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lab_bonuses (player_id, kind, value)
			VALUES (?, ?, ?)`, string(l.PlayerID), string(kind), value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// =============================================================================
// JOURNAL
// =============================================================================

func (s *Store) Append(ctx context.Context, ev lab.ProductionEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO production_events (id, player_id, event_type, item_id, quantity, amount, reason, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.PlayerID), string(ev.Type), string(ev.ItemID),
		ev.Quantity, ev.Amount, ev.Reason,
		ev.OccurredAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) Events(ctx context.Context, playerID lab.PlayerID) ([]lab.ProductionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, player_id, event_type, item_id, quantity, amount, reason, occurred_at
		FROM production_events
		WHERE player_id = ?
		ORDER BY occurred_at, id`, string(playerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []lab.ProductionEvent
	for rows.Next() {
		var ev lab.ProductionEvent
		var item, amount, reason sql.NullString
		var occurredAt string
		if err := rows.Scan(&ev.ID, &ev.PlayerID, &ev.Type, &item, &ev.Quantity, &amount, &reason, &occurredAt); err != nil {
			return nil, err
		}
		ev.ItemID = content.ItemID(item.String)
		ev.Amount = amount.String
		ev.Reason = reason.String
		if t, err := time.Parse(time.RFC3339Nano, occurredAt); err == nil {
			ev.OccurredAt = t
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
