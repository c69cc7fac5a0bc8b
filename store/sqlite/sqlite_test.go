package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/lab-engine/content"
	"github.com/warp/lab-engine/lab"
	"github.com/warp/lab-engine/store/sqlite"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "lab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// PLAYERS
// =============================================================================

func TestPlayerRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := lab.NewPlayer("emp-1", "Mira", testNow)
	p.Gold = 750
	p.Capacity = 45
	p.Inventory.Add(content.ItemHerb, 5)
	p.Inventory.Add(content.ItemMysticEgg, 1)

	require.NoError(t, store.SavePlayer(ctx, p))

	got, err := store.GetPlayer(ctx, "emp-1")
	require.NoError(t, err)

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Mira", got.Name)
	assert.Equal(t, 750, got.Gold)
	assert.Equal(t, 45, got.Capacity)
	assert.Equal(t, 5, got.Inventory.Count(content.ItemHerb))
	assert.Equal(t, 1, got.Inventory.Count(content.ItemMysticEgg))
	assert.True(t, got.CreatedAt.Equal(testNow))
}

func TestPlayerSave_ReplacesInventory(t *testing.T) {
	// Items removed in memory must disappear from storage on the next save.

	store := newTestStore(t)
	ctx := context.Background()

	p := lab.NewPlayer("emp-1", "Mira", testNow)
	p.Inventory.Add(content.ItemHerb, 4)
	require.NoError(t, store.SavePlayer(ctx, p))

	require.True(t, p.Inventory.Remove(content.ItemHerb, 4))
	p.Inventory.Add(content.ItemHealthPotion, 2)
	require.NoError(t, store.SavePlayer(ctx, p))

	got, err := store.GetPlayer(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Inventory.Count(content.ItemHerb))
	assert.Equal(t, 2, got.Inventory.Count(content.ItemHealthPotion))
}

func TestGetPlayer_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetPlayer(context.Background(), "ghost")
	assert.ErrorIs(t, err, lab.ErrPlayerNotFound)
}

func TestListPlayers_OrderedByCreation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePlayer(ctx, lab.NewPlayer("emp-2", "B", testNow.Add(time.Hour))))
	require.NoError(t, store.SavePlayer(ctx, lab.NewPlayer("emp-1", "A", testNow)))

	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, lab.PlayerID("emp-1"), players[0].ID)
	assert.Equal(t, lab.PlayerID("emp-2"), players[1].ID)
}

// =============================================================================
// LABS
// =============================================================================

func TestLabRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	l := lab.NewLab("emp-1", testNow)
	l.SetUpgradeLevel(content.UpgradeResearchStation, 3)
	l.SetUpgradeLevel(content.UpgradeAutoBrewer, 1)
	l.ResearchPoints = 42
	l.Essence = decimal.RequireFromString("3.75")
	research := testNow.Add(-30 * time.Minute)
	l.LastResearchTick = &research
	l.AutoBrewer.SelectedRecipeID = "health_potion"
	brew := testNow.Add(-5 * time.Minute)
	l.AutoBrewer.LastTick = &brew
	l.AutoBrewer.HoldingBuffer.Add(content.ItemHealthPotion, 2)
	l.AppliedBonuses[lab.BonusCapacity] = 25

	require.NoError(t, store.SaveLab(ctx, l))

	got, err := store.GetLab(ctx, "emp-1")
	require.NoError(t, err)

	assert.Equal(t, 4, got.Level)
	assert.Equal(t, 3, got.UpgradeLevel(content.UpgradeResearchStation))
	assert.Equal(t, 42, got.ResearchPoints)
	assert.True(t, got.Essence.Equal(decimal.RequireFromString("3.75")))
	require.NotNil(t, got.LastResearchTick)
	assert.True(t, got.LastResearchTick.Equal(research))
	assert.Nil(t, got.LastEssenceTick, "unset anchors stay nil")
	assert.Equal(t, content.RecipeID("health_potion"), got.AutoBrewer.SelectedRecipeID)
	require.NotNil(t, got.AutoBrewer.LastTick)
	assert.True(t, got.AutoBrewer.LastTick.Equal(brew))
	assert.Equal(t, 2, got.AutoBrewer.HoldingBuffer.Count(content.ItemHealthPotion))
	assert.Equal(t, 25, got.AppliedBonuses[lab.BonusCapacity])
}

func TestLabSave_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	l := lab.NewLab("emp-1", testNow)
	require.NoError(t, store.SaveLab(ctx, l))

	l.ResearchPoints = 7
	l.AutoBrewer.SelectedRecipeID = "mana_potion"
	require.NoError(t, store.SaveLab(ctx, l))

	got, err := store.GetLab(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.ResearchPoints)
	assert.Equal(t, content.RecipeID("mana_potion"), got.AutoBrewer.SelectedRecipeID)
}

func TestGetLab_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetLab(context.Background(), "ghost")
	assert.ErrorIs(t, err, lab.ErrLabNotFound)
}

// =============================================================================
// JOURNAL
// =============================================================================

func TestJournal_AppendAndReadBackInOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := lab.NewEvent("emp-1", lab.EventResearchGranted, testNow)
	first.Quantity = 9
	first.Reason = "passive research"

	second := lab.NewEvent("emp-1", lab.EventBrewsProduced, testNow.Add(time.Minute))
	second.ItemID = content.ItemHealthPotion
	second.Quantity = 2
	second.Reason = "auto-brewer"

	other := lab.NewEvent("emp-2", lab.EventEssenceGranted, testNow)
	other.Amount = "1.5"

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))
	require.NoError(t, store.Append(ctx, other))

	events, err := store.Events(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, lab.EventResearchGranted, events[0].Type)
	assert.Equal(t, 9, events[0].Quantity)
	assert.Equal(t, lab.EventBrewsProduced, events[1].Type)
	assert.Equal(t, content.ItemHealthPotion, events[1].ItemID)
	assert.True(t, events[1].OccurredAt.Equal(testNow.Add(time.Minute)))
}

// =============================================================================
// ENGINE INTEGRATION
// =============================================================================

func TestEngineOnSQLite_FullSyncCycle(t *testing.T) {
	// The engine running on the SQLite store end to end: purchase, offline
	// gap, sync, reload from disk.

	store := newTestStore(t)
	ctx := context.Background()

	now := testNow
	engine := lab.NewEngine(content.DefaultCatalog(), store, store, store)
	engine.Clock = func() time.Time { return now }

	p := lab.NewPlayer("emp-1", "Mira", testNow)
	p.Gold = 500
	require.NoError(t, store.SavePlayer(ctx, p))

	l, err := engine.LoadOrCreateLab(ctx, "emp-1")
	require.NoError(t, err)

	_, _, err = engine.Purchase(ctx, p, l, content.UpgradeResearchStation)
	require.NoError(t, err)

	now = now.Add(240 * time.Minute)

	reloaded, err := store.GetLab(ctx, "emp-1")
	require.NoError(t, err)
	reloadedPlayer, err := store.GetPlayer(ctx, "emp-1")
	require.NoError(t, err)

	_, report, err := engine.Sync(ctx, reloadedPlayer, reloaded)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ResearchGranted)

	final, err := store.GetLab(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 2, final.ResearchPoints)
}
