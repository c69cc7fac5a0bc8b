package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/lab-engine/content"
	"github.com/warp/lab-engine/lab"
	"github.com/warp/lab-engine/store/memory"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// =============================================================================
// ISOLATION - callers never share state with the store
// =============================================================================

func TestStore_PlayerIsolation(t *testing.T) {
	// Mutating an entity after save, or a loaded copy, must not leak into
	// the store. This is the isolation guarantee a real database gives.

	store := memory.New()
	ctx := context.Background()

	p := lab.NewPlayer("emp-1", "Mira", testNow)
	p.Inventory.Add(content.ItemHerb, 3)
	require.NoError(t, store.SavePlayer(ctx, p))

	p.Gold = 999
	p.Inventory.Add(content.ItemHerb, 100)

	got, err := store.GetPlayer(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Gold)
	assert.Equal(t, 3, got.Inventory.Count(content.ItemHerb))

	got.Inventory.Add(content.ItemHerb, 50)
	again, err := store.GetPlayer(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Inventory.Count(content.ItemHerb))
}

func TestStore_LabIsolation(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	l := lab.NewLab("emp-1", testNow)
	l.SetUpgradeLevel(content.UpgradeResearchStation, 1)
	anchor := testNow
	l.LastResearchTick = &anchor
	l.AppliedBonuses[lab.BonusCapacity] = 10
	require.NoError(t, store.SaveLab(ctx, l))

	// Mutate everything that is reference-typed on the original.
	l.SetUpgradeLevel(content.UpgradeResearchStation, 3)
	*l.LastResearchTick = testNow.Add(time.Hour)
	l.AppliedBonuses[lab.BonusCapacity] = 999
	l.AutoBrewer.HoldingBuffer.Add(content.ItemHealthPotion, 5)

	got, err := store.GetLab(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.UpgradeLevel(content.UpgradeResearchStation))
	assert.True(t, got.LastResearchTick.Equal(testNow))
	assert.Equal(t, 10, got.AppliedBonuses[lab.BonusCapacity])
	assert.Equal(t, 0, got.AutoBrewer.HoldingBuffer.Total())
}

// =============================================================================
// NOT FOUND
// =============================================================================

func TestStore_NotFoundErrors(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	_, err := store.GetPlayer(ctx, "ghost")
	assert.ErrorIs(t, err, lab.ErrPlayerNotFound)

	_, err = store.GetLab(ctx, "ghost")
	assert.ErrorIs(t, err, lab.ErrLabNotFound)
}

// =============================================================================
// JOURNAL
// =============================================================================

func TestStore_JournalPerPlayer(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	ev1 := lab.NewEvent("emp-1", lab.EventResearchGranted, testNow)
	ev2 := lab.NewEvent("emp-2", lab.EventEssenceGranted, testNow)
	require.NoError(t, store.Append(ctx, ev1))
	require.NoError(t, store.Append(ctx, ev2))

	events, err := store.Events(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, lab.EventResearchGranted, events[0].Type)

	empty, err := store.Events(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_ListPlayers(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.SavePlayer(ctx, lab.NewPlayer("emp-1", "A", testNow)))
	require.NoError(t, store.SavePlayer(ctx, lab.NewPlayer("emp-2", "B", testNow)))

	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 2)
}
