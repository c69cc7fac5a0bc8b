package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/lab-engine/api"
	"github.com/warp/lab-engine/content"
	"github.com/warp/lab-engine/lab"
	"github.com/warp/lab-engine/store/memory"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	server *httptest.Server
	store  *memory.Store
	engine *lab.Engine
	now    time.Time
}

func newHarness(t *testing.T, catalog content.Repository) *harness {
	t.Helper()

	h := &harness{store: memory.New(), now: testNow}
	h.engine = lab.NewEngine(catalog, h.store, h.store, h.store)
	h.engine.Clock = func() time.Time { return h.now }

	handler := api.NewHandler(h.engine, h.store, h.store, nil)
	handler.Roll = func() float64 { return 0.0 }
	handler.TieBreak = func(n int) int { return 0 }

	h.server = httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(h.server.Close)
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (h *harness) createPlayer(t *testing.T, id string, gold int, items map[string]int) {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/api/players", api.CreatePlayerRequest{
		ID: id, Name: "Tester " + id, Gold: gold, Items: items,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// =============================================================================
// PLAYERS
// =============================================================================

func TestAPI_CreatePlayer(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())

	resp := h.do(t, http.MethodPost, "/api/players", api.CreatePlayerRequest{
		ID: "emp-1", Name: "Mira", Gold: 500,
		Items: map[string]int{"herb": 5},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dto := decode[api.PlayerDTO](t, resp)
	assert.Equal(t, "emp-1", dto.ID)
	assert.Equal(t, 500, dto.Gold)
	assert.Equal(t, lab.BaseCapacity, dto.Capacity)
	assert.Equal(t, 5, dto.Inventory["herb"])
}

func TestAPI_CreatePlayer_Duplicate(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 0, nil)

	resp := h.do(t, http.MethodPost, "/api/players", api.CreatePlayerRequest{
		ID: "emp-1", Name: "Mira",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_CreatePlayer_MissingFields(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())

	resp := h.do(t, http.MethodPost, "/api/players", api.CreatePlayerRequest{Name: "Mira"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CreatePlayer_NegativeValuesRejected(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())

	resp := h.do(t, http.MethodPost, "/api/players", api.CreatePlayerRequest{
		ID: "emp-1", Name: "Mira", Gold: -50,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/players", api.CreatePlayerRequest{
		ID: "emp-1", Name: "Mira",
		Items: map[string]int{"herb": -3},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Neither attempt created the player.
	resp = h.do(t, http.MethodGet, "/api/players/emp-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_GetPlayer_NotFound(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())

	resp := h.do(t, http.MethodGet, "/api/players/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decode[api.ErrorResponse](t, resp)
	assert.NotEmpty(t, body.Error)
}

// =============================================================================
// LAB READ (sync on access)
// =============================================================================

func TestAPI_GetLab_CreatesLabAndSyncs(t *testing.T) {
	// GIVEN: A new player who has never touched their lab
	// WHEN: Reading the lab
	// THEN: A lab appears with neutral state and the read itself syncs

	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 1000, nil)

	resp := h.do(t, http.MethodGet, "/api/players/emp-1/lab", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := decode[api.LabViewDTO](t, resp)
	assert.Equal(t, "emp-1", view.Lab.PlayerID)
	assert.Equal(t, 0, view.Lab.Level)
	assert.Equal(t, "0", view.Lab.Essence)
	assert.Equal(t, 1.0, view.Effects.HealingMultiplier)
}

func TestAPI_GetLab_GrantsOfflineProduction(t *testing.T) {
	// Buy research_station, wait 350 minutes, read the lab: 3 ticks land.

	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 2000, nil)

	for i := 0; i < 3; i++ {
		resp := h.do(t, http.MethodPost, "/api/players/emp-1/lab/upgrades",
			api.PurchaseUpgradeRequest{UpgradeID: "research_station"})
		require.Equal(t, http.StatusOK, resp.StatusCode, "purchase %d", i+1)
	}

	h.now = h.now.Add(350 * time.Minute)

	resp := h.do(t, http.MethodGet, "/api/players/emp-1/lab", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := decode[api.LabViewDTO](t, resp)
	assert.Equal(t, 9, view.Lab.ResearchPoints)
	assert.Equal(t, 9, view.Report.ResearchGranted)
	assert.Equal(t, 3, view.Lab.Level)
}

// =============================================================================
// PURCHASES
// =============================================================================

func TestAPI_PurchaseUpgrade(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 500, nil)

	resp := h.do(t, http.MethodPost, "/api/players/emp-1/lab/upgrades",
		api.PurchaseUpgradeRequest{UpgradeID: "storage_expansion"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := decode[api.LabViewDTO](t, resp)
	assert.Equal(t, 380, view.Player.Gold)
	assert.Equal(t, lab.BaseCapacity+10, view.Player.Capacity)
	assert.Equal(t, 10, view.Report.CapacityDelta)
}

func TestAPI_PurchaseUpgrade_InsufficientGold(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 5, nil)

	resp := h.do(t, http.MethodPost, "/api/players/emp-1/lab/upgrades",
		api.PurchaseUpgradeRequest{UpgradeID: "research_station"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_PurchaseUpgrade_UnknownID(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 5000, nil)

	resp := h.do(t, http.MethodPost, "/api/players/emp-1/lab/upgrades",
		api.PurchaseUpgradeRequest{UpgradeID: "flux_capacitor"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// BREWING FLOW (select -> wait -> collect)
// =============================================================================

func TestAPI_BrewAndCollectFlow(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 5000, map[string]int{"herb": 10})

	// auto_brewer level 1: 90 minute interval, batch size 1.
	resp := h.do(t, http.MethodPost, "/api/players/emp-1/lab/upgrades",
		api.PurchaseUpgradeRequest{UpgradeID: "auto_brewer"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/players/emp-1/lab/recipe",
		api.SelectRecipeRequest{RecipeID: "health_potion"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	labDTO := decode[api.LabDTO](t, resp)
	assert.Equal(t, "health_potion", labDTO.SelectedRecipeID)

	// Three intervals pass: 3 batches at 2 herb each.
	h.now = h.now.Add(270 * time.Minute)

	resp = h.do(t, http.MethodPost, "/api/players/emp-1/lab/collect", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	collected := decode[api.CollectResponse](t, resp)
	assert.Equal(t, 3, collected.Collected)
	assert.Equal(t, 3, collected.Player.Inventory["health_potion"])
	assert.Equal(t, 4, collected.Player.Inventory["herb"])
	assert.Empty(t, collected.Lab.HoldingBuffer)
}

func TestAPI_SelectRecipe_Unknown(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 0, nil)

	resp := h.do(t, http.MethodPost, "/api/players/emp-1/lab/recipe",
		api.SelectRecipeRequest{RecipeID: "philosophers_stone"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// HATCHING
// =============================================================================

func TestAPI_Hatch_ConsumesEggAndPicksCreature(t *testing.T) {
	// Roll is pinned to 0.0, so the draw lands on common and the tie-break
	// picks the first common creature deterministically.

	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 0, map[string]int{"mystic_egg": 1})

	resp := h.do(t, http.MethodPost, "/api/players/emp-1/hatch", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	hatched := decode[api.HatchResponse](t, resp)
	assert.Equal(t, "common", hatched.Rarity)
	assert.NotEmpty(t, hatched.CreatureID)
	assert.Equal(t, 180.0, hatched.HatchTimeMinutes)

	// The egg is gone.
	resp = h.do(t, http.MethodPost, "/api/players/emp-1/hatch", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Hatch_IncubatorShortensHatchTime(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 5000, map[string]int{"mystic_egg": 1})

	// incubator level 1: 10% hatch time reduction.
	resp := h.do(t, http.MethodPost, "/api/players/emp-1/lab/upgrades",
		api.PurchaseUpgradeRequest{UpgradeID: "incubator"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/players/emp-1/hatch", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	hatched := decode[api.HatchResponse](t, resp)
	assert.InDelta(t, 162.0, hatched.HatchTimeMinutes, 1e-9)
}

// =============================================================================
// JOURNAL
// =============================================================================

func TestAPI_Journal_RecordsTheSessionHistory(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 500, nil)

	resp := h.do(t, http.MethodPost, "/api/players/emp-1/lab/upgrades",
		api.PurchaseUpgradeRequest{UpgradeID: "research_station"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	h.now = h.now.Add(240 * time.Minute)
	resp = h.do(t, http.MethodGet, "/api/players/emp-1/lab", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/players/emp-1/journal", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := decode[[]api.EventDTO](t, resp)
	require.Len(t, events, 2)
	assert.Equal(t, string(lab.EventUpgradePurchased), events[0].Type)
	assert.Equal(t, string(lab.EventResearchGranted), events[1].Type)
	assert.Equal(t, 2, events[1].Quantity)
}

// =============================================================================
// CONTENT
// =============================================================================

func TestAPI_ListUpgradesAndRecipes(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())

	resp := h.do(t, http.MethodGet, "/api/content/upgrades", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upgrades := decode[[]api.UpgradeDTO](t, resp)
	assert.Len(t, upgrades, 15)

	resp = h.do(t, http.MethodGet, "/api/content/recipes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recipes := decode[[]api.RecipeDTO](t, resp)
	assert.Len(t, recipes, 2)
}

func TestAPI_ReloadContent_NoReloaderConfigured(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())

	resp := h.do(t, http.MethodPost, "/api/admin/content/reload", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// SERIALIZATION GUARANTEE
// =============================================================================

func TestAPI_ConcurrentLabReads_NoDoubleProduction(t *testing.T) {
	// Two racing lab reads after a long absence must not both grant the
	// backlog; the per-player lock serializes them.

	h := newHarness(t, content.DefaultCatalog())
	h.createPlayer(t, "emp-1", 500, nil)

	resp := h.do(t, http.MethodPost, "/api/players/emp-1/lab/upgrades",
		api.PurchaseUpgradeRequest{UpgradeID: "research_station"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	h.now = h.now.Add(1200 * time.Minute) // 10 ticks at 120 min

	done := make(chan struct{})
	for i := 0; i < 2; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			r, err := http.Get(h.server.URL + "/api/players/emp-1/lab")
			if err == nil {
				r.Body.Close()
			}
		}()
	}
	<-done
	<-done

	resp = h.do(t, http.MethodGet, "/api/players/emp-1/lab", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[api.LabViewDTO](t, resp)
	assert.Equal(t, 10, view.Lab.ResearchPoints)
}

func TestAPI_ErrorBodyShape(t *testing.T) {
	h := newHarness(t, content.DefaultCatalog())

	resp := h.do(t, http.MethodGet, "/api/players/ghost/lab", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decode[api.ErrorResponse](t, resp)
	assert.Contains(t, body.Error, "not found")
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
