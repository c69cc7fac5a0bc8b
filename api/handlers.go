/*
handlers.go - HTTP API handlers for the lab engine

PURPOSE:
  Exposes the engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates to the engine. This is the surrounding
  command layer: all user-facing validation errors surface here.

ENDPOINTS:
  Players:
    POST   /api/players                     Create player
    GET    /api/players/{id}                Get player
    GET    /api/players/{id}/journal        Production event history

  Lab:
    GET    /api/players/{id}/lab            Sync + read lab state
    POST   /api/players/{id}/lab/upgrades   Purchase upgrade
    POST   /api/players/{id}/lab/recipe     Select auto-brewer recipe
    POST   /api/players/{id}/lab/collect    Collect holding buffer
    POST   /api/players/{id}/hatch          Hatch an egg (rarity selection)

  Content:
    GET    /api/content/upgrades            List upgrade definitions
    GET    /api/content/recipes             List recipes
    POST   /api/admin/content/reload        Reload content files

PER-PLAYER SERIALIZATION:
  The engine requires at most one in-flight reconciliation per player.
  Every handler that loads-mutates-saves a player takes that player's
  mutex first. This is the advisory lock at the integration boundary.

ERROR HANDLING:
  - 400: validation errors (gold, level cap, unknown content id)
  - 404: player/lab not found
  - 500: storage failures

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/warp/lab-engine/content"
	"github.com/warp/lab-engine/lab"
)

// baseHatchMinutes is the unmodified incubation time of an egg.
const baseHatchMinutes = 180.0

// PlayerDirectory extends the engine's store view with listing, which only
// the API layer needs.
type PlayerDirectory interface {
	lab.PlayerStore
	ListPlayers(ctx context.Context) ([]*lab.Player, error)
}

// Reloader is implemented by content repositories that can re-read their
// backing files. Nil when the server runs on the built-in catalog.
type Reloader interface {
	Reload() error
}

// =============================================================================
// HANDLER
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine   *lab.Engine
	Players  PlayerDirectory
	Journal  lab.Journal
	Reloader Reloader

	// Roll returns a uniform float in [0, 1) for rarity draws and an index
	// in [0, n) for tie-breaks. Tests inject fixed values.
	Roll     func() float64
	TieBreak func(n int) int

	locks sync.Map // lab.PlayerID -> *sync.Mutex
}

// NewHandler creates a handler with the given engine and stores.
func NewHandler(engine *lab.Engine, players PlayerDirectory, journal lab.Journal, reloader Reloader) *Handler {
	return &Handler{
		Engine:   engine,
		Players:  players,
		Journal:  journal,
		Reloader: reloader,
		Roll:     rand.Float64,
		TieBreak: rand.Intn,
	}
}

// lockPlayer acquires the per-player mutex, creating it on first use.
func (h *Handler) lockPlayer(id lab.PlayerID) func() {
	v, _ := h.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// =============================================================================
// PLAYERS
// =============================================================================

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required")
		return
	}
	if req.Gold < 0 {
		writeError(w, http.StatusBadRequest, "gold must not be negative")
		return
	}
	for item, qty := range req.Items {
		if qty < 0 {
			writeError(w, http.StatusBadRequest, "negative quantity for item "+item)
			return
		}
	}

	id := lab.PlayerID(req.ID)
	unlock := h.lockPlayer(id)
	defer unlock()

	if _, err := h.Players.GetPlayer(r.Context(), id); err == nil {
		writeError(w, http.StatusConflict, "player already exists")
		return
	}

	p := lab.NewPlayer(id, req.Name, h.Engine.Clock())
	p.Gold = req.Gold
	for item, qty := range req.Items {
		p.Inventory.Add(content.ItemID(item), qty)
	}

	if err := h.Players.SavePlayer(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toPlayerDTO(p))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id := lab.PlayerID(chi.URLParam(r, "id"))
	p, err := h.Players.GetPlayer(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerDTO(p))
}

func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	id := lab.PlayerID(chi.URLParam(r, "id"))
	events, err := h.Journal.Events(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]EventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventDTO(ev))
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// LAB
// =============================================================================

// loadPair loads the player and their lab (creating the lab lazily).
// Caller must hold the player lock.
func (h *Handler) loadPair(ctx context.Context, id lab.PlayerID) (*lab.Player, *lab.Lab, error) {
	p, err := h.Players.GetPlayer(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	l, err := h.Engine.LoadOrCreateLab(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, l, nil
}

func (h *Handler) GetLab(w http.ResponseWriter, r *http.Request) {
	id := lab.PlayerID(chi.URLParam(r, "id"))
	unlock := h.lockPlayer(id)
	defer unlock()

	p, l, err := h.loadPair(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	effects, report, err := h.Engine.Sync(r.Context(), p, l)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LabViewDTO{
		Lab:     toLabDTO(l),
		Player:  toPlayerDTO(p),
		Effects: toEffectsDTO(effects),
		Report:  toSyncReportDTO(report),
	})
}

func (h *Handler) PurchaseUpgrade(w http.ResponseWriter, r *http.Request) {
	id := lab.PlayerID(chi.URLParam(r, "id"))
	var req PurchaseUpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UpgradeID == "" {
		writeError(w, http.StatusBadRequest, "upgrade_id is required")
		return
	}

	unlock := h.lockPlayer(id)
	defer unlock()

	p, l, err := h.loadPair(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	effects, report, err := h.Engine.Purchase(r.Context(), p, l, content.UpgradeID(req.UpgradeID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LabViewDTO{
		Lab:     toLabDTO(l),
		Player:  toPlayerDTO(p),
		Effects: toEffectsDTO(effects),
		Report:  toSyncReportDTO(report),
	})
}

func (h *Handler) SelectRecipe(w http.ResponseWriter, r *http.Request) {
	id := lab.PlayerID(chi.URLParam(r, "id"))
	var req SelectRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecipeID == "" {
		writeError(w, http.StatusBadRequest, "recipe_id is required")
		return
	}

	unlock := h.lockPlayer(id)
	defer unlock()

	p, l, err := h.loadPair(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Settle pending production under the old recipe before switching.
	if _, _, err := h.Engine.Sync(r.Context(), p, l); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.Engine.SelectRecipe(r.Context(), l, content.RecipeID(req.RecipeID)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLabDTO(l))
}

func (h *Handler) CollectBrews(w http.ResponseWriter, r *http.Request) {
	id := lab.PlayerID(chi.URLParam(r, "id"))
	unlock := h.lockPlayer(id)
	defer unlock()

	p, l, err := h.loadPair(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Sync first so the buffer includes production up to this moment.
	if _, _, err := h.Engine.Sync(r.Context(), p, l); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	collected, err := h.Engine.Collect(r.Context(), p, l)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CollectResponse{
		Collected: collected,
		Player:    toPlayerDTO(p),
		Lab:       toLabDTO(l),
	})
}

// =============================================================================
// HATCHING
// =============================================================================

func (h *Handler) Hatch(w http.ResponseWriter, r *http.Request) {
	id := lab.PlayerID(chi.URLParam(r, "id"))
	unlock := h.lockPlayer(id)
	defer unlock()

	p, l, err := h.loadPair(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	effects, _, err := h.Engine.Sync(r.Context(), p, l)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !p.Inventory.Remove(content.ItemMysticEgg, 1) {
		writeDomainError(w, lab.ErrMissingItem)
		return
	}

	pool := h.Engine.Content.Creatures()
	drawn := lab.PickRarity(h.Engine.Content.RarityWeights(), effects.RarityBonus, h.Roll())
	creature, ok := lab.SelectCreature(pool, drawn, h.TieBreak)
	if !ok {
		// Empty creature pool is a content error, not a player error.
		writeError(w, http.StatusInternalServerError, "no hatchable creatures configured")
		return
	}

	hatchMinutes := baseHatchMinutes * (1 - effects.HatchTimeReduction)
	if hatchMinutes < 0 {
		hatchMinutes = 0
	}

	ev := lab.NewEvent(id, lab.EventCreatureHatched, h.Engine.Clock())
	ev.Quantity = 1
	ev.Reason = string(creature.ID)
	if err := h.Journal.Append(r.Context(), ev); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.Players.SavePlayer(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, HatchResponse{
		CreatureID:       string(creature.ID),
		CreatureName:     creature.Name,
		Rarity:           string(creature.Rarity),
		HatchTimeMinutes: hatchMinutes,
	})
}

// =============================================================================
// CONTENT
// =============================================================================

func (h *Handler) ListUpgrades(w http.ResponseWriter, r *http.Request) {
	defs := h.Engine.Content.Upgrades()
	out := make([]UpgradeDTO, 0, len(defs))
	for _, u := range defs {
		out = append(out, toUpgradeDTO(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes := h.Engine.Content.Recipes()
	out := make([]RecipeDTO, 0, len(recipes))
	for _, rec := range recipes {
		out = append(out, toRecipeDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ReloadContent(w http.ResponseWriter, r *http.Request) {
	if h.Reloader == nil {
		writeError(w, http.StatusBadRequest, "server is running on built-in content")
		return
	}
	if err := h.Reloader.Reload(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case lab.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case lab.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
