/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers; DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/lab-engine/content"
	"github.com/warp/lab-engine/lab"
)

// =============================================================================
// PLAYERS
// =============================================================================

type CreatePlayerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Gold int    `json:"gold"`
	// Items seeds the starting inventory (item id -> quantity).
	Items map[string]int `json:"items,omitempty"`
}

type PlayerDTO struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Gold      int            `json:"gold"`
	Capacity  int            `json:"capacity"`
	Inventory map[string]int `json:"inventory"`
	CreatedAt string         `json:"created_at,omitempty"`
}

func toPlayerDTO(p *lab.Player) PlayerDTO {
	inv := make(map[string]int, len(p.Inventory))
	for item, qty := range p.Inventory {
		inv[string(item)] = qty
	}
	return PlayerDTO{
		ID:        string(p.ID),
		Name:      p.Name,
		Gold:      p.Gold,
		Capacity:  p.Capacity,
		Inventory: inv,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// LAB
// =============================================================================

type OwnedUpgradeDTO struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

type LabDTO struct {
	PlayerID         string            `json:"player_id"`
	Level            int               `json:"level"`
	Upgrades         []OwnedUpgradeDTO `json:"upgrades"`
	ResearchPoints   int               `json:"research_points"`
	Essence          string            `json:"essence"`
	SelectedRecipeID string            `json:"selected_recipe_id,omitempty"`
	HoldingBuffer    map[string]int    `json:"holding_buffer"`
}

func toLabDTO(l *lab.Lab) LabDTO {
	upgrades := make([]OwnedUpgradeDTO, 0, len(l.Upgrades))
	for _, u := range l.Upgrades {
		upgrades = append(upgrades, OwnedUpgradeDTO{ID: string(u.ID), Level: u.Level})
	}
	holding := make(map[string]int, len(l.AutoBrewer.HoldingBuffer))
	for item, qty := range l.AutoBrewer.HoldingBuffer {
		holding[string(item)] = qty
	}
	return LabDTO{
		PlayerID:         string(l.PlayerID),
		Level:            l.Level,
		Upgrades:         upgrades,
		ResearchPoints:   l.ResearchPoints,
		Essence:          l.Essence.String(),
		SelectedRecipeID: string(l.AutoBrewer.SelectedRecipeID),
		HoldingBuffer:    holding,
	}
}

// EffectsDTO is the flattened effect record exposed to clients.
type EffectsDTO struct {
	ResearchRate            int     `json:"research_rate"`
	ResearchIntervalMinutes float64 `json:"research_interval_minutes"`
	EssenceRate             string  `json:"essence_rate"`
	EssenceIntervalMinutes  float64 `json:"essence_interval_minutes"`
	AutoBrewIntervalMinutes float64 `json:"auto_brew_interval_minutes"`
	AutoBrewBatchSize       int     `json:"auto_brew_batch_size"`
	BrewSuccessBonus        float64 `json:"brew_success_bonus"`
	MaterialSaveChance      float64 `json:"material_save_chance"`
	BrewBatchLimit          int     `json:"brew_batch_limit"`
	HatchTimeReduction      float64 `json:"hatch_time_reduction"`
	RarityBonus             float64 `json:"rarity_bonus"`
	CapacityBonus           int     `json:"capacity_bonus"`
	HealingMultiplier       float64 `json:"healing_multiplier"`
	XPBonus                 float64 `json:"xp_bonus"`
	StaminaMaxBonus         int     `json:"stamina_max_bonus"`
	StaminaRegenBonus       float64 `json:"stamina_regen_bonus"`
	CooldownReduction       float64 `json:"cooldown_reduction"`
	GoldFindBonus           float64 `json:"gold_find_bonus"`
	RecyclerUnlocked        bool    `json:"recycler_unlocked"`
}

func toEffectsDTO(e lab.Effects) EffectsDTO {
	return EffectsDTO{
		ResearchRate:            e.ResearchRate,
		ResearchIntervalMinutes: e.ResearchInterval.Minutes(),
		EssenceRate:             e.EssenceRate.String(),
		EssenceIntervalMinutes:  e.EssenceInterval.Minutes(),
		AutoBrewIntervalMinutes: e.AutoBrewInterval.Minutes(),
		AutoBrewBatchSize:       e.AutoBrewBatchSize,
		BrewSuccessBonus:        e.BrewSuccessBonus,
		MaterialSaveChance:      e.MaterialSaveChance,
		BrewBatchLimit:          e.BrewBatchLimit,
		HatchTimeReduction:      e.HatchTimeReduction,
		RarityBonus:             e.RarityBonus,
		CapacityBonus:           e.CapacityBonus,
		HealingMultiplier:       e.HealingMultiplier,
		XPBonus:                 e.XPBonus,
		StaminaMaxBonus:         e.StaminaMaxBonus,
		StaminaRegenBonus:       e.StaminaRegenBonus,
		CooldownReduction:       e.CooldownReduction,
		GoldFindBonus:           e.GoldFindBonus,
		RecyclerUnlocked:        e.RecyclerUnlocked,
	}
}

// SyncReportDTO mirrors lab.SyncReport for clients that want to show
// "while you were away" summaries.
type SyncReportDTO struct {
	ResearchGranted  int    `json:"research_granted,omitempty"`
	EssenceGranted   string `json:"essence_granted,omitempty"`
	BrewBatches      int    `json:"brew_batches,omitempty"`
	BrewUnits        int    `json:"brew_units,omitempty"`
	BrewTicksPending int    `json:"brew_ticks_pending,omitempty"`
	RecipeCleared    bool   `json:"recipe_cleared,omitempty"`
	CapacityDelta    int    `json:"capacity_delta,omitempty"`
}

func toSyncReportDTO(r lab.SyncReport) SyncReportDTO {
	return SyncReportDTO{
		ResearchGranted:  r.ResearchGranted,
		EssenceGranted:   r.EssenceGranted,
		BrewBatches:      r.BrewBatches,
		BrewUnits:        r.BrewUnits,
		BrewTicksPending: r.BrewTicksPending,
		RecipeCleared:    r.RecipeCleared,
		CapacityDelta:    r.CapacityDelta,
	}
}

// LabViewDTO is the full response of a lab read: entity, effect record,
// and what the sync that served the read changed.
type LabViewDTO struct {
	Lab     LabDTO        `json:"lab"`
	Player  PlayerDTO     `json:"player"`
	Effects EffectsDTO    `json:"effects"`
	Report  SyncReportDTO `json:"report"`
}

// =============================================================================
// COMMANDS
// =============================================================================

type PurchaseUpgradeRequest struct {
	UpgradeID string `json:"upgrade_id"`
}

type SelectRecipeRequest struct {
	RecipeID string `json:"recipe_id"`
}

type CollectResponse struct {
	Collected int       `json:"collected"`
	Player    PlayerDTO `json:"player"`
	Lab       LabDTO    `json:"lab"`
}

type HatchResponse struct {
	CreatureID       string  `json:"creature_id"`
	CreatureName     string  `json:"creature_name"`
	Rarity           string  `json:"rarity"`
	HatchTimeMinutes float64 `json:"hatch_time_minutes"`
}

// =============================================================================
// JOURNAL / CONTENT
// =============================================================================

type EventDTO struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	ItemID     string `json:"item_id,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
	Amount     string `json:"amount,omitempty"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

func toEventDTO(ev lab.ProductionEvent) EventDTO {
	return EventDTO{
		ID:         ev.ID,
		Type:       string(ev.Type),
		ItemID:     string(ev.ItemID),
		Quantity:   ev.Quantity,
		Amount:     ev.Amount,
		Reason:     ev.Reason,
		OccurredAt: ev.OccurredAt.Format(time.RFC3339),
	}
}

type UpgradeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MaxLevel int    `json:"max_level"`
	Costs    []int  `json:"costs"`
}

func toUpgradeDTO(u content.UpgradeDefinition) UpgradeDTO {
	return UpgradeDTO{
		ID:       string(u.ID),
		Name:     u.Name,
		MaxLevel: u.MaxLevel,
		Costs:    append([]int(nil), u.Costs...),
	}
}

type RecipeDTO struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Inputs map[string]int `json:"inputs"`
	Output map[string]int `json:"output"`
}

func toRecipeDTO(r content.Recipe) RecipeDTO {
	inputs := make(map[string]int, len(r.Inputs))
	for _, in := range r.Inputs {
		inputs[string(in.ItemID)] = in.Quantity
	}
	return RecipeDTO{
		ID:     string(r.ID),
		Name:   r.Name,
		Inputs: inputs,
		Output: map[string]int{string(r.Output.ItemID): r.Output.Quantity},
	}
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
