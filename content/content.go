/*
Package content provides the read-only game content catalog.

PURPOSE:
  Holds the static definitions the lab engine consumes: upgrade definitions
  (max level, per-level costs and effect payloads), brewing recipes, hatchable
  creatures, and the base rarity weight table. The engine only ever sees the
  Repository interface, so tests can inject a StaticRepository and the server
  can reload files without the engine knowing.

KEY CONCEPTS:
  - UpgradeDefinition: per-level costs and effect payloads, 1-indexed levels
  - Recipe: input item quantities and a single output
  - Repository: read-only lookup interface
  - FileRepository: YAML-backed implementation with explicit Reload()

DESIGN PRINCIPLE:
  Content can change underneath persisted player state. The catalog is
  therefore always treated as the source of truth for limits (max level,
  recipe existence) and persisted references to removed content are handled
  by the engine, never by the catalog.

SEE ALSO:
  - file.go: YAML loading and reload
  - lab/effects.go: Maps upgrade ids to effect record fields
*/
package content

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UpgradeID string
type RecipeID string
type ItemID string
type CreatureID string

// =============================================================================
// RARITY SCALE
// =============================================================================

// Rarity is an ordered scale from most to least common.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// RarityScale lists rarities in ascending order. Index in this slice is the
// canonical ordering used by the selection fallback search.
var RarityScale = []Rarity{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityEpic,
	RarityLegendary,
}

// RarityIndex returns the position of r on the scale, or -1 if unknown.
func RarityIndex(r Rarity) int {
	for i, s := range RarityScale {
		if s == r {
			return i
		}
	}
	return -1
}

// =============================================================================
// UPGRADE DEFINITIONS
// =============================================================================

// EffectPayload is the per-level effect configuration of an upgrade.
// Which fields are meaningful depends on the upgrade id; the lab package's
// effect registry knows how to interpret each one. Unused fields stay zero.
type EffectPayload struct {
	Points          int     `yaml:"points,omitempty"`
	IntervalMinutes int     `yaml:"interval_minutes,omitempty"`
	Amount          float64 `yaml:"amount,omitempty"`
	Percent         float64 `yaml:"percent,omitempty"`
	BatchSize       int     `yaml:"batch_size,omitempty"`
	Capacity        int     `yaml:"capacity,omitempty"`
	Multiplier      float64 `yaml:"multiplier,omitempty"`
	Unlock          bool    `yaml:"unlock,omitempty"`
}

// UpgradeDefinition describes one purchasable lab upgrade.
// Costs and Effects are indexed by level-1 (levels are 1-indexed).
type UpgradeDefinition struct {
	ID       UpgradeID       `yaml:"id"`
	Name     string          `yaml:"name"`
	MaxLevel int             `yaml:"max_level"`
	Costs    []int           `yaml:"costs"`
	Effects  []EffectPayload `yaml:"effects"`
}

// EffectAt returns the effect payload for a 1-indexed level, clamped to
// [1, MaxLevel]. Persisted levels may predate a catalog change that lowered
// MaxLevel, so out-of-range levels are clamped, never trusted.
func (u UpgradeDefinition) EffectAt(level int) EffectPayload {
	if len(u.Effects) == 0 {
		return EffectPayload{}
	}
	if level > u.MaxLevel {
		level = u.MaxLevel
	}
	if level > len(u.Effects) {
		level = len(u.Effects)
	}
	if level < 1 {
		level = 1
	}
	return u.Effects[level-1]
}

// CostAt returns the gold cost of buying the given 1-indexed level.
// Returns false if the level has no configured cost.
func (u UpgradeDefinition) CostAt(level int) (int, bool) {
	if level < 1 || level > len(u.Costs) {
		return 0, false
	}
	return u.Costs[level-1], true
}

// =============================================================================
// RECIPES
// =============================================================================

// ItemQuantity pairs an item with a count.
type ItemQuantity struct {
	ItemID   ItemID `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

// Recipe describes one auto-brewer recipe: consume Inputs, yield Output.
type Recipe struct {
	ID     RecipeID       `yaml:"id"`
	Name   string         `yaml:"name"`
	Inputs []ItemQuantity `yaml:"inputs"`
	Output ItemQuantity   `yaml:"output"`
}

// =============================================================================
// CREATURES (hatching candidates)
// =============================================================================

// Creature is a hatchable creature with a rarity tier.
type Creature struct {
	ID     CreatureID `yaml:"id"`
	Name   string     `yaml:"name"`
	Rarity Rarity     `yaml:"rarity"`
}

// =============================================================================
// REPOSITORY - Read-only catalog access
// =============================================================================

// Repository is the read-only catalog interface the engine depends on.
// Implementations must be safe for concurrent readers.
type Repository interface {
	// Upgrade looks up an upgrade definition by id.
	Upgrade(id UpgradeID) (UpgradeDefinition, bool)

	// Upgrades returns all upgrade definitions.
	Upgrades() []UpgradeDefinition

	// Recipe looks up a brewing recipe by id.
	Recipe(id RecipeID) (Recipe, bool)

	// Recipes returns all brewing recipes.
	Recipes() []Recipe

	// Creatures returns all hatchable creatures.
	Creatures() []Creature

	// RarityWeights returns the base weight table over the rarity scale.
	// Weights need not sum to 1; the selection algorithm renormalizes.
	RarityWeights() map[Rarity]float64
}

// =============================================================================
// STATIC REPOSITORY - Fixed in-memory catalog
// =============================================================================

// StaticRepository serves a fixed catalog. Used for tests and as the
// built-in default content when no content directory is configured.
type StaticRepository struct {
	upgrades  map[UpgradeID]UpgradeDefinition
	recipes   map[RecipeID]Recipe
	creatures []Creature
	weights   map[Rarity]float64
}

func NewStaticRepository(upgrades []UpgradeDefinition, recipes []Recipe, creatures []Creature, weights map[Rarity]float64) *StaticRepository {
	r := &StaticRepository{
		upgrades:  make(map[UpgradeID]UpgradeDefinition, len(upgrades)),
		recipes:   make(map[RecipeID]Recipe, len(recipes)),
		creatures: append([]Creature(nil), creatures...),
		weights:   make(map[Rarity]float64, len(weights)),
	}
	for _, u := range upgrades {
		r.upgrades[u.ID] = u
	}
	for _, rec := range recipes {
		r.recipes[rec.ID] = rec
	}
	for k, v := range weights {
		r.weights[k] = v
	}
	return r
}

func (r *StaticRepository) Upgrade(id UpgradeID) (UpgradeDefinition, bool) {
	u, ok := r.upgrades[id]
	return u, ok
}

func (r *StaticRepository) Upgrades() []UpgradeDefinition {
	out := make([]UpgradeDefinition, 0, len(r.upgrades))
	for _, u := range r.upgrades {
		out = append(out, u)
	}
	return out
}

func (r *StaticRepository) Recipe(id RecipeID) (Recipe, bool) {
	rec, ok := r.recipes[id]
	return rec, ok
}

func (r *StaticRepository) Recipes() []Recipe {
	out := make([]Recipe, 0, len(r.recipes))
	for _, rec := range r.recipes {
		out = append(out, rec)
	}
	return out
}

func (r *StaticRepository) Creatures() []Creature {
	return append([]Creature(nil), r.creatures...)
}

func (r *StaticRepository) RarityWeights() map[Rarity]float64 {
	out := make(map[Rarity]float64, len(r.weights))
	for k, v := range r.weights {
		out[k] = v
	}
	return out
}
