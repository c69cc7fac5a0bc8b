/*
defaults.go - Built-in content catalog

PURPOSE:
  Ships a complete default catalog so the server runs without any content
  files. The YAML files under a -content directory use the same shapes and
  override this entirely when configured.

CONVENTION:
  Each upgrade id corresponds to exactly one concern in the effect record
  (see lab/effects.go for the mapping). Levels are 1-indexed; Costs[i] and
  Effects[i] configure level i+1.
*/
package content

// Canonical upgrade ids. The lab package's effect registry is keyed by these.
const (
	UpgradeResearchStation  UpgradeID = "research_station"
	UpgradeEssenceCollector UpgradeID = "essence_collector"
	UpgradeAutoBrewer       UpgradeID = "auto_brewer"
	UpgradeStorageExpansion UpgradeID = "storage_expansion"
	UpgradeCauldron         UpgradeID = "cauldron"
	UpgradeHerbPress        UpgradeID = "herb_press"
	UpgradeBrewRack         UpgradeID = "brew_rack"
	UpgradeIncubator        UpgradeID = "incubator"
	UpgradePrism            UpgradeID = "prism"
	UpgradeHealingGarden    UpgradeID = "healing_garden"
	UpgradeScholarDesk      UpgradeID = "scholar_desk"
	UpgradeStaminaSpring    UpgradeID = "stamina_spring"
	UpgradeChronoLens       UpgradeID = "chrono_lens"
	UpgradeGoldMagnet       UpgradeID = "gold_magnet"
	UpgradeRecycler         UpgradeID = "recycler"
)

// Common item ids referenced by default recipes.
const (
	ItemHerb         ItemID = "herb"
	ItemCrystalDust  ItemID = "crystal_dust"
	ItemSpringWater  ItemID = "spring_water"
	ItemHealthPotion ItemID = "health_potion"
	ItemManaPotion   ItemID = "mana_potion"
	ItemMysticEgg    ItemID = "mystic_egg"
)

// DefaultCatalog returns the built-in content set.
func DefaultCatalog() *StaticRepository {
	upgrades := []UpgradeDefinition{
		{
			ID: UpgradeResearchStation, Name: "Research Station", MaxLevel: 3,
			Costs: []int{100, 250, 600},
			Effects: []EffectPayload{
				{Points: 1, IntervalMinutes: 120},
				{Points: 2, IntervalMinutes: 110},
				{Points: 3, IntervalMinutes: 100},
			},
		},
		{
			ID: UpgradeEssenceCollector, Name: "Essence Collector", MaxLevel: 3,
			Costs: []int{150, 400, 900},
			Effects: []EffectPayload{
				{Amount: 0.5, IntervalMinutes: 60},
				{Amount: 1.25, IntervalMinutes: 60},
				{Amount: 2.5, IntervalMinutes: 45},
			},
		},
		{
			ID: UpgradeAutoBrewer, Name: "Auto-Brewer", MaxLevel: 3,
			Costs: []int{300, 750, 1500},
			Effects: []EffectPayload{
				{IntervalMinutes: 90, BatchSize: 1},
				{IntervalMinutes: 60, BatchSize: 1},
				{IntervalMinutes: 45, BatchSize: 2},
			},
		},
		{
			ID: UpgradeStorageExpansion, Name: "Storage Expansion", MaxLevel: 4,
			Costs: []int{120, 300, 700, 1400},
			Effects: []EffectPayload{
				{Capacity: 10},
				{Capacity: 25},
				{Capacity: 40},
				{Capacity: 60},
			},
		},
		{
			ID: UpgradeCauldron, Name: "Reinforced Cauldron", MaxLevel: 3,
			Costs: []int{200, 500, 1100},
			Effects: []EffectPayload{
				{Percent: 0.05},
				{Percent: 0.10},
				{Percent: 0.15},
			},
		},
		{
			ID: UpgradeHerbPress, Name: "Herb Press", MaxLevel: 3,
			Costs: []int{180, 450, 1000},
			Effects: []EffectPayload{
				{Percent: 0.05},
				{Percent: 0.12},
				{Percent: 0.20},
			},
		},
		{
			ID: UpgradeBrewRack, Name: "Brew Rack", MaxLevel: 2,
			Costs: []int{250, 900},
			Effects: []EffectPayload{
				{BatchSize: 2},
				{BatchSize: 4},
			},
		},
		{
			ID: UpgradeIncubator, Name: "Incubator", MaxLevel: 3,
			Costs: []int{220, 550, 1200},
			Effects: []EffectPayload{
				{Percent: 0.10},
				{Percent: 0.20},
				{Percent: 0.35},
			},
		},
		{
			ID: UpgradePrism, Name: "Prismatic Lens", MaxLevel: 3,
			Costs: []int{400, 1000, 2200},
			Effects: []EffectPayload{
				{Percent: 0.10},
				{Percent: 0.25},
				{Percent: 0.40},
			},
		},
		{
			ID: UpgradeHealingGarden, Name: "Healing Garden", MaxLevel: 2,
			Costs: []int{260, 800},
			Effects: []EffectPayload{
				{Multiplier: 1.15},
				{Multiplier: 1.30},
			},
		},
		{
			ID: UpgradeScholarDesk, Name: "Scholar's Desk", MaxLevel: 3,
			Costs: []int{150, 420, 950},
			Effects: []EffectPayload{
				{Percent: 0.05},
				{Percent: 0.10},
				{Percent: 0.18},
			},
		},
		{
			ID: UpgradeStaminaSpring, Name: "Stamina Spring", MaxLevel: 3,
			Costs: []int{170, 430, 980},
			Effects: []EffectPayload{
				{Points: 5, Percent: 0.05},
				{Points: 10, Percent: 0.10},
				{Points: 20, Percent: 0.15},
			},
		},
		{
			ID: UpgradeChronoLens, Name: "Chrono Lens", MaxLevel: 2,
			Costs: []int{500, 1600},
			Effects: []EffectPayload{
				{Percent: 0.08},
				{Percent: 0.15},
			},
		},
		{
			ID: UpgradeGoldMagnet, Name: "Gold Magnet", MaxLevel: 2,
			Costs: []int{350, 1200},
			Effects: []EffectPayload{
				{Percent: 0.05},
				{Percent: 0.12},
			},
		},
		{
			ID: UpgradeRecycler, Name: "Alchemical Recycler", MaxLevel: 1,
			Costs: []int{800},
			Effects: []EffectPayload{
				{Unlock: true},
			},
		},
	}

	recipes := []Recipe{
		{
			ID: "health_potion", Name: "Health Potion",
			Inputs: []ItemQuantity{{ItemID: ItemHerb, Quantity: 2}},
			Output: ItemQuantity{ItemID: ItemHealthPotion, Quantity: 1},
		},
		{
			ID: "mana_potion", Name: "Mana Potion",
			Inputs: []ItemQuantity{
				{ItemID: ItemCrystalDust, Quantity: 1},
				{ItemID: ItemSpringWater, Quantity: 2},
			},
			Output: ItemQuantity{ItemID: ItemManaPotion, Quantity: 1},
		},
	}

	creatures := []Creature{
		{ID: "moss-sprite", Name: "Moss Sprite", Rarity: RarityCommon},
		{ID: "river-toad", Name: "River Toad", Rarity: RarityCommon},
		{ID: "ember-fox", Name: "Ember Fox", Rarity: RarityUncommon},
		{ID: "glass-wing", Name: "Glasswing", Rarity: RarityRare},
		{ID: "storm-drake", Name: "Storm Drake", Rarity: RarityEpic},
		{ID: "sun-phoenix", Name: "Sun Phoenix", Rarity: RarityLegendary},
	}

	weights := map[Rarity]float64{
		RarityCommon:    0.55,
		RarityUncommon:  0.25,
		RarityRare:      0.12,
		RarityEpic:      0.06,
		RarityLegendary: 0.02,
	}

	return NewStaticRepository(upgrades, recipes, creatures, weights)
}
