/*
file.go - YAML-backed content repository with explicit reload

PURPOSE:
  Loads the catalog from a YAML file and serves it behind the Repository
  interface. Reload() is the only way the catalog changes: the surrounding
  process decides when to call it (admin endpoint, deploy hook). There is no
  file watcher and no global singleton; consumers hold the interface.

RELOAD SEMANTICS:
  Reload parses the file into a fresh StaticRepository and swaps it in
  atomically under a write lock. A parse failure leaves the previous catalog
  serving; the error is returned to the caller.

FILE SHAPE:
  upgrades:
    - id: research_station
      name: Research Station
      max_level: 3
      costs: [100, 250, 600]
      effects:
        - {points: 1, interval_minutes: 120}
        - {points: 2, interval_minutes: 110}
        - {points: 3, interval_minutes: 100}
  recipes:
    - id: health_potion
      inputs: [{item: herb, quantity: 2}]
      output: {item: health_potion, quantity: 1}
  creatures:
    - {id: moss-sprite, name: Moss Sprite, rarity: common}
  rarity_weights:
    common: 0.55
*/
package content

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML document shape.
type catalogFile struct {
	Upgrades      []UpgradeDefinition `yaml:"upgrades"`
	Recipes       []Recipe            `yaml:"recipes"`
	Creatures     []Creature          `yaml:"creatures"`
	RarityWeights map[Rarity]float64  `yaml:"rarity_weights"`
}

// FileRepository serves a YAML catalog file with explicit Reload().
type FileRepository struct {
	path string

	mu      sync.RWMutex
	current *StaticRepository
}

// NewFileRepository loads the catalog file at path. The initial load must
// succeed; later Reload failures keep the last good catalog.
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the catalog file and swaps it in atomically.
func (r *FileRepository) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read content file: %w", err)
	}

	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse content file %s: %w", r.path, err)
	}
	if err := validateCatalog(doc); err != nil {
		return fmt.Errorf("invalid content file %s: %w", r.path, err)
	}

	next := NewStaticRepository(doc.Upgrades, doc.Recipes, doc.Creatures, doc.RarityWeights)

	r.mu.Lock()
	r.current = next
	r.mu.Unlock()
	return nil
}

func validateCatalog(doc catalogFile) error {
	for _, u := range doc.Upgrades {
		if u.ID == "" {
			return fmt.Errorf("upgrade with empty id")
		}
		if u.MaxLevel < 1 {
			return fmt.Errorf("upgrade %s: max_level must be >= 1", u.ID)
		}
		if len(u.Effects) < u.MaxLevel {
			return fmt.Errorf("upgrade %s: %d effect levels configured, max_level is %d", u.ID, len(u.Effects), u.MaxLevel)
		}
	}
	for _, rec := range doc.Recipes {
		if rec.ID == "" {
			return fmt.Errorf("recipe with empty id")
		}
		if rec.Output.Quantity < 1 {
			return fmt.Errorf("recipe %s: output quantity must be >= 1", rec.ID)
		}
		for _, in := range rec.Inputs {
			if in.Quantity < 1 {
				return fmt.Errorf("recipe %s: input %s quantity must be >= 1", rec.ID, in.ItemID)
			}
		}
	}
	for _, c := range doc.Creatures {
		if RarityIndex(c.Rarity) < 0 {
			return fmt.Errorf("creature %s: unknown rarity %q", c.ID, c.Rarity)
		}
	}
	return nil
}

func (r *FileRepository) snapshot() *StaticRepository {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *FileRepository) Upgrade(id UpgradeID) (UpgradeDefinition, bool) { return r.snapshot().Upgrade(id) }
func (r *FileRepository) Upgrades() []UpgradeDefinition                  { return r.snapshot().Upgrades() }
func (r *FileRepository) Recipe(id RecipeID) (Recipe, bool)              { return r.snapshot().Recipe(id) }
func (r *FileRepository) Recipes() []Recipe                              { return r.snapshot().Recipes() }
func (r *FileRepository) Creatures() []Creature                          { return r.snapshot().Creatures() }
func (r *FileRepository) RarityWeights() map[Rarity]float64              { return r.snapshot().RarityWeights() }
