package biome

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoBiomes is returned when a table is created without any biomes.
	ErrNoBiomes = errors.New("biome: table holds no biomes")
	// ErrDuplicateBiome is returned when two biomes of a table share an ID.
	ErrDuplicateBiome = errors.New("biome: duplicate biome id")
	// ErrInvalidBiome is returned when a biome holds values out of range.
	ErrInvalidBiome = errors.New("biome: invalid biome")
)

// Table is an immutable set of biomes. It is safe for concurrent use. Lookups of unknown IDs fall back to
// the first biome of the table.
type Table struct {
	biomes   map[ID]Biome
	order    []ID
	fallback ID
}

// NewTable validates the biomes passed and returns a Table holding them.
func NewTable(biomes ...Biome) (*Table, error) {
	if len(biomes) == 0 {
		return nil, ErrNoBiomes
	}
	t := &Table{biomes: make(map[ID]Biome, len(biomes)), fallback: biomes[0].ID}
	for _, b := range biomes {
		if _, ok := t.biomes[b.ID]; ok {
			return nil, fmt.Errorf("%w: %d (%v)", ErrDuplicateBiome, b.ID, b.Name)
		}
		if err := validate(b); err != nil {
			return nil, err
		}
		b.Spawns = slices.Clone(b.Spawns)
		b.Decorators = slices.Clone(b.Decorators)
		b.Cover = slices.Clone(b.Cover)
		t.biomes[b.ID] = b
		t.order = append(t.order, b.ID)
	}
	return t, nil
}

func validate(b Biome) error {
	if b.SpawnChance < 0 || b.SpawnChance >= 1 {
		return fmt.Errorf("%w: %v: spawn chance %v must be in the range [0, 1)", ErrInvalidBiome, b.Name, b.SpawnChance)
	}
	if b.Height.Volatility < 0 {
		return fmt.Errorf("%w: %v: negative volatility", ErrInvalidBiome, b.Name)
	}
	total := 0
	for _, e := range b.Spawns {
		if e.Weight <= 0 {
			return fmt.Errorf("%w: %v: spawn entry %v has non-positive weight", ErrInvalidBiome, b.Name, e.Agent)
		}
		if e.Weight > math.MaxInt32-total {
			return fmt.Errorf("%w: %v: spawn weights add up to more than %d", ErrInvalidBiome, b.Name, math.MaxInt32)
		}
		total += e.Weight
		if e.Min < 1 || e.Max < e.Min {
			return fmt.Errorf("%w: %v: spawn entry %v has group size %d-%d", ErrInvalidBiome, b.Name, e.Agent, e.Min, e.Max)
		}
	}
	for _, d := range b.Decorators {
		switch d.Kind {
		case DecoratorTree:
			if _, ok := treeKinds[d.Tree]; !ok {
				return fmt.Errorf("%w: %v: unknown tree %q", ErrInvalidBiome, b.Name, d.Tree)
			}
		case DecoratorTallGrass, DecoratorCactus:
		default:
			return fmt.Errorf("%w: %v: unknown decorator %q", ErrInvalidBiome, b.Name, d.Kind)
		}
	}
	return nil
}

var treeKinds = map[string]struct{}{"oak": {}, "birch": {}, "spruce": {}}

// Biome looks up a biome by its ID.
func (t *Table) Biome(id ID) (Biome, bool) {
	b, ok := t.biomes[id]
	return b, ok
}

func (t *Table) get(id ID) Biome {
	if b, ok := t.biomes[id]; ok {
		return b
	}
	return t.biomes[t.fallback]
}

// HeightParams returns the height parameters of a biome.
func (t *Table) HeightParams(id ID) HeightParams {
	return t.get(id).Height
}

// SpawnTable returns the spawn table of a biome. The slice returned must not be modified.
func (t *Table) SpawnTable(id ID) []SpawnEntry {
	return t.get(id).Spawns
}

// SpawnChance returns the per-attempt probability of spawning another group of agents in a biome.
func (t *Table) SpawnChance(id ID) float64 {
	return t.get(id).SpawnChance
}

// Biomes returns all biomes of the table in the order they were added.
func (t *Table) Biomes() []Biome {
	out := make([]Biome, len(t.order))
	for i, id := range t.order {
		out[i] = t.biomes[id]
	}
	return out
}

// catalogue is the layout of a biome catalogue file.
type catalogue struct {
	Biomes []Biome `yaml:"biomes"`
}

// Load decodes a YAML biome catalogue and returns a Table holding its biomes.
func Load(data []byte) (*Table, error) {
	var c catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode biome catalogue: %w", err)
	}
	return NewTable(c.Biomes...)
}

// LoadFile reads the YAML biome catalogue at path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read biome catalogue: %w", err)
	}
	t, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return t, nil
}

// Marshal encodes the table as a YAML catalogue that Load accepts.
func (t *Table) Marshal() ([]byte, error) {
	return yaml.Marshal(catalogue{Biomes: t.Biomes()})
}
