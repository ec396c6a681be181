// Package biome holds the reference data that drives generation per biome: height envelope parameters,
// ground cover, surface decorators and the table of agents spawned on generation. Biomes are plain data so
// that they may be loaded from catalogue files.
package biome

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/entity"
)

// ID identifies a biome. The values match the legacy numeric biome IDs.
type ID uint8

const (
	IDOcean          ID = 0
	IDPlains         ID = 1
	IDDesert         ID = 2
	IDMountains      ID = 3
	IDForest         ID = 4
	IDTaiga          ID = 5
	IDSwamp          ID = 6
	IDRiver          ID = 7
	IDIcePlains      ID = 12
	IDSmallMountains ID = 20
	IDBirchForest    ID = 27
)

// HeightParams describe the terrain envelope of a biome in units of the maximum elevation of the world.
// Base is the mean surface height and Volatility the amplitude of variation around it.
type HeightParams struct {
	Base       float64 `yaml:"base"`
	Volatility float64 `yaml:"volatility"`
}

// FromVanilla converts the raw height and variation values of a legacy biome definition to HeightParams.
func FromVanilla(height, variation float64) HeightParams {
	return HeightParams{
		Base:       0.75/64 + height*17/64,
		Volatility: 3 * (variation*0.9 + 0.1),
	}
}

// SpawnEntry is a weighted entry of a biome's spawn table.
type SpawnEntry struct {
	// Agent is the type of agent spawned.
	Agent entity.Type `yaml:"agent"`
	// Weight is the relative chance of the entry being picked.
	Weight int `yaml:"weight"`
	// Min and Max bound the size of a group spawned at once.
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// DecoratorKind is the kind of surface feature placed by a Decorator.
type DecoratorKind string

const (
	DecoratorTree      DecoratorKind = "tree"
	DecoratorTallGrass DecoratorKind = "tall_grass"
	DecoratorCactus    DecoratorKind = "cactus"
)

// Decorator describes a surface feature placed on cubes holding the surface of a biome.
type Decorator struct {
	Kind DecoratorKind `yaml:"kind"`
	// Tree is the kind of tree grown by a tree decorator: oak, birch or spruce.
	Tree string `yaml:"tree,omitempty"`
	// Amount is the base amount of attempts per cube.
	Amount int `yaml:"amount"`
}

// Biome is the reference data of a single biome.
type Biome struct {
	ID   ID     `yaml:"id"`
	Name string `yaml:"name"`

	Height HeightParams `yaml:"height"`

	Temperature float64 `yaml:"temperature"`
	Rainfall    float64 `yaml:"rainfall"`
	// Aquatic biomes are not selected by climate, but wherever the continental noise drops below sea level.
	Aquatic bool `yaml:"aquatic,omitempty"`

	// Cover is the ground cover placed from the surface down, replacing stone.
	Cover []block.ID `yaml:"cover"`
	// Frozen biomes turn water at the surface into ice.
	Frozen bool `yaml:"frozen,omitempty"`
	// NoLakes disables surface water pockets.
	NoLakes bool `yaml:"no_lakes,omitempty"`

	Decorators []Decorator `yaml:"decorators,omitempty"`

	Spawns []SpawnEntry `yaml:"spawns,omitempty"`
	// SpawnChance is the probability, per attempt, of spawning another group of agents while a cube is
	// decorated.
	SpawnChance float64 `yaml:"spawn_chance"`
}
