package biome

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/entity"
)

var (
	grassy = []block.ID{block.Grass, block.Dirt, block.Dirt, block.Dirt}
	sandy  = []block.ID{block.Sand, block.Sand, block.Sandstone, block.Sandstone, block.Sandstone}
	snowy  = []block.ID{block.Snow, block.Grass, block.Dirt, block.Dirt, block.Dirt}
	gravel = []block.ID{block.Gravel, block.Gravel, block.Gravel, block.Gravel, block.Gravel}
	clay   = []block.ID{block.Clay, block.Clay, block.Clay, block.Clay, block.Clay}
)

// creatures is the spawn table shared by most land biomes.
var creatures = []SpawnEntry{
	{Agent: entity.Sheep, Weight: 12, Min: 4, Max: 4},
	{Agent: entity.Pig, Weight: 10, Min: 4, Max: 4},
	{Agent: entity.Chicken, Weight: 10, Min: 4, Max: 4},
	{Agent: entity.Cow, Weight: 8, Min: 4, Max: 4},
}

func with(base []SpawnEntry, extra ...SpawnEntry) []SpawnEntry {
	return append(append([]SpawnEntry(nil), base...), extra...)
}

// Default returns the built-in biome table used when no catalogue file is configured.
func Default() *Table {
	t, err := NewTable(defaults()...)
	if err != nil {
		panic(err)
	}
	return t
}

func defaults() []Biome {
	return []Biome{
		{
			ID: IDPlains, Name: "plains",
			Height:      FromVanilla(0.125, 0.05),
			Temperature: 0.8, Rainfall: 0.4,
			Cover:       grassy,
			Decorators:  []Decorator{{Kind: DecoratorTallGrass, Amount: 12}},
			Spawns:      creatures,
			SpawnChance: 0.1,
		},
		{
			ID: IDOcean, Name: "ocean",
			Height:      FromVanilla(-1, 0.1),
			Temperature: 0.5, Rainfall: 0.5,
			Aquatic:     true,
			Cover:       gravel,
			Decorators:  []Decorator{{Kind: DecoratorTallGrass, Amount: 5}},
			SpawnChance: 0.1,
		},
		{
			ID: IDDesert, Name: "desert",
			Height:      FromVanilla(0.125, 0.05),
			Temperature: 2, Rainfall: 0,
			Cover:       sandy,
			NoLakes:     true,
			Decorators:  []Decorator{{Kind: DecoratorCactus, Amount: 2}},
			SpawnChance: 0.1,
		},
		{
			ID: IDMountains, Name: "mountains",
			Height:      FromVanilla(1, 0.5),
			Temperature: 0.4, Rainfall: 0.5,
			Cover:       grassy,
			Spawns:      creatures,
			SpawnChance: 0.1,
		},
		{
			ID: IDForest, Name: "forest",
			Height:      FromVanilla(0.1, 0.2),
			Temperature: 0.7, Rainfall: 0.8,
			Cover:       grassy,
			Decorators: []Decorator{
				{Kind: DecoratorTree, Tree: "oak", Amount: 5},
				{Kind: DecoratorTallGrass, Amount: 3},
			},
			Spawns:      with(creatures, SpawnEntry{Agent: entity.Wolf, Weight: 5, Min: 4, Max: 4}),
			SpawnChance: 0.1,
		},
		{
			ID: IDTaiga, Name: "taiga",
			Height:      FromVanilla(0.2, 0.2),
			Temperature: 0.05, Rainfall: 0.8,
			Cover:       snowy,
			Frozen:      true,
			Decorators: []Decorator{
				{Kind: DecoratorTree, Tree: "spruce", Amount: 10},
				{Kind: DecoratorTallGrass, Amount: 1},
			},
			Spawns:      with(creatures, SpawnEntry{Agent: entity.Wolf, Weight: 8, Min: 4, Max: 4}),
			SpawnChance: 0.1,
		},
		{
			ID: IDSwamp, Name: "swamp",
			Height:      FromVanilla(-0.2, 0.1),
			Temperature: 0.8, Rainfall: 0.9,
			Cover:       grassy,
			Spawns:      creatures,
			SpawnChance: 0.1,
		},
		{
			ID: IDRiver, Name: "river",
			Height:      FromVanilla(-0.5, 0),
			Temperature: 0.5, Rainfall: 0.7,
			Aquatic:     true,
			Cover:       clay,
			Decorators:  []Decorator{{Kind: DecoratorTallGrass, Amount: 5}},
			SpawnChance: 0.1,
		},
		{
			ID: IDIcePlains, Name: "ice_plains",
			Height:      FromVanilla(0.125, 0.05),
			Temperature: 0.05, Rainfall: 0.8,
			Cover:       snowy,
			Frozen:      true,
			Decorators:  []Decorator{{Kind: DecoratorTallGrass, Amount: 5}},
			Spawns:      creatures,
			SpawnChance: 0.07,
		},
		{
			ID: IDSmallMountains, Name: "small_mountains",
			Height:      FromVanilla(0.8, 0.3),
			Temperature: 0.4, Rainfall: 0.5,
			Cover:       grassy,
			Spawns:      creatures,
			SpawnChance: 0.1,
		},
		{
			ID: IDBirchForest, Name: "birch_forest",
			Height:      FromVanilla(0.1, 0.2),
			Temperature: 0.6, Rainfall: 0.6,
			Cover:       grassy,
			Decorators:  []Decorator{{Kind: DecoratorTree, Tree: "birch", Amount: 10}},
			Spawns:      creatures,
			SpawnChance: 0.1,
		},
	}
}
