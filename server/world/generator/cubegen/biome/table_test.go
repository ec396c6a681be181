package biome

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/entity"
)

func TestDefaultTable(t *testing.T) {
	tbl := Default()

	plains, ok := tbl.Biome(IDPlains)
	require.True(t, ok)
	require.Equal(t, "plains", plains.Name)
	require.InDelta(t, 0.1, tbl.SpawnChance(IDPlains), 1e-9)
	require.Len(t, tbl.SpawnTable(IDPlains), 4)
	require.Empty(t, tbl.SpawnTable(IDOcean))

	// Unknown IDs fall back to the first biome.
	require.Equal(t, tbl.HeightParams(IDPlains), tbl.HeightParams(ID(200)))
}

func TestFromVanilla(t *testing.T) {
	p := FromVanilla(0, 0)
	require.InDelta(t, 0.75/64, p.Base, 1e-12)
	require.InDelta(t, 0.3, p.Volatility, 1e-12)

	p = FromVanilla(1, 1)
	require.InDelta(t, (0.75+17)/64, p.Base, 1e-12)
	require.InDelta(t, 3, p.Volatility, 1e-12)
}

func TestLoadCatalogue(t *testing.T) {
	data := []byte(`
biomes:
  - id: 1
    name: meadow
    height: {base: 0.1, volatility: 0.2}
    temperature: 0.8
    rainfall: 0.5
    cover: [grass, dirt, dirt]
    decorators:
      - {kind: tree, tree: birch, amount: 2}
    spawns:
      - {agent: "minecraft:cow", weight: 3, min: 2, max: 4}
    spawn_chance: 0.25
  - id: 0
    name: sea
    aquatic: true
    cover: [minecraft:gravel]
    spawn_chance: 0
`)
	tbl, err := Load(data)
	require.NoError(t, err)

	meadow, ok := tbl.Biome(1)
	require.True(t, ok)
	require.Equal(t, []block.ID{block.Grass, block.Dirt, block.Dirt}, meadow.Cover)
	require.Equal(t, HeightParams{Base: 0.1, Volatility: 0.2}, tbl.HeightParams(1))
	require.Equal(t, []SpawnEntry{{Agent: entity.Cow, Weight: 3, Min: 2, Max: 4}}, tbl.SpawnTable(1))
	require.InDelta(t, 0.25, tbl.SpawnChance(1), 1e-12)

	sea, _ := tbl.Biome(0)
	require.True(t, sea.Aquatic)
	require.Equal(t, []block.ID{block.Gravel}, sea.Cover)
}

func TestLoadRejectsInvalidCatalogues(t *testing.T) {
	cases := map[string]struct {
		data string
		err  error
	}{
		"empty":     {data: `biomes: []`, err: ErrNoBiomes},
		"duplicate": {data: "biomes:\n  - {id: 1, name: a}\n  - {id: 1, name: b}", err: ErrDuplicateBiome},
		"chance":    {data: "biomes:\n  - {id: 1, name: a, spawn_chance: 1.5}", err: ErrInvalidBiome},
		"weight":    {data: "biomes:\n  - {id: 1, name: a, spawns: [{agent: cow, weight: 0, min: 1, max: 1}]}", err: ErrInvalidBiome},
		"tree":      {data: "biomes:\n  - {id: 1, name: a, decorators: [{kind: tree, tree: palm}]}", err: ErrInvalidBiome},
		"weights":   {data: "biomes:\n  - {id: 1, name: a, spawns: [{agent: cow, weight: 2000000000, min: 1, max: 1}, {agent: pig, weight: 2000000000, min: 1, max: 1}]}", err: ErrInvalidBiome},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(c.data))
			require.True(t, errors.Is(err, c.err), "expected %v, got %v", c.err, err)
		})
	}

	_, err := Load([]byte("biomes:\n  - {id: 1, name: a, cover: [unobtainium]}"))
	require.Error(t, err)

	// Weights may add up to exactly math.MaxInt32.
	_, err = NewTable(Biome{ID: 1, Name: "a", Spawns: []SpawnEntry{
		{Agent: entity.Cow, Weight: math.MaxInt32 - 1, Min: 1, Max: 1},
		{Agent: entity.Pig, Weight: 1, Min: 1, Max: 1},
	}})
	require.NoError(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	tbl, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, Default().Biomes(), tbl.Biomes())
}

func TestStriped(t *testing.T) {
	s := Striped{IDs: []ID{IDPlains, IDDesert, IDForest}, ScaleBits: 4}
	require.Equal(t, IDPlains, s.Biome(0, 0))
	require.Equal(t, IDPlains, s.Biome(15, 99))
	require.Equal(t, IDDesert, s.Biome(16, 0))
	require.Equal(t, IDForest, s.Biome(-1, 0))
	require.Equal(t, IDDesert, s.Biome(-32, 0))
}

func TestNoiseIsDeterministic(t *testing.T) {
	a, b := NewNoise(99, Default()), NewNoise(99, Default())
	for x := -200; x < 200; x += 37 {
		for z := -200; z < 200; z += 41 {
			require.Equal(t, a.Biome(x, z), b.Biome(x, z))
		}
	}
}
