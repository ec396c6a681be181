package cubegen

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/populate"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/rand"
)

// recordingPopulator records the cubes it is asked to decorate.
type recordingPopulator struct {
	cubes []cube.CubePos
}

func (p *recordingPopulator) Populate(_ *world.Area, pos cube.CubePos, _ rand.Source) {
	p.cubes = append(p.cubes, pos)
}

func TestPopulateVolatileCube(t *testing.T) {
	const id biome.ID = 100
	tbl, err := biome.NewTable(biome.Biome{ID: id, Name: "volatile", Height: biome.HeightParams{Base: 0, Volatility: 1}})
	require.NoError(t, err)
	src := biome.Uniform(id)
	s := world.NewStore(world.StoreConfig{Biomes: src, InstantFall: true})
	g := New(s, Config{
		Log:      slog.New(slog.DiscardHandler),
		Seed:     42,
		Biomes:   tbl,
		Source:   src,
		SeaLevel: 64,
	})
	// Every vein attempt succeeds and places clay whatever it lands in.
	var veins []populate.OreType
	for _, b := range []block.ID{block.Stone, block.Air, block.Water} {
		veins = append(veins, populate.OreType{Material: block.Clay, Replaces: b, ClusterSize: 8, Attempts: 2, Probability: 1})
	}
	g.ores = populate.Ore{Types: veins, CubesPerColumn: 1, MaxElevation: 256}
	surface := &recordingPopulator{}
	g.decorators[id] = []populate.Populator{surface}

	pos := cube.CubePos{}
	c, _ := s.Create(pos)
	env := EstimateEnvelope(c.Column(), tbl, 256)
	require.True(t, env.Underground(pos.Y))
	require.True(t, env.Surface(pos.Y))

	createBox(s, cube.CubePos{X: -1, Y: -1, Z: -1}, cube.CubePos{X: 1, Y: 2, Z: 1})
	generate(g, s, s.Positions(), world.StageBiome)
	st, _ := s.StageOf(pos)
	require.Equal(t, world.StageBiome, st)

	clay := func() int {
		n := 0
		for _, p := range append(cube.PositiveOctant.Of(pos), pos) {
			c, _ := s.Cube(p)
			for x := uint8(0); x < cube.Size; x++ {
				for y := uint8(0); y < cube.Size; y++ {
					for z := uint8(0); z < cube.Size; z++ {
						if c.Block(x, y, z) == block.Clay {
							n++
						}
					}
				}
			}
		}
		return n
	}
	require.Zero(t, clay())

	population, _ := g.Processor(world.StageBiome)
	require.True(t, population.TryAdvance(pos))
	require.Equal(t, []cube.CubePos{pos}, surface.cubes)
	// Decorations are only written once every cube that may decorate a cube has been populated.
	require.Zero(t, clay())

	a, ok := s.Acquire(append(cube.PositiveOctant.Of(pos), pos), nil)
	require.True(t, ok)
	g.populate(a, pos)
	a.Release()
	require.Equal(t, []cube.CubePos{pos, pos}, surface.cubes)
	require.Positive(t, clay())
}

// sameCubes requires every cube held by a to match the cube at the same position in b.
func sameCubes(t *testing.T, a, b *world.Store) (lit int) {
	t.Helper()
	require.Equal(t, a.Positions(), b.Positions())
	for _, pos := range a.Positions() {
		ca, _ := a.Cube(pos)
		cb, _ := b.Cube(pos)
		require.Equal(t, ca.Stage(), cb.Stage(), "stage of %v", pos)
		require.Equal(t, ca.Digest(), cb.Digest(), "digest of %v", pos)
		require.Equal(t, handles(ca.Agents()), handles(cb.Agents()), "agents of %v", pos)
		if ca.Stage() >= world.StageLighting {
			lit++
		}
	}
	return lit
}

func TestPopulationOrderIndependent(t *testing.T) {
	lo, hi := cube.CubePos{X: -3, Y: -3, Z: -3}, cube.CubePos{X: 3, Y: 4, Z: 3}
	// Cubes that decorate each other's decoration boxes.
	adjacent := []cube.CubePos{{}, {X: 1}, {Z: 1}, {X: 1, Z: 1}, {Y: 1}, {X: 1, Y: 1}, {Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}}

	run := func(order []cube.CubePos) *world.Store {
		s, g := newTestGenerator(7, nil)
		createBox(s, lo, hi)
		generate(g, s, s.Positions(), world.StageBiome)

		population, _ := g.Processor(world.StageBiome)
		for _, pos := range order {
			require.True(t, population.TryAdvance(pos), "populate %v", pos)
		}
		generate(g, s, s.Positions(), world.StageFinal)
		return s
	}
	reversed := slices.Clone(adjacent)
	slices.Reverse(reversed)

	a, b := run(adjacent), run(reversed)
	require.Positive(t, sameCubes(t, a, b))
	centre, _ := a.Cube(cube.CubePos{})
	require.Equal(t, world.StageFinal, centre.Stage())
}

func TestGenerationOrderIndependent(t *testing.T) {
	if testing.Short() {
		t.Skip("generates a region of cubes several times")
	}
	lo, hi := cube.CubePos{X: -3, Y: -3, Z: -3}, cube.CubePos{X: 3, Y: 4, Z: 3}

	for _, seed := range []int64{42, 7, 99} {
		run := func(reverse bool) *world.Store {
			s, g := newTestGenerator(seed, nil)
			createBox(s, lo, hi)
			order := s.Positions()
			if reverse {
				slices.Reverse(order)
			}
			generate(g, s, order, world.StageFinal)
			return s
		}
		forward, reversed := run(false), run(true)
		require.Positive(t, sameCubes(t, forward, reversed), "seed %v", seed)
	}
}

func TestRegeneratedCubeMatches(t *testing.T) {
	if testing.Short() {
		t.Skip("generates a region of cubes")
	}
	s, g := newTestGenerator(42, nil)
	createBox(s, cube.CubePos{X: -3, Y: -3, Z: -3}, cube.CubePos{X: 3, Y: 4, Z: 3})
	generate(g, s, s.Positions(), world.StageFinal)

	pos := cube.CubePos{X: 1}
	c, _ := s.Cube(pos)
	require.Equal(t, world.StageFinal, c.Stage())
	digest, agents := c.Digest(), handles(c.Agents())

	// The cube is generated again while the cubes that decorated it are kept.
	require.True(t, s.Evict(pos))
	c, _ = s.Create(pos)
	generate(g, s, s.Positions(), world.StageFinal)
	require.Equal(t, world.StageFinal, c.Stage())
	require.Equal(t, digest, c.Digest())
	require.Equal(t, agents, handles(c.Agents()))
}
