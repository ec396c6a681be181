package cubegen

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/populate"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/rand"
)

// dungeonAttempts is the amount of attempts at placing a room per underground cube.
const dungeonAttempts = 8

// populate decorates the cube at pos. Depending on where the height envelope of the column places the cube,
// it is decorated as underground, sky and/or surface cube. All randomness is drawn from streams seeded
// with the seed of the cube.
func (g *Generator) populate(a *world.Area, pos cube.CubePos) {
	c, _ := a.Cube(pos)
	env := EstimateEnvelope(c.Column(), g.conf.Biomes, g.conf.MaxElevation)

	r := rand.ForCube(g.conf.Seed, pos)
	if env.Underground(pos.Y) {
		g.decorateUnderground(a, pos, r)
	}
	if env.Sky(pos.Y) {
		g.decorateSky(a, pos, r)
	}
	if env.Surface(pos.Y) {
		g.decorateSurface(a, pos, rand.ForCube(g.conf.Seed, pos))
	}
}

// decorateUnderground places water and lava pockets, rooms and ore veins.
func (g *Generator) decorateUnderground(a *world.Area, pos cube.CubePos, r rand.Source) {
	centre := pos.Centre()
	if r.Int31n(16) == 0 {
		populate.Lake{Liquid: block.Water}.Place(a, point(centre, r), r)
	}
	g.lavaPocket(a, pos, r)

	for i := 0; i < dungeonAttempts; i++ {
		if r.Int31n(16) == 0 {
			populate.Dungeon{}.Place(a, point(centre, r), r)
		}
	}
	g.ores.Populate(a, pos, r)
}

// decorateSky is called for cubes that may lie above the surface. Nothing is placed in the sky yet.
func (g *Generator) decorateSky(*world.Area, cube.CubePos, rand.Source) {}

// decorateSurface places surface pockets, the decorators of the biome and agents. The biome is taken from
// the centre of the decoration box, so that all features placed by the cube share a biome.
func (g *Generator) decorateSurface(a *world.Area, pos cube.CubePos, r rand.Source) {
	centre := pos.Centre()
	id, _ := a.BiomeAt(centre.X()+cube.Size/2, centre.Z()+cube.Size/2)
	b, ok := g.conf.Biomes.Biome(id)
	if !ok {
		b = g.conf.Biomes.Biomes()[0]
	}

	if !b.NoLakes && r.Int31n(4) == 0 && r.Int31n(16) == 0 {
		populate.Lake{Liquid: block.Water, Freeze: b.Frozen}.Place(a, point(centre, r), r)
	}
	g.lavaPocket(a, pos, r)

	for _, d := range g.decorators[b.ID] {
		d.Populate(a, pos, r)
	}
	g.spawner(b).Populate(a, pos, r)
}

// lavaPocket places a lava pocket with a chance of 1/8, further reduced the higher the cube lies. Pockets
// above sea level are only materialised one time in ten.
func (g *Generator) lavaPocket(a *world.Area, pos cube.CubePos, r rand.Source) {
	if r.Int31n(8) != 0 {
		return
	}
	if r.Int31n(max(1, pos.Y+16-int32(g.conf.SeaLevel/16))) != 0 {
		return
	}
	p := point(pos.Centre(), r)
	if p.Y() < g.conf.SeaLevel || r.Int31n(10) == 0 {
		populate.Lake{Liquid: block.Lava}.Place(a, p, r)
	}
}

func (g *Generator) spawner(b biome.Biome) populate.Spawn {
	return populate.Spawn{
		Table:    b.Spawns,
		Chance:   b.SpawnChance,
		Factory:  g.conf.Agents,
		Rules:    g.conf.SpawnRules,
		Log:      g.conf.Log,
		Observer: g.conf.Observer,
	}
}

// point draws a position in the decoration box starting at centre.
func point(centre cube.Pos, r rand.Source) cube.Pos {
	x := int(r.Int31n(16))
	y := int(r.Int31n(16))
	z := int(r.Int31n(16))
	return centre.Add(cube.Pos{x, y, z})
}
