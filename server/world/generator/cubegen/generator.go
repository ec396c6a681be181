// Package cubegen generates the content of cubes in stages: terrain, biome ground cover, population,
// lighting and finalisation. Every stage is a Processor that only advances a cube once the neighbours it
// depends on are ready, so that cubes may be requested in any order and generated concurrently.
package cubegen

import (
	"log/slog"

	"github.com/aquilax/go-perlin"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/entity"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/populate"
)

// Config holds the parameters of a Generator.
type Config struct {
	// Log is the Logger used by the generator. If nil, slog.Default() is used.
	Log *slog.Logger
	// Seed is the seed of the world.
	Seed int64
	// Biomes holds the reference data of all biomes. If nil, biome.Default() is used.
	Biomes *biome.Table
	// Source assigns biomes to positions. It must be the same Source as the one used by the world.Store that
	// holds the cubes. If nil, a biome.Noise source for Seed and Biomes is used.
	Source biome.Source
	// MaxElevation is the elevation, in voxels, that normalised biome heights are relative to. Defaults to
	// 256.
	MaxElevation float64
	// SeaLevel is the y below which open space in the terrain is filled with water.
	SeaLevel int
	// CubesPerColumn is the divisor applied to per-column vein probabilities. Defaults to 16.
	CubesPerColumn int
	// Agents constructs agents spawned during population. If nil, entity.DefaultRegistry is used.
	Agents populate.AgentFactory
	// SpawnRules decides where agents may be placed. If nil, populate.GroundRules is used.
	SpawnRules populate.SpawnRules
	// Observer is notified of generation events. It may be nil.
	Observer Observer
}

func (conf Config) withDefaults() Config {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Biomes == nil {
		conf.Biomes = biome.Default()
	}
	if conf.Source == nil {
		conf.Source = biome.NewNoise(conf.Seed, conf.Biomes)
	}
	if conf.MaxElevation <= 0 {
		conf.MaxElevation = 256
	}
	if conf.CubesPerColumn <= 0 {
		conf.CubesPerColumn = 16
	}
	if conf.Agents == nil {
		conf.Agents = entity.DefaultRegistry
	}
	if conf.SpawnRules == nil {
		conf.SpawnRules = populate.GroundRules{}
	}
	if conf.Observer == nil {
		conf.Observer = nopObserver{}
	}
	return conf
}

// Generator holds the processors of all generation stages of a world.
type Generator struct {
	conf  Config
	cache world.Cache

	height, detail, caves *perlin.Perlin

	ores       populate.Ore
	decorators map[biome.ID][]populate.Populator

	processors []Processor
}

// New creates a Generator that generates the cubes held by the cache passed.
func New(cache world.Cache, conf Config) *Generator {
	conf = conf.withDefaults()
	g := &Generator{
		conf:   conf,
		cache:  cache,
		height: perlin.NewPerlin(2, 2, 4, conf.Seed),
		detail: perlin.NewPerlin(2, 2, 2, conf.Seed^0x5f3759df),
		caves:  perlin.NewPerlin(2, 2, 3, conf.Seed^0x2545f491),
		ores: populate.Ore{
			Types:          populate.DefaultOres(),
			CubesPerColumn: conf.CubesPerColumn,
			MaxElevation:   conf.MaxElevation,
		},
		decorators: make(map[biome.ID][]populate.Populator),
	}
	for _, b := range conf.Biomes.Biomes() {
		g.decorators[b.ID] = decoratorsOf(b)
	}

	g.processors = []Processor{
		g.newStage("terrain", world.StageEmpty, g.generateTerrain),
		g.newStage("biome", world.StageTerrain, g.applyCover, func(s *stage) {
			s.exist, s.ready, s.readyAt = cube.Above, cube.Above, world.StageTerrain
			s.read = cube.Above
		}),
		g.newStage("population", world.StageBiome, g.populate, func(s *stage) {
			s.exist = cube.Neighbours
			s.ready, s.readyAt = cube.PositiveOctant, world.StageBiome
			s.write = cube.PositiveOctant
			s.decorate = true
		}),
		g.newStage("lighting", world.StagePopulation, g.light, func(s *stage) {
			s.exist = cube.Neighbours
			s.ready, s.readyAt = cube.Neighbours, world.StagePopulation
			s.write, s.settle = cube.Above, cube.Above
		}),
		g.newStage("final", world.StageLighting, g.finalise, func(s *stage) {
			s.exist = cube.Neighbours
			s.ready, s.readyAt = cube.Neighbours, world.StageLighting
		}),
	}
	return g
}

func (g *Generator) newStage(name string, from world.Stage, run func(a *world.Area, pos cube.CubePos), opts ...func(s *stage)) *stage {
	s := &stage{
		name:  name,
		from:  from,
		cache: g.cache,
		log:   g.conf.Log,
		obs:   g.conf.Observer,
		run:   run,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Processors returns the processors of all stages, ordered by the stage they advance from.
func (g *Generator) Processors() []Processor {
	return append([]Processor(nil), g.processors...)
}

// Processor returns the processor that advances cubes from the stage passed. ok is false for StageFinal.
func (g *Generator) Processor(from world.Stage) (p Processor, ok bool) {
	if int(from) >= len(g.processors) {
		return nil, false
	}
	return g.processors[from], true
}

func decoratorsOf(b biome.Biome) []populate.Populator {
	var out []populate.Populator
	for _, d := range b.Decorators {
		switch d.Kind {
		case biome.DecoratorTree:
			if t, ok := populate.TreeByName(d.Tree); ok {
				out = append(out, populate.Tree{BaseAmount: d.Amount, Type: t})
			}
		case biome.DecoratorTallGrass:
			out = append(out, populate.TallGrass{Amount: d.Amount})
		case biome.DecoratorCactus:
			out = append(out, populate.Cactus{Amount: d.Amount})
		}
	}
	return out
}

// finalise has nothing left to generate: reaching StageFinal stores the digest of the cube.
func (g *Generator) finalise(_ *world.Area, pos cube.CubePos) {
	g.conf.Log.Debug("cube generated", "cube", pos)
}
