package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tallworlds/cubicgen/server/entity"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
	"github.com/tallworlds/cubicgen/server/world/pipeline"
)

// Config contains options for starting the generation of a world.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set to
	// slog.Default().
	Log *slog.Logger
	// Seed is the seed of the world. A value of 0 is valid and results in a
	// fixed world layout.
	Seed int64
	// Biomes holds the reference data of all biomes. If nil, the built-in
	// biome table is used.
	Biomes *biome.Table
	// BiomeSource assigns biomes to positions in the world. If nil, biomes are
	// picked by climate noise derived from the Seed.
	BiomeSource biome.Source
	// SeaLevel is the y below which open space in the terrain is filled with
	// water.
	SeaLevel int
	// MaxElevation is the elevation, in voxels, that normalised biome heights
	// are relative to. If 0, a maximum elevation of 256 is used.
	MaxElevation float64
	// CubesPerColumn is the divisor applied to the per-column probability of
	// ore veins to obtain the probability of a single cube. If 0, 16 is used.
	CubesPerColumn int
	// InstantFall specifies if falling blocks placed during generation should
	// drop to their resting position immediately instead of being scheduled
	// for an update.
	InstantFall bool
	// Entities constructs the agents spawned during population. If nil,
	// entity.DefaultRegistry is used.
	Entities *entity.Registry
	// Pipeline holds the settings of the scheduler and loader that drive
	// generation.
	Pipeline pipeline.Config
	// Registerer is the Prometheus registerer that generation metrics are
	// registered with. If nil, metrics are collected but not exposed.
	Registerer prometheus.Registerer
}

// New creates a Server using fields of conf. Generation starts once
// Server.Run is called and cubes are requested through the Server's Loader.
func (conf Config) New() *Server {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Biomes == nil {
		conf.Biomes = biome.Default()
	}
	if conf.BiomeSource == nil {
		conf.BiomeSource = biome.NewNoise(conf.Seed, conf.Biomes)
	}
	if conf.Entities == nil {
		conf.Entities = entity.DefaultRegistry
	}
	metrics := pipeline.NewMetrics(conf.Registerer)
	conf.Pipeline.Log = conf.Log
	conf.Pipeline.Metrics = metrics

	store := world.NewStore(world.StoreConfig{
		Log:         conf.Log,
		Biomes:      conf.BiomeSource,
		InstantFall: conf.InstantFall,
	})
	gen := cubegen.New(store, cubegen.Config{
		Log:            conf.Log,
		Seed:           conf.Seed,
		Biomes:         conf.Biomes,
		Source:         conf.BiomeSource,
		MaxElevation:   conf.MaxElevation,
		SeaLevel:       conf.SeaLevel,
		CubesPerColumn: conf.CubesPerColumn,
		Agents:         conf.Entities,
		Observer:       metrics,
	})
	sched := pipeline.NewScheduler(store, gen, conf.Pipeline)
	return &Server{
		conf:    conf,
		store:   store,
		gen:     gen,
		sched:   sched,
		loader:  pipeline.NewLoader(sched),
		metrics: metrics,
	}
}

// UserConfig is the user configuration of the world generator. It holds
// settings that affect the layout of the world and the pace at which it is
// generated. UserConfig may be serialised and can be converted to a Config
// by calling UserConfig.Config().
type UserConfig struct {
	World struct {
		// Seed controls the procedural generation of the world.
		Seed int64
		// SeaLevel is the y below which open space is filled with water.
		SeaLevel int
		// MaxElevation is the elevation, in voxels, that biome heights are
		// relative to.
		MaxElevation float64
		// BiomeFile is the path to a YAML biome catalogue. Leave empty to use
		// the built-in biomes.
		BiomeFile string
		// BiomeLayout controls how biomes are laid out. Valid values are
		// "noise", "striped" and "uniform". Defaults to "noise".
		BiomeLayout string
		// StripeScaleBits is the width, as a power of two, of the stripes
		// of the "striped" biome layout.
		StripeScaleBits uint
		// InstantFall specifies if falling blocks drop immediately while
		// generating.
		InstantFall bool
	}
	Generation struct {
		// CubesPerTick is the maximum amount of stage attempts made every tick.
		CubesPerTick int
		// Workers is the number of background workers that attempt stages
		// concurrently. Set to 0 to use the number of CPUs.
		Workers int
		// TicksPerSecond is the rate at which the generator ticks.
		TicksPerSecond int
		// HorizontalLoadDistance is the distance in cubes, along X and Z,
		// around the load centre within which cubes are generated.
		HorizontalLoadDistance int
		// VerticalLoadDistance is the distance in cubes along Y around the
		// load centre within which cubes are generated. Must be between 2
		// and 32.
		VerticalLoadDistance int
		// GCInterval is the amount of ticks between two evictions of cubes
		// far away from the load centre.
		GCInterval int64
		// CubesPerColumn is the divisor of per-column ore vein probabilities.
		CubesPerColumn int
	}
	Metrics struct {
		// Enabled controls if Prometheus metrics are served.
		Enabled bool
		// Address is the address on which metrics are served at /metrics.
		Address string
	}
}

var (
	// errVerticalDistance is returned for a vertical load distance outside of
	// the supported range.
	errVerticalDistance = errors.New("vertical load distance must be between 2 and 32")
	// errUnknownLayout is returned for an unknown biome layout.
	errUnknownLayout = errors.New("unknown biome layout")
)

// Config converts a UserConfig to a Config, so that it may be used for
// creating a Server. An error is returned if a value is out of range or if
// the biome catalogue could not be loaded.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	if log == nil {
		log = slog.Default()
	}
	conf := Config{
		Log:            log,
		Seed:           uc.World.Seed,
		SeaLevel:       uc.World.SeaLevel,
		MaxElevation:   uc.World.MaxElevation,
		CubesPerColumn: uc.Generation.CubesPerColumn,
		InstantFall:    uc.World.InstantFall,
		Pipeline: pipeline.Config{
			BudgetPerTick:          uc.Generation.CubesPerTick,
			Workers:                uc.Generation.Workers,
			HorizontalLoadDistance: uc.Generation.HorizontalLoadDistance,
			VerticalLoadDistance:   uc.Generation.VerticalLoadDistance,
			GCInterval:             uc.Generation.GCInterval,
		},
	}
	if d := uc.Generation.VerticalLoadDistance; d != 0 && (d < 2 || d > 32) {
		return conf, fmt.Errorf("generation: %w, got %v", errVerticalDistance, d)
	}
	if tps := uc.Generation.TicksPerSecond; tps > 0 {
		conf.Pipeline.TickInterval = time.Second / time.Duration(tps)
	}
	if file := strings.TrimSpace(uc.World.BiomeFile); file != "" {
		t, err := biome.LoadFile(file)
		if err != nil {
			return conf, fmt.Errorf("load biomes: %w", err)
		}
		conf.Biomes = t
	}
	table := conf.Biomes
	if table == nil {
		table = biome.Default()
	}
	switch layout := strings.ToLower(strings.TrimSpace(uc.World.BiomeLayout)); layout {
	case "", "noise":
	case "striped":
		ids := make([]biome.ID, 0, len(table.Biomes()))
		for _, b := range table.Biomes() {
			ids = append(ids, b.ID)
		}
		conf.BiomeSource = biome.Striped{IDs: ids, ScaleBits: uc.World.StripeScaleBits}
	case "uniform":
		conf.BiomeSource = biome.Uniform(table.Biomes()[0].ID)
	default:
		return conf, fmt.Errorf("world: %w %q", errUnknownLayout, layout)
	}
	if uc.Metrics.Enabled {
		conf.Registerer = prometheus.DefaultRegisterer
	}
	return conf, nil
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.World.Seed = 0
	c.World.SeaLevel = 64
	c.World.MaxElevation = 256
	c.World.BiomeLayout = "noise"
	c.World.StripeScaleBits = 6
	c.Generation.CubesPerTick = 49 * 16
	c.Generation.TicksPerSecond = 20
	c.Generation.HorizontalLoadDistance = 3
	c.Generation.VerticalLoadDistance = 8
	c.Generation.GCInterval = 200
	c.Generation.CubesPerColumn = 16
	c.Metrics.Address = ":9100"
	return c
}
