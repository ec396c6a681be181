package pipeline

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/tallworlds/cubicgen/server/block/cube"
)

// Config holds the tunable parameters of the generation driver.
// The zero value is usable; sensible defaults are applied by withDefaults.
type Config struct {
	// Log is the Logger used by the driver. If nil, slog.Default() is used.
	Log *slog.Logger
	// BudgetPerTick caps the amount of stage attempts made per tick.
	BudgetPerTick int
	// Workers is the amount of stage attempts run concurrently. Defaults to GOMAXPROCS.
	Workers int
	// TickInterval is the time between two ticks of Scheduler.Run.
	TickInterval time.Duration
	// HorizontalLoadDistance is the distance in cubes, along X and Z, within which the Loader requests
	// cubes around its centre.
	HorizontalLoadDistance int
	// VerticalLoadDistance is the distance in cubes along Y within which the Loader requests cubes. It is
	// clamped to the range 2-32.
	VerticalLoadDistance int
	// GCInterval is the amount of ticks between two garbage collections of the Loader.
	GCInterval int64
	// Metrics records the progress of the driver. It may be nil.
	Metrics *Metrics
}

func (c Config) withDefaults() Config {
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.BudgetPerTick <= 0 {
		c.BudgetPerTick = 49 * 16
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second / 20
	}
	if c.HorizontalLoadDistance <= 0 {
		c.HorizontalLoadDistance = 3
	}
	if c.VerticalLoadDistance == 0 {
		c.VerticalLoadDistance = 8
	}
	c.VerticalLoadDistance = cube.Clamp(c.VerticalLoadDistance, 2, 32)
	if c.GCInterval <= 0 {
		c.GCInterval = 200
	}
	return c
}
