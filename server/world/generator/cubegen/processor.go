package cubegen

import (
	"log/slog"

	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/entity"
	"github.com/tallworlds/cubicgen/server/internal/guard"
	"github.com/tallworlds/cubicgen/server/world"
)

// Processor advances cubes by a single generation stage.
//
// TryAdvance returns false, without changing anything, if the cube or one of the neighbours the stage
// depends on is missing, has not reached the stage required, or is currently owned by another operation.
// Callers are expected to retry later. On success, the stage algorithm has run and the cube has advanced to
// the next stage.
type Processor interface {
	// Name returns a human-readable name of the stage, used in logs and metrics.
	Name() string
	// From returns the stage a cube must be at to be advanced by the processor.
	From() world.Stage
	TryAdvance(pos cube.CubePos) bool
}

// Observer is notified of events during generation. pipeline.Metrics implements it.
type Observer interface {
	InvariantViolated(stage string)
	AgentSpawned(t entity.Type)
	ConstructionFailed(t entity.Type)
}

type nopObserver struct{}

func (nopObserver) InvariantViolated(string) {}
func (nopObserver) AgentSpawned(entity.Type) {}
func (nopObserver) ConstructionFailed(entity.Type) {}

// stage is a Processor built from a dependency description and the algorithm of a stage.
type stage struct {
	name  string
	from  world.Stage
	cache world.Cache
	log   *slog.Logger
	obs   Observer

	// exist holds the neighbours that must be present in the cache.
	exist cube.Neighbourhood
	// ready holds the neighbours that must have completed readyAt.
	ready   cube.Neighbourhood
	readyAt world.Stage
	// write and read hold the neighbours owned while the algorithm runs, besides the cube itself, which is
	// always owned for writing.
	write, read cube.Neighbourhood
	// settle holds the neighbours that, together with the cube itself, have the decorations spilled into them
	// applied before the algorithm runs. They must be owned for writing.
	settle cube.Neighbourhood
	// decorate makes the algorithm record its changes. They are published once it completes, so that a
	// panicking algorithm leaves no partial changes behind.
	decorate bool

	run func(a *world.Area, pos cube.CubePos)
}

// Name ...
func (s *stage) Name() string { return s.name }

// From ...
func (s *stage) From() world.Stage { return s.from }

// TryAdvance ...
func (s *stage) TryAdvance(pos cube.CubePos) bool {
	c, ok := s.cache.Cube(pos)
	if !ok || c.Evicted() {
		return false
	}
	if st := c.Stage(); st != s.from {
		if st > s.from {
			s.obs.InvariantViolated(s.name)
			guard.Report(s.log, "stage requested for a cube past it", "cube", pos, "stage", s.name, "current", st)
		}
		return false
	}
	for _, n := range s.exist.Of(pos) {
		if _, ok := s.cache.StageOf(n); !ok {
			return false
		}
	}
	for _, n := range s.ready.Of(pos) {
		if st, ok := s.cache.StageOf(n); !ok || st < s.readyAt {
			return false
		}
	}

	a, ok := s.cache.Acquire(append(s.write.Of(pos), pos), s.read.Of(pos))
	if !ok {
		return false
	}
	defer a.Release()

	// Another operation may have advanced the cube between the first check and taking ownership.
	if c.Stage() != s.from {
		return false
	}
	if s.settle != nil && !a.Settle(append(s.settle.Of(pos), pos)...) {
		return false
	}
	if s.decorate {
		a.Decorate(pos)
	}
	s.run(a, pos)
	a.Commit()
	a.Advance(pos, s.from+1)
	return true
}
