// Package pipeline drives cube generation: it queues requested cubes, attempts to advance them by one stage
// per tick on a bounded worker pool and backs off from cubes whose neighbours are not ready yet.
package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/internal/guard"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen"
	"golang.org/x/sync/errgroup"
)

// Stages provides the processor that advances cubes from a stage. It is implemented by *cubegen.Generator.
type Stages interface {
	Processor(from world.Stage) (cubegen.Processor, bool)
}

// maxPenalty bounds the back-off of a cube that keeps being deferred to 1<<maxPenalty ticks.
const maxPenalty = 4

// entry is a queued cube.
type entry struct {
	// deferrals counts the consecutive attempts that found the cube not ready.
	deferrals int
	// notBefore is the first tick at which the cube is attempted again.
	notBefore int64
}

// StepResult summarises the work done during a single tick. Failed counts the attempts that panicked: their
// cubes are dropped from the queue.
type StepResult struct {
	Attempted, Advanced, Deferred, Failed int
}

// Scheduler advances queued cubes through the generation stages in a deterministic order. Cubes stay queued
// until they reach world.StageFinal, are evicted from the store or fail a stage.
type Scheduler struct {
	conf    Config
	log     *slog.Logger
	store   *world.Store
	stages  Stages
	metrics *Metrics

	mu      sync.Mutex
	pending map[cube.CubePos]*entry
	// failed holds the cubes dropped after a stage panicked. They are not queued again until they are
	// evicted from the store.
	failed map[cube.CubePos]*world.Cube
	hooks  []hook
}

type hook struct {
	every int64
	f     func(tick int64)
}

// NewScheduler creates a Scheduler that generates cubes of the store passed using the processors of stages.
func NewScheduler(store *world.Store, stages Stages, conf Config) *Scheduler {
	if store == nil || stages == nil {
		panic("pipeline: scheduler requires a store and stages")
	}
	conf = conf.withDefaults()
	return &Scheduler{
		conf:    conf,
		log:     conf.Log,
		store:   store,
		stages:  stages,
		metrics: conf.Metrics,
		pending: make(map[cube.CubePos]*entry),
		failed:  make(map[cube.CubePos]*world.Cube),
	}
}

// Request queues the cube at the position passed for generation, creating it in the store if needed. Cubes
// that already completed generation or failed a stage are not queued. Request returns false if the position
// lies outside the world.
func (s *Scheduler) Request(pos cube.CubePos) bool {
	c, _ := s.store.Create(pos)
	if c == nil {
		return false
	}
	if c.Stage() == world.StageFinal {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.failed[pos]; ok {
		if f == c {
			return true
		}
		delete(s.failed, pos)
	}
	if _, ok := s.pending[pos]; !ok {
		s.pending[pos] = &entry{}
	}
	return true
}

// Failed returns the amount of cubes that were dropped after a stage panicked and are still held by the
// store.
func (s *Scheduler) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for pos, f := range s.failed {
		if c, ok := s.store.Cube(pos); ok && c == f {
			n++
		}
	}
	return n
}

// Pending returns the amount of cubes queued.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Every registers f to be called at the end of every n-th tick of Run.
func (s *Scheduler) Every(n int64, f func(tick int64)) {
	if n <= 0 {
		n = 1
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, hook{every: n, f: f})
	s.mu.Unlock()
}

type item struct {
	pos   cube.CubePos
	stage world.Stage
	proc  cubegen.Processor

	advanced, panicked, skipped bool
}

// Step makes at most BudgetPerTick stage attempts. Cubes are attempted ordered by stage and then by Morton
// order of their positions, skipping cubes that are backing off. Attempts run concurrently on up to Workers
// goroutines; Step returns once all of them completed.
func (s *Scheduler) Step(ctx context.Context, tick int64) StepResult {
	start := time.Now()
	items := s.snapshot(tick)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.conf.Workers)
	for i := range items {
		it := &items[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				it.skipped = true
				return err
			}
			it.panicked = !guard.Run(s.log, func() {
				it.advanced = it.proc.TryAdvance(it.pos)
			}, "cube", it.pos, "stage", it.proc.Name())
			return nil
		})
	}
	// The only error returned is the cancellation of ctx, in which case the remaining items are retried on a
	// later tick.
	_ = g.Wait()

	res := s.commit(items, tick)
	s.metrics.ObserveTick(time.Since(start).Seconds())
	s.metrics.SetCubes(s.store.Len())
	return res
}

// snapshot collects the cubes to attempt during the tick passed, dropping cubes that completed or were
// evicted from the queue.
func (s *Scheduler) snapshot(tick int64) []item {
	s.mu.Lock()
	defer s.mu.Unlock()

	for pos, c := range s.failed {
		if c.Evicted() {
			delete(s.failed, pos)
		}
	}
	items := make([]item, 0, min(len(s.pending), s.conf.BudgetPerTick))
	for pos, e := range s.pending {
		st, ok := s.store.StageOf(pos)
		if !ok || st == world.StageFinal {
			delete(s.pending, pos)
			continue
		}
		if e.notBefore > tick {
			continue
		}
		proc, ok := s.stages.Processor(st)
		if !ok {
			delete(s.pending, pos)
			continue
		}
		items = append(items, item{pos: pos, stage: st, proc: proc})
	}
	slices.SortFunc(items, func(a, b item) int {
		switch {
		case a.stage != b.stage:
			return int(a.stage) - int(b.stage)
		case a.pos == b.pos:
			return 0
		case a.pos.Less(b.pos):
			return -1
		}
		return 1
	})
	if len(items) > s.conf.BudgetPerTick {
		items = items[:s.conf.BudgetPerTick]
	}
	return items
}

// commit applies the outcome of the attempts of a tick to the queue.
func (s *Scheduler) commit(items []item, tick int64) StepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res StepResult
	for _, it := range items {
		e, ok := s.pending[it.pos]
		if !ok || it.skipped {
			continue
		}
		res.Attempted++
		if it.panicked {
			// The stage may have left the cube half written: it is not attempted again.
			res.Failed++
			s.metrics.Panicked(it.proc.Name())
			delete(s.pending, it.pos)
			if c, ok := s.store.Cube(it.pos); ok {
				s.failed[it.pos] = c
			}
			s.log.Error("cube dropped from generation", "cube", it.pos, "stage", it.proc.Name())
			continue
		}
		if it.advanced {
			res.Advanced++
			s.metrics.Advanced(it.proc.Name())
			e.deferrals, e.notBefore = 0, 0
			if it.stage+1 == world.StageFinal {
				delete(s.pending, it.pos)
			}
			continue
		}
		res.Deferred++
		s.metrics.Deferred(it.proc.Name())
		e.deferrals++
		e.notBefore = tick + 1<<min(e.deferrals-1, maxPenalty)
	}
	s.metrics.SetQueueLength(len(s.pending))
	if res.Attempted > 0 {
		s.log.Debug("generation tick", "tick", tick, "attempted", res.Attempted, "advanced", res.Advanced, "deferred", res.Deferred, "failed", res.Failed, "queued", len(s.pending))
	}
	return res
}

// Run calls Step every TickInterval until ctx is cancelled, after which ctx.Err() is returned.
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.conf.TickInterval)
	defer t.Stop()

	for tick := int64(1); ; tick++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		s.Step(ctx, tick)

		s.mu.Lock()
		hooks := slices.Clone(s.hooks)
		s.mu.Unlock()
		for _, h := range hooks {
			if tick%h.every == 0 {
				h.f(tick)
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
