package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
)

// stepper is a processor that advances any cube it is allowed to by a single stage, without generating any
// content.
type stepper struct {
	from  world.Stage
	store *world.Store
	allow func(pos cube.CubePos) bool

	mu    *sync.Mutex
	order *[]cube.CubePos
}

func (s stepper) Name() string      { return s.from.Next().String() }
func (s stepper) From() world.Stage { return s.from }

func (s stepper) TryAdvance(pos cube.CubePos) bool {
	s.mu.Lock()
	*s.order = append(*s.order, pos)
	s.mu.Unlock()

	if s.allow != nil && !s.allow(pos) {
		return false
	}
	a, ok := s.store.Acquire([]cube.CubePos{pos}, nil)
	if !ok {
		return false
	}
	defer a.Release()
	if c, _ := a.Cube(pos); c.Stage() != s.from {
		return false
	}
	a.Advance(pos, s.from.Next())
	return true
}

type stepStages struct {
	store *world.Store
	allow func(pos cube.CubePos) bool

	mu    sync.Mutex
	order []cube.CubePos
}

func (s *stepStages) Processor(from world.Stage) (cubegen.Processor, bool) {
	if from >= world.StageFinal {
		return nil, false
	}
	return stepper{from: from, store: s.store, allow: s.allow, mu: &s.mu, order: &s.order}, true
}

func (s *stepStages) attempts() []cube.CubePos {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cube.CubePos(nil), s.order...)
}

func newTestScheduler(conf Config, allow func(pos cube.CubePos) bool) (*world.Store, *stepStages, *Scheduler) {
	store := world.NewStore(world.StoreConfig{Biomes: biome.Uniform(biome.IDPlains)})
	stages := &stepStages{store: store, allow: allow}
	if conf.Log == nil {
		conf.Log = slog.New(slog.DiscardHandler)
	}
	return store, stages, NewScheduler(store, stages, conf)
}

func TestStepBudget(t *testing.T) {
	_, _, s := newTestScheduler(Config{BudgetPerTick: 5}, nil)
	for x := int32(0); x < 10; x++ {
		require.True(t, s.Request(cube.CubePos{X: x}))
	}
	res := s.Step(context.Background(), 1)
	if res.Attempted != 5 || res.Advanced != 5 {
		t.Fatalf("expected 5 attempts and advances, got %+v", res)
	}
	require.Equal(t, 10, s.Pending())
}

func TestStepOrder(t *testing.T) {
	store, stages, s := newTestScheduler(Config{Workers: 1}, nil)
	positions := []cube.CubePos{{X: 3}, {Y: 1}, {Z: 2}, {X: 1}, {}}
	for _, pos := range positions {
		s.Request(pos)
	}
	// Move one cube ahead so that it is attempted after all cubes at StageEmpty.
	a, ok := store.Acquire([]cube.CubePos{{}}, nil)
	require.True(t, ok)
	a.Advance(cube.CubePos{}, world.StageTerrain)
	a.Release()

	s.Step(context.Background(), 1)
	expected := []cube.CubePos{{X: 1}, {Y: 1}, {X: 3}, {Z: 2}, {}}
	require.Equal(t, expected, stages.attempts())
}

func TestStepBackOff(t *testing.T) {
	_, _, s := newTestScheduler(Config{}, func(cube.CubePos) bool { return false })
	s.Request(cube.CubePos{})

	attempted := func(tick int64) int {
		return s.Step(context.Background(), tick).Attempted
	}
	// Deferred at tick 1: retried at 2. Deferred at 2: retried at 4. Deferred at 4: retried at 8.
	for tick, n := range []int{1: 1, 2: 1, 3: 0, 4: 1, 5: 0, 6: 0, 7: 0, 8: 1} {
		if tick == 0 {
			continue
		}
		if got := attempted(int64(tick)); got != n {
			t.Fatalf("tick %v: expected %v attempts, got %v", tick, n, got)
		}
	}
	require.Equal(t, 1, s.Pending())
}

func TestStepBackOffBounded(t *testing.T) {
	_, _, s := newTestScheduler(Config{}, func(cube.CubePos) bool { return false })
	s.Request(cube.CubePos{})

	tick, attempts := int64(1), 0
	for ; attempts < 10; tick++ {
		attempts += s.Step(context.Background(), tick).Attempted
	}
	s.mu.Lock()
	e := s.pending[cube.CubePos{}]
	s.mu.Unlock()
	if wait := e.notBefore - (tick - 1); wait != 1<<maxPenalty {
		t.Fatalf("expected back-off of %v ticks, got %v", 1<<maxPenalty, wait)
	}
}

func TestStepReachesFinal(t *testing.T) {
	store, _, s := newTestScheduler(Config{}, nil)
	s.Request(cube.CubePos{Y: -2})

	for tick := int64(1); tick <= 5; tick++ {
		res := s.Step(context.Background(), tick)
		require.Equal(t, 1, res.Advanced)
	}
	st, _ := store.StageOf(cube.CubePos{Y: -2})
	require.Equal(t, world.StageFinal, st)
	require.Zero(t, s.Pending())

	// A cube that completed generation is not queued again.
	require.True(t, s.Request(cube.CubePos{Y: -2}))
	require.Zero(t, s.Pending())
}

func TestStepDropsEvicted(t *testing.T) {
	store, _, s := newTestScheduler(Config{}, nil)
	s.Request(cube.CubePos{X: 4})
	require.True(t, store.Evict(cube.CubePos{X: 4}))

	res := s.Step(context.Background(), 1)
	require.Zero(t, res.Attempted)
	require.Zero(t, s.Pending())
}

func TestRequestOutsideWorld(t *testing.T) {
	_, _, s := newTestScheduler(Config{}, nil)
	if s.Request(cube.CubePos{Y: 1 << 30}) {
		t.Fatalf("expected request outside of the world to fail")
	}
	require.Zero(t, s.Pending())
}

func TestStepCancelled(t *testing.T) {
	_, _, s := newTestScheduler(Config{}, nil)
	s.Request(cube.CubePos{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := s.Step(ctx, 1)
	require.Zero(t, res.Attempted)

	// The cube is not penalised for the skipped attempt.
	res = s.Step(context.Background(), 2)
	require.Equal(t, 1, res.Advanced)
}

func TestStepPanicRecovered(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	_, _, s := newTestScheduler(Config{Metrics: m}, func(cube.CubePos) bool { panic("boom") })
	s.Request(cube.CubePos{})

	res := s.Step(context.Background(), 1)
	require.Equal(t, StepResult{Attempted: 1, Failed: 1}, res)
	require.Zero(t, s.Pending())
	require.Equal(t, 1, s.Failed())
	require.Equal(t, 1.0, testutil.ToFloat64(m.panics.WithLabelValues("terrain")))
	require.Zero(t, testutil.ToFloat64(m.deferrals.WithLabelValues("terrain")))
	require.Zero(t, testutil.ToFloat64(m.queue))

	// The cube is not attempted again, even if it is requested once more.
	require.True(t, s.Request(cube.CubePos{}))
	require.Zero(t, s.Pending())
	require.Zero(t, s.Step(context.Background(), 2).Attempted)
}

func TestStepFailedCubeEvicted(t *testing.T) {
	store, _, s := newTestScheduler(Config{}, func(pos cube.CubePos) bool {
		if pos.X == 0 {
			panic("boom")
		}
		return true
	})
	s.Request(cube.CubePos{})
	s.Request(cube.CubePos{X: 1})

	res := s.Step(context.Background(), 1)
	require.Equal(t, StepResult{Attempted: 2, Advanced: 1, Failed: 1}, res)
	require.Equal(t, 1, s.Pending())

	// Once evicted, the cube is generated from scratch when requested again.
	require.True(t, store.Evict(cube.CubePos{}))
	require.Zero(t, s.Failed())
	require.True(t, s.Request(cube.CubePos{}))
	require.Equal(t, 2, s.Pending())
}

func TestStepMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	_, _, s := newTestScheduler(Config{Metrics: m}, nil)
	s.Request(cube.CubePos{})
	s.Request(cube.CubePos{X: 1})

	s.Step(context.Background(), 1)
	require.Equal(t, 2.0, testutil.ToFloat64(m.advances.WithLabelValues("terrain")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.cubes))
	require.Equal(t, 1, testutil.CollectAndCount(m.tick))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.NotZero(t, n)
}

func TestMetricsNil(t *testing.T) {
	var m *Metrics
	m.Advanced("terrain")
	m.Deferred("terrain")
	m.Panicked("terrain")
	m.InvariantViolated("terrain")
	m.AgentSpawned("pig")
	m.ConstructionFailed("pig")
	m.SetQueueLength(1)
	m.SetCubes(1)
	m.ObserveTick(0.1)
}

func TestRunHooks(t *testing.T) {
	_, _, s := newTestScheduler(Config{TickInterval: time.Millisecond}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks []int64
	s.Every(2, func(tick int64) {
		ticks = append(ticks, tick)
		if tick == 6 {
			cancel()
		}
	})
	require.ErrorIs(t, s.Run(ctx), context.Canceled)
	require.Equal(t, []int64{2, 4, 6}, ticks)
}

func TestConfigDefaults(t *testing.T) {
	conf := Config{}.withDefaults()
	require.NotNil(t, conf.Log)
	require.Equal(t, 49*16, conf.BudgetPerTick)
	require.Positive(t, conf.Workers)
	require.Equal(t, 3, conf.HorizontalLoadDistance)
	require.Equal(t, 8, conf.VerticalLoadDistance)
	require.EqualValues(t, 200, conf.GCInterval)

	for in, expected := range map[int]int{1: 2, 2: 2, 17: 17, 32: 32, 100: 32, -4: 2} {
		if got := (Config{VerticalLoadDistance: in}).withDefaults().VerticalLoadDistance; got != expected {
			t.Fatalf("vertical load distance %v: expected %v, got %v", in, expected, got)
		}
	}
}

func TestGenerateAroundCentre(t *testing.T) {
	if testing.Short() {
		t.Skip("generates a few hundred cubes")
	}
	src := biome.Uniform(biome.IDPlains)
	store := world.NewStore(world.StoreConfig{Biomes: src, InstantFall: true})
	log := slog.New(slog.DiscardHandler)
	m := NewMetrics(nil)
	g := cubegen.New(store, cubegen.Config{Log: log, Seed: 7, Source: src, SeaLevel: 64, Observer: m})
	s := NewScheduler(store, g, Config{
		Log:                    log,
		Workers:                1,
		HorizontalLoadDistance: 3,
		VerticalLoadDistance:   4,
		Metrics:                m,
	})
	l := NewLoader(s)
	centre := cube.CubePos{Y: 3}
	require.Equal(t, 7*9*7, l.Move(centre))

	for tick := int64(1); tick <= 50; tick++ {
		s.Step(context.Background(), tick)
		if st, _ := store.StageOf(centre); st == world.StageFinal {
			break
		}
	}
	st, _ := store.StageOf(centre)
	require.Equal(t, world.StageFinal, st)
	require.Zero(t, testutil.ToFloat64(m.violations.WithLabelValues("biome")))
}
