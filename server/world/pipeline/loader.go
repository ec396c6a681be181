package pipeline

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
)

// Loader keeps the cubes around a centre loaded: it requests every cube within the load distances of the
// centre and periodically evicts cubes that are too far away.
type Loader struct {
	log   *slog.Logger
	sched *Scheduler
	store *world.Store

	h, v int32

	mu     sync.Mutex
	centre cube.CubePos
}

// NewLoader creates a Loader that requests cubes through the scheduler passed. Garbage is collected every
// GCInterval ticks of the scheduler's Run.
func NewLoader(sched *Scheduler) *Loader {
	l := &Loader{
		log:   sched.log,
		sched: sched,
		store: sched.store,
		h:     int32(sched.conf.HorizontalLoadDistance),
		v:     int32(sched.conf.VerticalLoadDistance),
	}
	sched.Every(sched.conf.GCInterval, func(int64) { l.CollectGarbage() })
	return l
}

// Move sets the centre of the loader and requests all cubes within the load distances around it, nearest
// first. It returns the amount of cubes requested.
func (l *Loader) Move(centre cube.CubePos) int {
	l.mu.Lock()
	l.centre = centre
	l.mu.Unlock()

	offsets := make([]cube.CubePos, 0, (2*l.h+1)*(2*l.h+1)*(2*l.v+1))
	for x := -l.h; x <= l.h; x++ {
		for y := -l.v; y <= l.v; y++ {
			for z := -l.h; z <= l.h; z++ {
				offsets = append(offsets, cube.CubePos{X: x, Y: y, Z: z})
			}
		}
	}
	slices.SortFunc(offsets, func(a, b cube.CubePos) int {
		da, db := a.Distance(cube.CubePos{}), b.Distance(cube.CubePos{})
		switch {
		case da != db:
			return int(da - db)
		case a == b:
			return 0
		case a.Less(b):
			return -1
		}
		return 1
	})

	n := 0
	for _, off := range offsets {
		if l.sched.Request(centre.Add(off)) {
			n++
		}
	}
	l.log.Debug("loader moved", "centre", centre, "requested", n)
	return n
}

// InRange checks if the cube passed lies within the load distances of the centre, widened by margin.
func (l *Loader) InRange(pos cube.CubePos, margin int32) bool {
	l.mu.Lock()
	c := l.centre
	l.mu.Unlock()
	return abs(pos.X-c.X) <= l.h+margin && abs(pos.Z-c.Z) <= l.h+margin && abs(pos.Y-c.Y) <= l.v+margin
}

// CollectGarbage evicts all cubes that lie more than one cube outside of the load distances. Cubes that are
// currently owned by a stage are left for a later collection. It returns the amount of cubes evicted.
func (l *Loader) CollectGarbage() int {
	n := 0
	for _, pos := range l.store.Positions() {
		if l.InRange(pos, 1) {
			continue
		}
		if l.store.Evict(pos) {
			n++
		}
	}
	if n > 0 {
		l.log.Debug("evicted cubes", "count", n, "remaining", l.store.Len())
	}
	return n
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
