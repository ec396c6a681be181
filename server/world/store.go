package world

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
)

// Cache is the view of a cube cache used by generation stages. Stage reads never block, and cubes are
// only ever changed while owned through Acquire.
type Cache interface {
	// Cube returns the cube at the position passed, if it is held by the cache.
	Cube(pos cube.CubePos) (*Cube, bool)
	// StageOf returns the stage of the cube at the position passed, if it is held by the cache.
	StageOf(pos cube.CubePos) (Stage, bool)
	// Acquire attempts to take ownership of the cubes passed without blocking.
	Acquire(write, read []cube.CubePos) (*Area, bool)
}

// StoreConfig holds the parameters of a Store.
type StoreConfig struct {
	// Log is the Logger used by the store. If nil, slog.Default() is used.
	Log *slog.Logger
	// Biomes assigns biomes to new columns. If nil, every column is plains.
	Biomes biome.Source
	// InstantFall is the mode in which areas acquired from the store place falling blocks.
	InstantFall bool
}

// Store is an in-memory cube cache. It is safe for concurrent use. The store's mutex only guards cube
// membership: the content of cubes is guarded by each cube's own lock.
type Store struct {
	conf StoreConfig

	mu      sync.RWMutex
	cubes   map[cube.CubePos]*Cube
	columns map[cube.ColumnPos]*Column

	decorations decorations
}

// NewStore creates an empty Store.
func NewStore(conf StoreConfig) *Store {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Biomes == nil {
		conf.Biomes = biome.Uniform(biome.IDPlains)
	}
	return &Store{
		conf:    conf,
		cubes:   make(map[cube.CubePos]*Cube),
		columns: make(map[cube.ColumnPos]*Column),
	}
}

// Create returns the cube at the position passed, creating it in StageEmpty if the store does not hold
// it yet. created is true if a new cube was created.
func (s *Store) Create(pos cube.CubePos) (c *Cube, created bool) {
	if c, ok := s.Cube(pos); ok {
		return c, false
	}
	if pos.Y < cube.MinBlockY>>4 || pos.Y > cube.MaxBlockY>>4 {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cubes[pos]; ok {
		return c, false
	}
	col, ok := s.columns[pos.Column()]
	if !ok {
		col = newColumn(pos.Column(), s.conf.Biomes)
		s.columns[pos.Column()] = col
	}
	col.cubes++
	c = newCube(pos, col)
	s.cubes[pos] = c
	return c, true
}

// Cube ...
func (s *Store) Cube(pos cube.CubePos) (*Cube, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cubes[pos]
	return c, ok
}

// Exists checks if the store holds the cube at the position passed.
func (s *Store) Exists(pos cube.CubePos) bool {
	_, ok := s.Cube(pos)
	return ok
}

// StageOf ...
func (s *Store) StageOf(pos cube.CubePos) (Stage, bool) {
	c, ok := s.Cube(pos)
	if !ok {
		return 0, false
	}
	return c.Stage(), true
}

// Column returns the column at the position passed, if any of its cubes is held by the store.
func (s *Store) Column(pos cube.ColumnPos) (*Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.columns[pos]
	return c, ok
}

// Len returns the amount of cubes held by the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cubes)
}

// Positions returns the positions of all cubes held by the store in Morton order.
func (s *Store) Positions() []cube.CubePos {
	s.mu.RLock()
	out := make([]cube.CubePos, 0, len(s.cubes))
	for pos := range s.cubes {
		out = append(out, pos)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, comparePos)
	return out
}

// Evict removes the cube at the position passed from the store. A cube that is currently owned is not
// evicted, in which case false is returned.
func (s *Store) Evict(pos cube.CubePos) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cubes[pos]
	if !ok {
		return false
	}
	if !c.mu.TryLock() {
		return false
	}
	c.evicted.Store(true)
	c.mu.Unlock()

	delete(s.cubes, pos)
	s.decorations.drop(pos)
	c.col.forget(pos.Y)
	if c.col.cubes--; c.col.cubes == 0 {
		delete(s.columns, pos.Column())
	}
	return true
}

// Acquire attempts to take ownership of the cubes in write and read without blocking. All cubes must be
// held by the store. Locks are taken in Morton order; if any lock is held elsewhere, every lock taken is
// released again and false is returned. The Area returned allows writes to the cubes in write only and must
// be released by the caller.
func (s *Store) Acquire(write, read []cube.CubePos) (*Area, bool) {
	a := newArea(s)
	for _, pos := range write {
		a.writable[pos] = true
	}
	positions := slices.Concat(write, read)
	slices.SortFunc(positions, comparePos)
	positions = slices.Compact(positions)

	for _, pos := range positions {
		c, ok := s.Cube(pos)
		if !ok || !c.mu.TryLock() {
			a.Release()
			return nil, false
		}
		a.add(c)
		if c.Evicted() {
			a.Release()
			return nil, false
		}
	}
	return a, true
}

func comparePos(a, b cube.CubePos) int {
	switch {
	case a == b:
		return 0
	case a.Less(b):
		return -1
	default:
		return 1
	}
}
