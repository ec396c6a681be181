package world

import (
	"slices"
	"sync"

	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/entity"
)

// edit is a block placed while decorating.
type edit struct {
	pos cube.Pos
	b   block.ID
}

// decoration holds the changes one cube made to a single cube, itself or one of its positive octant, while
// it was populated.
type decoration struct {
	blocks    []edit
	agents    []*entity.Agent
	scheduled []cube.Pos
}

func (d *decoration) empty() bool {
	return len(d.blocks) == 0 && len(d.agents) == 0 && len(d.scheduled) == 0
}

// decorations holds published decorations, keyed by the cube changed and then by the cube that made the
// changes. A decoration is kept after it was applied, so that a cube that is evicted and generated again
// receives the same changes. It is dropped once the cube that made it is evicted.
type decorations struct {
	mu sync.Mutex
	m  map[cube.CubePos]map[cube.CubePos]*decoration
}

func (d *decorations) publish(source cube.CubePos, changes map[cube.CubePos]*decoration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.m == nil {
		d.m = make(map[cube.CubePos]map[cube.CubePos]*decoration)
	}
	for target, dec := range changes {
		bySource, ok := d.m[target]
		if !ok {
			bySource = make(map[cube.CubePos]*decoration, 8)
			d.m[target] = bySource
		}
		bySource[source] = dec
	}
}

// drop removes all decorations made by the source passed.
func (d *decorations) drop(source cube.CubePos) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, target := range append(cube.PositiveOctant.Of(source), source) {
		bySource, ok := d.m[target]
		if !ok {
			continue
		}
		delete(bySource, source)
		if len(bySource) == 0 {
			delete(d.m, target)
		}
	}
}

// collect returns the decorations of the target passed ordered by the position of the cube that made them.
// ok is false if the target itself or any cube of its negative octant has not published its decorations
// yet.
func (d *decorations) collect(target cube.CubePos) (out []*decoration, ok bool) {
	sources := append(cube.NegativeOctant.Of(target), target)
	slices.SortFunc(sources, comparePos)

	d.mu.Lock()
	defer d.mu.Unlock()
	bySource := d.m[target]
	out = make([]*decoration, 0, len(sources))
	for _, source := range sources {
		dec, ok := bySource[source]
		if !ok {
			return nil, false
		}
		out = append(out, dec)
	}
	return out, true
}

// Decorate switches the area to decorating on behalf of the cube passed. Blocks, agents and scheduled
// updates are no longer written to the cubes of the area but recorded per cube changed. Reads see the
// recorded blocks on top of the undecorated content of the cubes.
//
// The changes are published by Commit and written to a cube by Settle once the cube and every cube of its
// negative octant published theirs. Changes to the same voxel are applied in the order of the cubes that
// made them, so the content of a settled cube does not depend on the order in which its neighbours were
// populated.
func (a *Area) Decorate(source cube.CubePos) {
	a.source = source
	a.overlay = make(map[cube.Pos]block.ID)
	a.changes = make(map[cube.CubePos]*decoration, len(a.writable))
	for pos, ok := range a.writable {
		if ok {
			a.changes[pos] = &decoration{}
		}
	}
}

// Decorating checks if the area records changes instead of writing them.
func (a *Area) Decorating() bool {
	return a.changes != nil
}

// Commit publishes the changes recorded since Decorate and ends decorating. Commit does nothing if the area
// is not decorating.
func (a *Area) Commit() {
	if a.changes == nil {
		return
	}
	a.store.decorations.publish(a.source, a.changes)
	a.changes, a.overlay = nil, nil
}

// Settle writes the published decorations of the writable cubes passed to them. Either all cubes are
// settled or none is: false is returned, without changing anything, if any of them may still receive
// decorations. Cubes settled before are left as they are.
func (a *Area) Settle(positions ...cube.CubePos) bool {
	todo := make(map[cube.CubePos][]*decoration, len(positions))
	for _, pos := range positions {
		c, ok := a.cubes[pos]
		if !ok || !a.writable[pos] {
			return false
		}
		if c.settled {
			continue
		}
		decs, ok := a.store.decorations.collect(pos)
		if !ok {
			return false
		}
		todo[pos] = decs
	}
	for pos, decs := range todo {
		a.cubes[pos].settle(decs)
	}
	return true
}

// BaseBlock returns the block at the position passed as it was before the cube holding it was decorated.
func (a *Area) BaseBlock(pos cube.Pos) (b block.ID, ok bool) {
	c, ok := a.cubes[pos.Cube()]
	if !ok {
		return block.Air, false
	}
	x, y, z := pos.Local()
	return c.baseBlock(x, y, z), true
}

// settle applies the decorations passed to the cube in order. The undecorated content is kept for
// baseBlock.
func (c *Cube) settle(decs []*decoration) {
	c.settled = true
	for _, d := range decs {
		if d.empty() {
			continue
		}
		if c.base == nil && len(d.blocks) > 0 {
			base := c.blocks
			c.base = &base
		}
		for _, e := range d.blocks {
			x, y, z := e.pos.Local()
			c.setBlock(x, y, z, e.b)
		}
		c.agents = append(c.agents, d.agents...)
		c.scheduled = append(c.scheduled, d.scheduled...)
	}
}

// Settled checks if the decorations of the cube were applied to it.
func (c *Cube) Settled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled
}

func (c *Cube) baseBlock(x, y, z uint8) block.ID {
	if c.base != nil {
		return c.base[index(x, y, z)]
	}
	return c.blocks[index(x, y, z)]
}
