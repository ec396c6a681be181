package world

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/entity"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
)

// SetOpts holds options that influence the way Area.SetBlock places blocks.
type SetOpts struct {
	// InstantFall makes falling blocks without support drop down immediately until they land on a solid
	// block, instead of scheduling a block update for them. Generation runs with InstantFall so that
	// falling blocks never linger in the air of freshly generated cubes.
	InstantFall bool
}

// Area is a set of cubes owned by the holder of the area. Reads are limited to the cubes of the area and
// writes to its writable cubes. An Area must be released once the owner is done with it and must not be
// used by more than one goroutine at a time.
type Area struct {
	cubes    map[cube.CubePos]*Cube
	writable map[cube.CubePos]bool
	locked   []*Cube
	opts     SetOpts
	store    *Store

	// source, overlay and changes are set while decorating. See Decorate.
	source  cube.CubePos
	overlay map[cube.Pos]block.ID
	changes map[cube.CubePos]*decoration
}

func newArea(s *Store) *Area {
	return &Area{
		cubes:    make(map[cube.CubePos]*Cube, 8),
		writable: make(map[cube.CubePos]bool, 8),
		opts:     SetOpts{InstantFall: s.conf.InstantFall},
		store:    s,
	}
}

func (a *Area) add(c *Cube) {
	a.cubes[c.pos] = c
	a.locked = append(a.locked, c)
}

// Release gives up ownership of all cubes of the area. The area must not be used afterwards.
func (a *Area) Release() {
	for i := len(a.locked) - 1; i >= 0; i-- {
		a.locked[i].mu.Unlock()
	}
	a.locked = nil
	a.changes, a.overlay = nil, nil
	clear(a.cubes)
}

// Cube returns the cube of the area at the position passed.
func (a *Area) Cube(pos cube.CubePos) (*Cube, bool) {
	c, ok := a.cubes[pos]
	return c, ok
}

// Contains checks if the voxel passed may be read through the area.
func (a *Area) Contains(pos cube.Pos) bool {
	_, ok := a.cubes[pos.Cube()]
	return ok
}

// Writable checks if the voxel passed may be written through the area.
func (a *Area) Writable(pos cube.Pos) bool {
	return a.writable[pos.Cube()]
}

// Block returns the block at the position passed. ok is false if the position lies outside the area.
func (a *Area) Block(pos cube.Pos) (b block.ID, ok bool) {
	c, ok := a.cubes[pos.Cube()]
	if !ok {
		return block.Air, false
	}
	x, y, z := pos.Local()
	if a.changes != nil {
		if b, ok := a.overlay[pos]; ok {
			return b, true
		}
		return c.baseBlock(x, y, z), true
	}
	return c.block(x, y, z), true
}

// SetBlock places a block at the position passed. If opts is nil, the options of the area are used.
// SetBlock returns false if the position is not writable. Falling blocks are handled as described by
// SetOpts.InstantFall.
func (a *Area) SetBlock(pos cube.Pos, b block.ID, opts *SetOpts) bool {
	if !a.writable[pos.Cube()] {
		return false
	}
	if opts == nil {
		opts = &a.opts
	}
	if b.Falls() {
		if below, ok := a.Block(pos.Sub(cube.Pos{0, 1})); ok && !below.Solid() {
			if !opts.InstantFall {
				a.schedule(pos)
			} else {
				pos = a.landing(pos)
			}
		}
	}
	if a.changes != nil {
		a.overlay[pos] = b
		d := a.changes[pos.Cube()]
		d.blocks = append(d.blocks, edit{pos: pos, b: b})
		return true
	}
	c := a.cubes[pos.Cube()]
	x, y, z := pos.Local()
	c.setBlock(x, y, z, b)
	return true
}

func (a *Area) schedule(pos cube.Pos) {
	if a.changes != nil {
		d := a.changes[pos.Cube()]
		d.scheduled = append(d.scheduled, pos)
		return
	}
	c := a.cubes[pos.Cube()]
	c.scheduled = append(c.scheduled, pos)
}

// landing returns the position a falling block at pos comes to rest at: directly above the first solid
// block below, or at the lowest writable voxel of the area if no support is found within it.
func (a *Area) landing(pos cube.Pos) cube.Pos {
	for {
		below := pos.Sub(cube.Pos{0, 1})
		b, ok := a.Block(below)
		if !ok || !a.writable[below.Cube()] || b.Solid() {
			return pos
		}
		pos = below
	}
}

// Surface returns the y of the topmost opaque voxel in the column of the position passed, considering only
// the cubes of the area stacked in that column. See Column.TopSolidVoxelIn.
func (a *Area) Surface(x, z int) (y int, ok bool) {
	colPos := cube.ColumnPos{X: int32(x >> 4), Z: int32(z >> 4)}
	var (
		col        *Column
		minY, maxY int32
	)
	for pos, c := range a.cubes {
		if pos.Column() != colPos {
			continue
		}
		if col == nil {
			col, minY, maxY = c.col, pos.Y, pos.Y
			continue
		}
		minY, maxY = min(minY, pos.Y), max(maxY, pos.Y)
	}
	if col == nil {
		return 0, false
	}
	if a.changes != nil {
		return a.scanSurface(x, z, minY, maxY)
	}
	return col.TopSolidVoxelIn(uint8(x&0xf), uint8(z&0xf), minY, maxY)
}

// scanSurface finds the topmost opaque voxel of a column by reading blocks, so that recorded changes are
// seen. Every cube between minY and maxY must be part of the area.
func (a *Area) scanSurface(x, z int, minY, maxY int32) (y int, ok bool) {
	for y := int(maxY)<<4 + cube.Size - 1; y >= int(minY)<<4; y-- {
		b, ok := a.Block(cube.Pos{x, y, z})
		if !ok {
			return 0, false
		}
		if b.Opaque() {
			return y, true
		}
	}
	return cube.NoSurface, true
}

// BiomeAt returns the biome of the column cell at the position passed. ok is false if no cube of the area
// is stacked in the column.
func (a *Area) BiomeAt(x, z int) (b biome.ID, ok bool) {
	colPos := cube.ColumnPos{X: int32(x >> 4), Z: int32(z >> 4)}
	for pos, c := range a.cubes {
		if pos.Column() == colPos {
			return c.col.BiomeAt(uint8(x&0xf), uint8(z&0xf)), true
		}
	}
	return 0, false
}

// AddAgent hands a spawned agent over to the cube holding its position. It returns false if that cube is
// not writable.
func (a *Area) AddAgent(ag *entity.Agent) bool {
	pos := cube.PosFromVec3(ag.Position())
	if !a.writable[pos.Cube()] {
		return false
	}
	if a.changes != nil {
		d := a.changes[pos.Cube()]
		d.agents = append(d.agents, ag)
		return true
	}
	c := a.cubes[pos.Cube()]
	c.agents = append(c.agents, ag)
	return true
}

// SetSkyLight sets the sky light level at the position passed.
func (a *Area) SetSkyLight(pos cube.Pos, level uint8) bool {
	if !a.writable[pos.Cube()] {
		return false
	}
	x, y, z := pos.Local()
	a.cubes[pos.Cube()].setSkyLight(x, y, z, level)
	return true
}

// Advance moves the cube at the position passed, which must be writable, to the stage passed. The stage
// must directly follow the current stage of the cube.
func (a *Area) Advance(pos cube.CubePos, to Stage) {
	if !a.writable[pos] {
		panic("world: advance of a cube not owned for writing")
	}
	a.cubes[pos].advance(to)
}
