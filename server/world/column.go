package world

import (
	"sync"

	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
)

// Column is a vertical stack of cubes sharing the same horizontal position. It holds the biomes of the
// column and a height index: the topmost opaque voxel of every column cell, per cube.
type Column struct {
	pos    cube.ColumnPos
	biomes [256]biome.ID

	mu sync.RWMutex
	// tops holds, per tracked cube, the local y of the topmost opaque voxel of every cell, or -1.
	tops map[int32]*[256]int8
	// cubes counts the cubes of the column held by the store.
	cubes int
}

func newColumn(pos cube.ColumnPos, src biome.Source) *Column {
	c := &Column{pos: pos, tops: make(map[int32]*[256]int8)}
	baseX, baseZ := int(pos.X)<<4, int(pos.Z)<<4
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			c.biomes[z<<4|x] = src.Biome(baseX+x, baseZ+z)
		}
	}
	return c
}

// Pos returns the position of the column.
func (c *Column) Pos() cube.ColumnPos {
	return c.pos
}

// BiomeAt returns the biome of the column cell at the local position passed.
func (c *Column) BiomeAt(x, z uint8) biome.ID {
	return c.biomes[int(z&0xf)<<4|int(x&0xf)]
}

// TopSolidVoxel returns the y of the topmost opaque voxel in the column cell passed over all cubes with
// terrain. ok is false if no cube of the column has terrain yet. If no cube holds an opaque voxel in the
// cell, cube.NoSurface is returned.
func (c *Column) TopSolidVoxel(x, z uint8) (y int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.tops) == 0 {
		return 0, false
	}
	i := int(z&0xf)<<4 | int(x&0xf)
	y = cube.NoSurface
	for cy, tops := range c.tops {
		if t := tops[i]; t >= 0 {
			y = max(y, int(cy)<<4+int(t))
		}
	}
	return y, true
}

// TopSolidVoxelIn returns the y of the topmost opaque voxel in the column cell passed, considering only the
// cubes between minY and maxY inclusive. Unlike TopSolidVoxel, the result does not depend on cubes outside
// the range. ok is false if any cube that must be inspected has no terrain yet.
func (c *Column) TopSolidVoxelIn(x, z uint8, minY, maxY int32) (y int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := int(z&0xf)<<4 | int(x&0xf)
	for cy := maxY; cy >= minY; cy-- {
		tops, tracked := c.tops[cy]
		if !tracked {
			return 0, false
		}
		if t := tops[i]; t >= 0 {
			return int(cy)<<4 + int(t), true
		}
	}
	return cube.NoSurface, true
}

// track starts maintaining the height index for the cube passed.
func (c *Column) track(cu *Cube) {
	tops := new([256]int8)
	for z := uint8(0); z < 16; z++ {
		for x := uint8(0); x < 16; x++ {
			tops[int(z)<<4|int(x)] = scanDown(cu, x, 15, z)
		}
	}
	c.mu.Lock()
	c.tops[cu.pos.Y] = tops
	c.mu.Unlock()
}

// update refreshes the height index after the opacity of the voxel at the local position passed changed.
func (c *Column) update(cu *Cube, x, y, z uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tops, ok := c.tops[cu.pos.Y]
	if !ok {
		return
	}
	i := int(z)<<4 | int(x)
	switch {
	case cu.block(x, y, z).Opaque() && int8(y) > tops[i]:
		tops[i] = int8(y)
	case int8(y) == tops[i]:
		tops[i] = scanDown(cu, x, y, z)
	}
}

func (c *Column) forget(cy int32) {
	c.mu.Lock()
	delete(c.tops, cy)
	c.mu.Unlock()
}

// scanDown returns the local y of the first opaque voxel at or below y, or -1.
func scanDown(cu *Cube, x, y, z uint8) int8 {
	for yy := int(y); yy >= 0; yy-- {
		if cu.block(x, uint8(yy), z).Opaque() {
			return int8(yy)
		}
	}
	return -1
}
