package world

import (
	"encoding/binary"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/entity"
	"github.com/tallworlds/cubicgen/server/internal/guard"
)

// Cube is a 16x16x16 volume of voxels. Its content may only be changed by the owner of the cube's lock,
// which is obtained through Store.Acquire. The stage of a cube may be read at any time.
type Cube struct {
	pos cube.CubePos
	col *Column

	stage   atomic.Uint32
	evicted atomic.Bool

	// mu is held by whoever owns the cube while generating it.
	mu sync.Mutex

	blocks   [cube.Volume]block.ID
	skyLight [cube.Volume / 2]uint8
	agents   []*entity.Agent
	// scheduled holds falling blocks placed without support, awaiting a block update.
	scheduled []cube.Pos
	digest    uint64

	// settled is set once the decorations spilled into the cube were applied. base holds the blocks of the
	// cube from before, if any decoration placed blocks.
	settled bool
	base    *[cube.Volume]block.ID
}

func newCube(pos cube.CubePos, col *Column) *Cube {
	return &Cube{pos: pos, col: col}
}

func index(x, y, z uint8) int {
	return int(y)<<8 | int(z)<<4 | int(x)
}

// Pos returns the position of the cube.
func (c *Cube) Pos() cube.CubePos {
	return c.pos
}

// Column returns the column the cube is stacked in.
func (c *Cube) Column() *Column {
	return c.col
}

// Stage returns the last generation stage the cube completed.
func (c *Cube) Stage() Stage {
	return Stage(c.stage.Load())
}

// Evicted checks if the cube was removed from its store.
func (c *Cube) Evicted() bool {
	return c.evicted.Load()
}

// advance moves the cube to the stage passed, which must directly follow its current stage.
func (c *Cube) advance(to Stage) {
	from := c.Stage()
	if to != from+1 {
		guard.Panic("%v: cannot advance from stage %v to %v", c.pos, from, to)
	}
	if to == StageTerrain {
		c.col.track(c)
	}
	if to == StageFinal {
		c.digest = c.computeDigest()
	}
	c.stage.Store(uint32(to))
}

// Block returns the block at the local position passed. Block blocks while the cube is being generated.
func (c *Cube) Block(x, y, z uint8) block.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocks[index(x, y, z)]
}

// SkyLight returns the sky light level at the local position passed. It is zero until the cube completes
// StageLighting.
func (c *Cube) SkyLight(x, y, z uint8) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skyLight0(x, y, z)
}

// Agents returns the agents spawned in the cube.
func (c *Cube) Agents() []*entity.Agent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.agents)
}

// ScheduledUpdates returns the positions of blocks that await a block update, such as unsupported sand
// placed outside of InstantFall mode.
func (c *Cube) ScheduledUpdates() []cube.Pos {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.scheduled)
}

// Digest returns a hash of the voxels of the cube. The digest is stored once the cube reaches StageFinal;
// before that it is computed from the current content.
func (c *Cube) Digest() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Stage() == StageFinal {
		return c.digest
	}
	return c.computeDigest()
}

func (c *Cube) computeDigest() uint64 {
	h := xxhash.New()
	var buf [cube.Volume * 2]byte
	for i, b := range c.blocks {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(b))
	}
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// block and setBlock must only be called by the owner of the cube.
func (c *Cube) block(x, y, z uint8) block.ID {
	return c.blocks[index(x, y, z)]
}

func (c *Cube) setBlock(x, y, z uint8, b block.ID) {
	i := index(x, y, z)
	if c.blocks[i] == b {
		return
	}
	prev := c.blocks[i]
	c.blocks[i] = b
	if prev.Opaque() != b.Opaque() {
		c.col.update(c, x, y, z)
	}
}

func (c *Cube) skyLight0(x, y, z uint8) uint8 {
	i := index(x, y, z)
	return (c.skyLight[i>>1] >> ((i & 1) << 2)) & 0xf
}

func (c *Cube) setSkyLight(x, y, z, level uint8) {
	i := index(x, y, z)
	shift := (i & 1) << 2
	c.skyLight[i>>1] = c.skyLight[i>>1]&^(0xf<<shift) | (level&0xf)<<shift
}
