package cubegen

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
)

// light fills the sky light of the cube. Light travels straight down from the top of the cube above, which
// is assumed to be open to the sky: it stops at opaque blocks and is dimmed by liquids and leaves. Light is
// not spread sideways.
func (g *Generator) light(a *world.Area, pos cube.CubePos) {
	base := pos.Min()
	top := base.Y() + 2*cube.Size - 1

	for x := 0; x < cube.Size; x++ {
		for z := 0; z < cube.Size; z++ {
			level := 15
			for y := top; y >= base.Y() && level > 0; y-- {
				p := cube.Pos{base.X() + x, y, base.Z() + z}
				b, _ := a.Block(p)
				level -= filter(b)
				if level < 0 {
					level = 0
				}
				if y < base.Y()+cube.Size {
					a.SetSkyLight(p, uint8(level))
				}
			}
		}
	}
}

// filter returns the amount of light a block absorbs.
func filter(b block.ID) int {
	switch {
	case b.Opaque():
		return 15
	case b.Liquid():
		return 2
	case b.Leaves():
		return 1
	}
	return 0
}
