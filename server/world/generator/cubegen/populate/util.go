package populate

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
)

var setOpts = &world.SetOpts{InstantFall: true}

// inBox checks if the voxel passed lies within the decoration box of the cube at pos, vertically bounded by
// the cube itself.
func inBox(p cube.Pos, pos cube.CubePos) bool {
	c := pos.Centre()
	m := pos.Min()
	return p[0] >= c[0] && p[0] < c[0]+cube.Size &&
		p[2] >= c[2] && p[2] < c[2]+cube.Size &&
		p[1] >= m[1] && p[1] < m[1]+cube.Size
}

// is checks if the block at the position passed is readable through the area and equal to b.
func is(a *world.Area, p cube.Pos, b block.ID) bool {
	cur, ok := a.Block(p)
	return ok && cur == b
}

// solid checks if the block at the position passed is readable through the area and solid.
func solid(a *world.Area, p cube.Pos) bool {
	cur, ok := a.Block(p)
	return ok && cur.Solid()
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
