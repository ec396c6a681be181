// Package populate places features in cubes that are being decorated: ore veins, liquid pockets, rooms,
// trees, tall grass and agents. Every populator draws all of its randomness from the stream passed and only
// touches voxels through the world.Area it is given.
package populate

import (
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/rand"
)

// Populator decorates the cube at pos. Features are anchored at the centre of the cube, so they may spill
// into the +X/+Y/+Z neighbours of the cube held by the area.
type Populator interface {
	Populate(a *world.Area, pos cube.CubePos, r rand.Source)
}

// offset returns a position within the decoration box of a cube: the 16x16x16 box starting at the centre
// of the cube.
func offset(centre cube.Pos, r rand.Source) cube.Pos {
	x := int(r.Int31n(16))
	y := int(r.Int31n(16))
	z := int(r.Int31n(16))
	return centre.Add(cube.Pos{x, y, z})
}
