package populate

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/rand"
)

// Tree grows trees on grass and dirt in the decoration box of a cube.
type Tree struct {
	BaseAmount int
	Type       TreeType
}

// TreeByName returns the tree type with the name passed: oak, birch or spruce.
func TreeByName(name string) (TreeType, bool) {
	switch name {
	case "oak":
		return OakTree{}, true
	case "birch":
		return BirchTree{}, true
	case "spruce":
		return SpruceTree{}, true
	}
	return nil, false
}

func (t Tree) Populate(a *world.Area, pos cube.CubePos, r rand.Source) {
	amount := r.Int31n(2) + int32(t.BaseAmount)
	centre := pos.Centre()
	for i := int32(0); i < amount; i++ {
		x := centre.X() + int(r.Int31n(16))
		z := centre.Z() + int(r.Int31n(16))
		if y, ok := workable(a, pos, x, z); ok {
			treeType := t.Type
			if birch, ok := treeType.(BirchTree); ok && r.Int31n(39) == 0 {
				birch.Super = true
				treeType = birch
			}
			treeType.Grow(a, cube.Pos{x, y, z}, r)
		}
	}
}

// workable returns the y above the surface at x, z if the surface is grass or dirt and lies in the cube at
// pos.
func workable(a *world.Area, pos cube.CubePos, x, z int) (int, bool) {
	y, ok := a.Surface(x, z)
	if !ok || y == cube.NoSurface || !inBox(cube.Pos{x, y, z}, pos) {
		return 0, false
	}
	if b, _ := a.Block(cube.Pos{x, y, z}); b != block.Dirt && b != block.Grass {
		return 0, false
	}
	return y + 1, true
}

// TreeType is a kind of tree that may be grown from a base position.
type TreeType interface {
	Grow(a *world.Area, pos cube.Pos, r rand.Source)
}

type SpruceTree struct{}

func (SpruceTree) Grow(a *world.Area, pos cube.Pos, r rand.Source) {
	if !canGrow(a, pos, 10) {
		return
	}
	treeHeight := int(r.Int31n(4) + 6)

	topSize := treeHeight - int(1+r.Int31n(2))
	lr := 2 + int(r.Int31n(2))

	trunk(a, pos, block.SpruceLog, treeHeight-int(r.Int31n(3)))

	radius := int(r.Int31n(2))
	minR, maxR := 0, 1

	for y := 0; y <= topSize; y++ {
		yy := pos[1] + treeHeight - y
		for x := pos[0] - radius; x <= pos[0]+radius; x++ {
			xOff := abs(x - pos[0])
			for z := pos[2] - radius; z <= pos[2]+radius; z++ {
				zOff := abs(z - pos[2])
				if xOff == radius && zOff == radius && radius > 0 {
					continue
				}
				p := cube.Pos{x, yy, z}
				if !solid(a, p) {
					a.SetBlock(p, block.SpruceLeaves, setOpts)
				}
			}
		}

		if radius >= maxR {
			radius = minR
			minR = 1
			if maxR++; maxR > lr {
				maxR = lr
			}
		} else {
			radius++
		}
	}
}

type OakTree struct{}

func (OakTree) Grow(a *world.Area, pos cube.Pos, r rand.Source) {
	if !canGrow(a, pos, 7) {
		return
	}
	treeHeight := int(r.Int31n(3)) + 4
	basicTop(a, pos, r, block.OakLeaves, treeHeight)
	trunk(a, pos, block.OakLog, treeHeight-1)
}

type BirchTree struct {
	Super bool
}

func (b BirchTree) Grow(a *world.Area, pos cube.Pos, r rand.Source) {
	if !canGrow(a, pos, 7) {
		return
	}
	treeHeight := int(r.Int31n(3)) + 5
	if b.Super {
		treeHeight += 5
	}
	basicTop(a, pos, r, block.BirchLeaves, treeHeight)
	trunk(a, pos, block.BirchLog, treeHeight-1)
}

func basicTop(a *world.Area, pos cube.Pos, r rand.Source, leaves block.ID, treeHeight int) {
	for yy := pos[1] - 3 + treeHeight; yy <= pos[1]+treeHeight; yy++ {
		yOff := yy - (pos[1] + treeHeight)
		mid := 1 - yOff/2
		for xx := pos[0] - mid; xx <= pos[0]+mid; xx++ {
			xOff := abs(xx - pos[0])
			for zz := pos[2] - mid; zz <= pos[2]+mid; zz++ {
				zOff := abs(zz - pos[2])
				if xOff == mid && zOff == mid && (yOff == 0 || r.Int31n(2) == 0) {
					continue
				}
				p := cube.Pos{xx, yy, zz}
				if !solid(a, p) || is(a, p, leaves) {
					a.SetBlock(p, leaves, setOpts)
				}
			}
		}
	}
}

func trunk(a *world.Area, pos cube.Pos, log block.ID, trunkHeight int) {
	a.SetBlock(pos.Sub(cube.Pos{0, 1}), block.Dirt, setOpts)

	for y := 0; y < trunkHeight; y++ {
		p := pos.Add(cube.Pos{0, y})
		if b, ok := a.Block(p); ok && b.Replaceable() {
			a.SetBlock(p, log, setOpts)
		}
	}
}

// canGrow checks if every voxel the tree could occupy is replaceable. Voxels outside the area are ignored,
// as the tree is clipped to the area when grown.
func canGrow(a *world.Area, pos cube.Pos, treeHeight int) bool {
	radiusToCheck := 0
	for yy := 0; yy < treeHeight+3; yy++ {
		if yy == 1 || yy == treeHeight {
			radiusToCheck++
		}
		for xx := -radiusToCheck; xx <= radiusToCheck; xx++ {
			for zz := -radiusToCheck; zz <= radiusToCheck; zz++ {
				b, ok := a.Block(cube.Pos{pos[0] + xx, pos[1] + yy, pos[2] + zz})
				if ok && !b.Replaceable() {
					return false
				}
			}
		}
	}
	return true
}
