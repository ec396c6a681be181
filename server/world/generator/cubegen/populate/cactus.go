package populate

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/rand"
)

// Cactus grows cacti of one to three blocks high on sand. A cactus block is only placed if none of the
// blocks next to it are solid.
type Cactus struct {
	Amount int
}

// Populate ...
func (c Cactus) Populate(a *world.Area, pos cube.CubePos, r rand.Source) {
	amount := r.Int31n(2) + int32(c.Amount)
	centre := pos.Centre()
	for i := int32(0); i < amount; i++ {
		x := centre.X() + int(r.Int31n(16))
		z := centre.Z() + int(r.Int31n(16))

		y, ok := a.Surface(x, z)
		if !ok || y == cube.NoSurface || !inBox(cube.Pos{x, y, z}, pos) || !is(a, cube.Pos{x, y, z}, block.Sand) {
			continue
		}
		height := 1 + int(r.Int31n(r.Int31n(3)+1))
		for h := 1; h <= height; h++ {
			p := cube.Pos{x, y + h, z}
			if !is(a, p, block.Air) || !freeStanding(a, p) {
				break
			}
			a.SetBlock(p, block.Cactus, setOpts)
		}
	}
}

func freeStanding(a *world.Area, p cube.Pos) bool {
	for _, side := range []cube.Pos{{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}} {
		if b, ok := a.Block(p.Add(side)); !ok || b.Solid() {
			return false
		}
	}
	return true
}
