package populate

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/rand"
)

type TallGrass struct {
	Amount int
}

func (t TallGrass) Populate(a *world.Area, pos cube.CubePos, r rand.Source) {
	amount := r.Int31n(2) + int32(t.Amount)
	centre := pos.Centre()
	for i := int32(0); i < amount; i++ {
		x := centre.X() + int(r.Int31n(16))
		z := centre.Z() + int(r.Int31n(16))

		y, ok := a.Surface(x, z)
		if !ok || y == cube.NoSurface || !inBox(cube.Pos{x, y, z}, pos) {
			continue
		}
		ground, above := cube.Pos{x, y, z}, cube.Pos{x, y + 1, z}
		if is(a, ground, block.Grass) && is(a, above, block.Air) {
			a.SetBlock(above, block.ShortGrass, nil)
		}
	}
}
