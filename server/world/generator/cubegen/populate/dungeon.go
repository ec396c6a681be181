package populate

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/rand"
)

// Dungeon is a small room with cobblestone walls, a mossy floor, a spawner in the centre and up to two chests
// against its walls.
type Dungeon struct{}

const dungeonHeight = 3

// Place attempts to carve the room around pos. The room is only placed if its floor and ceiling are solid
// and between one and five openings connect it to open space.
func (Dungeon) Place(a *world.Area, pos cube.Pos, r rand.Source) bool {
	rx := int(r.Int31n(2)) + 2
	rz := int(r.Int31n(2)) + 2

	openings := 0
	for x := -rx - 1; x <= rx+1; x++ {
		for y := -1; y <= dungeonHeight+1; y++ {
			for z := -rz - 1; z <= rz+1; z++ {
				p := pos.Add(cube.Pos{x, y, z})
				if !a.Writable(p) {
					return false
				}
				s := solid(a, p)
				if (y == -1 || y == dungeonHeight+1) && !s {
					return false
				}
				wall := x == -rx-1 || x == rx+1 || z == -rz-1 || z == rz+1
				if wall && y == 0 && is(a, p, block.Air) && is(a, p.Add(cube.Pos{0, 1}), block.Air) {
					openings++
				}
			}
		}
	}
	if openings < 1 || openings > 5 {
		return false
	}

	for x := -rx - 1; x <= rx+1; x++ {
		for y := dungeonHeight; y >= -1; y-- {
			for z := -rz - 1; z <= rz+1; z++ {
				p := pos.Add(cube.Pos{x, y, z})
				switch {
				case x != -rx-1 && y != -1 && z != -rz-1 && x != rx+1 && y != dungeonHeight+1 && z != rz+1:
					a.SetBlock(p, block.Air, setOpts)
				case y >= 0 && !solid(a, p.Sub(cube.Pos{0, 1})):
					a.SetBlock(p, block.Air, setOpts)
				case solid(a, p):
					if y == -1 && r.Int31n(4) != 0 {
						a.SetBlock(p, block.MossyCobblestone, setOpts)
					} else {
						a.SetBlock(p, block.Cobblestone, setOpts)
					}
				}
			}
		}
	}

	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			p := pos.Add(cube.Pos{
				int(r.Int31n(int32(rx*2+1))) - rx,
				0,
				int(r.Int31n(int32(rz*2+1))) - rz,
			})
			if !is(a, p, block.Air) {
				continue
			}
			walls := 0
			for _, side := range []cube.Pos{{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1}} {
				if solid(a, p.Add(side)) {
					walls++
				}
			}
			if walls == 1 {
				a.SetBlock(p, block.Chest, setOpts)
				break
			}
		}
	}
	a.SetBlock(pos, block.Spawner, setOpts)
	return true
}
