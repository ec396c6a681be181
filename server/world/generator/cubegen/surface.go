package cubegen

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
)

// applyCover replaces the stone at the top of the terrain with the ground cover of the biome of every column
// cell. The cube above is read to know how deep below the surface each voxel of the cube lies. Its blocks
// are read as they were before decoration, and whether or not it already has its cover does not change the
// result: ice is treated like the water it froze from.
func (g *Generator) applyCover(a *world.Area, pos cube.CubePos) {
	c, _ := a.Cube(pos)
	col := c.Column()
	base := pos.Min()
	top := base.Y() + 2*cube.Size - 1

	for x := 0; x < cube.Size; x++ {
		for z := 0; z < cube.Size; z++ {
			b, _ := g.conf.Biomes.Biome(col.BiomeAt(uint8(x), uint8(z)))
			wx, wz := base.X()+x, base.Z()+z

			cover, overlay := b.Cover, block.Air
			if len(cover) > 0 && !cover[0].Solid() {
				overlay, cover = cover[0], cover[1:]
			}

			depth := -1
			underwater := false
			for wy := top; wy >= base.Y(); wy-- {
				p := cube.Pos{wx, wy, wz}
				cur, _ := a.BaseBlock(p)
				if cur == block.Ice {
					cur = block.Water
				}
				if !cur.Solid() {
					if b.Frozen && cur == block.Water && wy == g.conf.SeaLevel-1 && a.Writable(p) {
						a.SetBlock(p, block.Ice, nil)
					}
					depth, underwater = -1, cur.Liquid()
					continue
				}
				depth++
				if cur != block.Stone || !a.Writable(p) {
					continue
				}
				if depth == 0 && overlay != block.Air && !underwater {
					if above := p.Add(cube.Pos{0, 1}); a.Writable(above) {
						if ab, _ := a.BaseBlock(above); ab == block.Air {
							a.SetBlock(above, overlay, nil)
						}
					}
				}
				if depth < len(cover) {
					fill := cover[depth]
					if underwater && fill == block.Grass {
						fill = block.Dirt
					}
					a.SetBlock(p, fill, nil)
				}
			}
		}
	}
}
