package populate

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/rand"
)

// Lake is a pocket of liquid shaped from a handful of overlapping ellipsoids in a 16x8x16 box. The lower
// half of the shape is filled with Liquid, the upper half is carved out.
type Lake struct {
	Liquid block.ID
	// Freeze turns the surface of water lakes into ice.
	Freeze bool
}

const (
	lakeW = 16
	lakeH = 8
)

// Place attempts to place the lake with its box centred horizontally on pos. The lake is dropped down onto
// the first non-air block below pos. Place returns false, without changing anything, if the lake would not
// be enclosed or would reach outside the writable cubes of the area.
func (l Lake) Place(a *world.Area, pos cube.Pos, r rand.Source) bool {
	pos = pos.Sub(cube.Pos{8, 0, 8})
	for {
		below := pos.Sub(cube.Pos{0, 1})
		if !is(a, pos, block.Air) || !a.Contains(below) {
			break
		}
		pos = below
	}
	pos = pos.Sub(cube.Pos{0, 4})

	var shape [lakeW * lakeW * lakeH]bool
	at := func(x, y, z int) bool {
		return shape[(x*lakeW+z)*lakeH+y]
	}
	n := int(r.Int31n(4)) + 4
	for i := 0; i < n; i++ {
		sx := r.Float64()*6 + 3
		sy := r.Float64()*4 + 2
		sz := r.Float64()*6 + 3
		cx := r.Float64()*(lakeW-sx-2) + 1 + sx/2
		cy := r.Float64()*(lakeH-sy-4) + 2 + sy/2
		cz := r.Float64()*(lakeW-sz-2) + 1 + sz/2

		for x := 1; x < lakeW-1; x++ {
			for z := 1; z < lakeW-1; z++ {
				for y := 1; y < lakeH-1; y++ {
					dx := (float64(x) - cx) / (sx / 2)
					dy := (float64(y) - cy) / (sy / 2)
					dz := (float64(z) - cz) / (sz / 2)
					if dx*dx+dy*dy+dz*dz < 1 {
						shape[(x*lakeW+z)*lakeH+y] = true
					}
				}
			}
		}
	}
	border := func(x, y, z int) bool {
		return !at(x, y, z) && (x < lakeW-1 && at(x+1, y, z) || x > 0 && at(x-1, y, z) ||
			z < lakeW-1 && at(x, y, z+1) || z > 0 && at(x, y, z-1) ||
			y < lakeH-1 && at(x, y+1, z) || y > 0 && at(x, y-1, z))
	}

	for x := 0; x < lakeW; x++ {
		for z := 0; z < lakeW; z++ {
			for y := 0; y < lakeH; y++ {
				p := pos.Add(cube.Pos{x, y, z})
				if at(x, y, z) && !a.Writable(p) {
					return false
				}
				if !border(x, y, z) {
					continue
				}
				b, ok := a.Block(p)
				if !ok {
					return false
				}
				if y >= lakeH/2 && b.Liquid() {
					return false
				}
				if y < lakeH/2 && !b.Solid() && b != l.Liquid {
					return false
				}
			}
		}
	}

	for x := 0; x < lakeW; x++ {
		for z := 0; z < lakeW; z++ {
			for y := 0; y < lakeH; y++ {
				if !at(x, y, z) {
					continue
				}
				fill := l.Liquid
				if y >= lakeH/2 {
					fill = block.Air
				}
				a.SetBlock(pos.Add(cube.Pos{x, y, z}), fill, setOpts)
			}
		}
	}

	if l.Liquid == block.Lava {
		for x := 0; x < lakeW; x++ {
			for z := 0; z < lakeW; z++ {
				for y := 0; y < lakeH; y++ {
					p := pos.Add(cube.Pos{x, y, z})
					if border(x, y, z) && (y < lakeH/2 || r.Int31n(2) != 0) && solid(a, p) {
						a.SetBlock(p, block.Stone, setOpts)
					}
				}
			}
		}
	}
	if l.Liquid == block.Water && l.Freeze {
		for x := 0; x < lakeW; x++ {
			for z := 0; z < lakeW; z++ {
				p := pos.Add(cube.Pos{x, lakeH/2 - 1, z})
				if is(a, p, block.Water) && is(a, p.Add(cube.Pos{0, 1}), block.Air) {
					a.SetBlock(p, block.Ice, setOpts)
				}
			}
		}
	}
	return true
}
