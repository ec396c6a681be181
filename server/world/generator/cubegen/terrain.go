package cubegen

import (
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
)

const smoothSize = 2

var gaussianKernel = [5][5]float64{
	{1.4715177646858, 2.141045714076, 2.4261226388505, 2.141045714076, 1.4715177646858},
	{2.141045714076, 3.1152031322856, 3.5299876103384, 3.1152031322856, 2.141045714076},
	{2.4261226388505, 3.5299876103384, 4, 3.5299876103384, 2.4261226388505},
	{2.141045714076, 3.1152031322856, 3.5299876103384, 3.1152031322856, 2.141045714076},
	{1.4715177646858, 2.141045714076, 2.4261226388505, 2.141045714076, 1.4715177646858},
}

const (
	// surfaceSpread is the share of a biome's volatility the surface actually varies by. It keeps the
	// surface well inside the height envelope.
	surfaceSpread = 0.2
	// caveThreshold is the noise value above which voxels deep enough below the surface are carved out.
	caveThreshold = 0.45
	// caveDepth is the minimum depth below the surface at which caves are carved.
	caveDepth = 6
)

// SurfaceHeight returns the elevation of the terrain surface at x, z before caves are carved. It is a pure
// function of the seed and the position.
func (g *Generator) SurfaceHeight(x, z int) float64 {
	var p biome.HeightParams
	var weightSum float64
	for sx := -smoothSize; sx <= smoothSize; sx++ {
		for sz := -smoothSize; sz <= smoothSize; sz++ {
			weight := gaussianKernel[sx+smoothSize][sz+smoothSize]
			adjacent := g.conf.Biomes.HeightParams(g.conf.Source.Biome(x+sx, z+sz))
			p.Base += adjacent.Base * weight
			p.Volatility += adjacent.Volatility * weight
			weightSum += weight
		}
	}
	p.Base /= weightSum
	p.Volatility /= weightSum

	fx, fz := float64(x), float64(z)
	n := g.height.Noise2D(fx/256, fz/256) + g.detail.Noise2D(fx/48, fz/48)/4
	return (p.Base + p.Volatility*surfaceSpread*n) * g.conf.MaxElevation
}

// generateTerrain fills the cube with stone below the surface, carves caves into it and fills open space
// below sea level with water.
func (g *Generator) generateTerrain(a *world.Area, pos cube.CubePos) {
	base := pos.Min()
	for x := 0; x < cube.Size; x++ {
		for z := 0; z < cube.Size; z++ {
			wx, wz := base.X()+x, base.Z()+z
			surface := g.SurfaceHeight(wx, wz)
			for y := 0; y < cube.Size; y++ {
				wy := base.Y() + y
				p := cube.Pos{wx, wy, wz}
				switch {
				case float64(wy) < surface:
					if !g.cave(wx, wy, wz, surface) {
						a.SetBlock(p, block.Stone, nil)
					}
				case wy < g.conf.SeaLevel:
					a.SetBlock(p, block.Water, nil)
				}
			}
		}
	}
}

func (g *Generator) cave(x, y, z int, surface float64) bool {
	if float64(y) > surface-caveDepth {
		return false
	}
	return g.caves.Noise3D(float64(x)/32, float64(y)/20, float64(z)/32) > caveThreshold
}
