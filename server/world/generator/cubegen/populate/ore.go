package populate

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/rand"
)

// Ore places veins of the types in Types.
type Ore struct {
	Types []OreType
	// CubesPerColumn is the divisor applied to the per-column probabilities of the vein types.
	CubesPerColumn int
	// MaxElevation is the maximum elevation of the world, against which OreType.Target is compared.
	MaxElevation float64
}

// DefaultOres returns the default vein table in the order in which veins are attempted.
func DefaultOres() []OreType {
	return []OreType{
		{Material: block.Dirt, Replaces: block.Stone, ClusterSize: 32, Attempts: 20, Probability: 1},
		{Material: block.CoalOre, Replaces: block.Stone, ClusterSize: 16, Attempts: 20, Probability: 2, Target: 1, HasTarget: true},
		{Material: block.IronOre, Replaces: block.Stone, ClusterSize: 8, Attempts: 20, Probability: 4, Target: 0, HasTarget: true},
		{Material: block.GoldOre, Replaces: block.Stone, ClusterSize: 8, Attempts: 2, Probability: 8, Target: -0.5, HasTarget: true},
		{Material: block.RedstoneOre, Replaces: block.Stone, ClusterSize: 7, Attempts: 8, Probability: 16, Target: -0.75, HasTarget: true},
		{Material: block.DiamondOre, Replaces: block.Stone, ClusterSize: 7, Attempts: 1, Probability: 16, Target: -0.75, HasTarget: true},
		{Material: block.LapisOre, Replaces: block.Stone, ClusterSize: 6, Attempts: 1, Probability: 8, Target: -0.5, HasTarget: true},
	}
}

// Populate makes Attempts attempts per vein type. Each attempt succeeds with the per-cube probability of the
// type, after which a position in the decoration box is drawn. Veins are only placed at positions whose
// elevation, relative to the maximum elevation, does not exceed the target of the type.
func (o Ore) Populate(a *world.Area, pos cube.CubePos, r rand.Source) {
	centre := pos.Centre()
	for _, ore := range o.Types {
		prob := ore.CubeProbability(o.CubesPerColumn)
		for i := 0; i < ore.Attempts; i++ {
			if r.Float64() >= prob {
				continue
			}
			p := offset(centre, r)
			if ore.HasTarget && float64(p.Y())/o.MaxElevation > ore.Target {
				continue
			}
			ore.Place(a, p, r)
		}
	}
}

// OreType is a single type of vein.
type OreType struct {
	Material, Replaces block.ID
	ClusterSize        int
	// Attempts is the amount of attempts made per cube.
	Attempts int
	// Probability is the chance of an attempt succeeding in a column of CubesPerColumn cubes.
	Probability float64
	// Target is the highest normalised elevation at which the vein is placed, if HasTarget is set.
	Target    float64
	HasTarget bool
}

// CubeProbability returns the chance of a single attempt succeeding in one cube.
func (o OreType) CubeProbability(cubesPerColumn int) float64 {
	if cubesPerColumn <= 0 {
		cubesPerColumn = 1
	}
	return o.Probability / float64(cubesPerColumn)
}

// Place places an ellipsoid vein starting at pos. Only blocks equal to Replaces in writable cubes of the area
// are changed.
func (o OreType) Place(a *world.Area, pos cube.Pos, r rand.Source) {
	clusterSize := float64(o.ClusterSize)
	vec := pos.Vec3()
	angle := r.Float64() * math.Pi
	offset := mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(clusterSize / 8)
	x1, x2 := vec[0]+offset[0], vec[0]-offset[0]
	z1, z2 := vec[2]+offset[1], vec[2]-offset[1]
	y1, y2 := vec[1]+float64(r.Int31n(3))-2, vec[1]+float64(r.Int31n(3))-2

	for i := float64(0); i <= clusterSize; i++ {
		seed := mgl64.Vec3{
			x1 + (x2-x1)*i/clusterSize,
			y1 + (y2-y1)*i/clusterSize,
			z1 + (z2-z1)*i/clusterSize,
		}
		size := ((math.Sin(i*(math.Pi/clusterSize))+1)*r.Float64()*clusterSize/16 + 1) / 2

		start := cube.PosFromVec3(seed.Sub(mgl64.Vec3{size, size, size}))
		end := cube.PosFromVec3(seed.Add(mgl64.Vec3{size, size, size}))

		for xx := start[0]; xx <= end[0]; xx++ {
			sizeX := (float64(xx) + 0.5 - seed[0]) / size
			sizeX *= sizeX
			if sizeX >= 1 {
				continue
			}
			for yy := start[1]; yy <= end[1]; yy++ {
				sizeY := (float64(yy) + 0.5 - seed[1]) / size
				sizeY *= sizeY
				if sizeX+sizeY >= 1 {
					continue
				}
				for zz := start[2]; zz <= end[2]; zz++ {
					sizeZ := (float64(zz) + 0.5 - seed[2]) / size
					sizeZ *= sizeZ

					target := cube.Pos{xx, yy, zz}
					if sizeX+sizeY+sizeZ < 1 && is(a, target, o.Replaces) {
						a.SetBlock(target, o.Material, setOpts)
					}
				}
			}
		}
	}
}
