package cubegen

import (
	"math"

	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
)

// envelopeEpsilon widens the envelope slightly so that rounding never excludes a surface voxel.
const envelopeEpsilon = 1.0 / 64

// Envelope is a conservative estimate of the elevations the terrain surface of a column can take, in
// voxels.
type Envelope struct {
	Min, Max float64
}

// EstimateEnvelope computes the Envelope of a column from the height parameters of the biomes of its cells.
// For every cell the surface lies between base-volatility/4 and base+volatility; the envelope spans the
// lowest and highest of these bounds, scaled by maxElevation.
func EstimateEnvelope(col *world.Column, table *biome.Table, maxElevation float64) Envelope {
	lo, hi := math.Inf(1), math.Inf(-1)
	for z := uint8(0); z < 16; z++ {
		for x := uint8(0); x < 16; x++ {
			p := table.HeightParams(col.BiomeAt(x, z))
			lo = min(lo, p.Base-p.Volatility/4-envelopeEpsilon)
			hi = max(hi, p.Base+p.Volatility+envelopeEpsilon)
		}
	}
	return Envelope{Min: lo * maxElevation, Max: hi * maxElevation}
}

// bounds returns the lowest and highest voxel y of the cube at height cubeY.
func bounds(cubeY int32) (lower, upper float64) {
	lower = float64(int(cubeY) * cube.Size)
	return lower, lower + cube.Size - 1
}

// Underground checks if the cube at height cubeY may hold voxels below the surface.
func (e Envelope) Underground(cubeY int32) bool {
	lower, _ := bounds(cubeY)
	return lower < e.Max
}

// Sky checks if the cube at height cubeY may hold voxels above the surface.
func (e Envelope) Sky(cubeY int32) bool {
	_, upper := bounds(cubeY)
	return upper > e.Min
}

// Surface checks if the cube at height cubeY may hold the surface.
func (e Envelope) Surface(cubeY int32) bool {
	lower, upper := bounds(cubeY)
	return lower <= e.Max && upper >= e.Min
}
