package rand

import "github.com/tallworlds/cubicgen/server/block/cube"

// CubeSeed derives the seed of the random stream used to decorate the cube at pos in a world with the seed
// passed. It is a pure function: the same world seed and position always produce the same value,
// independent of the order in which cubes are generated.
//
// Three 64-bit multipliers are drawn from a stream seeded with the world seed and forced odd, after which
// the coordinates are mixed with 64-bit wrapping arithmetic.
func CubeSeed(worldSeed int64, pos cube.CubePos) int64 {
	r := NewRandom(worldSeed)
	m1 := r.Int63()/2*2 + 1
	m2 := r.Int63()/2*2 + 1
	m3 := r.Int63()/2*2 + 1
	return (int64(pos.X)*m1 + int64(pos.Y)*m2 + int64(pos.Z)*m3) ^ worldSeed
}

// ForCube returns a fresh stream seeded with the CubeSeed of pos. Every generation operation must obtain
// its own stream through ForCube.
func ForCube(worldSeed int64, pos cube.CubePos) *Random {
	return NewRandom(CubeSeed(worldSeed, pos))
}
