package cube

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

const (
	// Size is the edge length of a cube in voxels.
	Size = 16
	// Volume is the amount of voxels held by a single cube.
	Volume = Size * Size * Size

	// MinBlockY and MaxBlockY bound the vertical voxel range of a world. Half of the int32 range is used
	// so that offsets applied to a valid Y never overflow.
	MinBlockY = math.MinInt32 >> 1
	MaxBlockY = math.MaxInt32 >> 1

	// NoSurface is returned by height queries for column cells that are known but hold no opaque voxel.
	NoSurface = math.MinInt32
)

// Pos holds the position of a voxel. The position is represented as an array with an x, y and z value.
// Unlike a chunked world, the y value is unbounded apart from MinBlockY and MaxBlockY.
type Pos [3]int

// String converts the Pos to a string in the format (1,2,3) and returns it.
func (p Pos) String() string {
	return fmt.Sprintf("(%v,%v,%v)", p[0], p[1], p[2])
}

// X returns the X coordinate of the voxel position.
func (p Pos) X() int {
	return p[0]
}

// Y returns the Y coordinate of the voxel position.
func (p Pos) Y() int {
	return p[1]
}

// Z returns the Z coordinate of the voxel position.
func (p Pos) Z() int {
	return p[2]
}

// Add adds two voxel positions together and returns a new one with the combined values.
func (p Pos) Add(pos Pos) Pos {
	return Pos{p[0] + pos[0], p[1] + pos[1], p[2] + pos[2]}
}

// Sub subtracts pos from p and returns a new one with the subtracted values.
func (p Pos) Sub(pos Pos) Pos {
	return Pos{p[0] - pos[0], p[1] - pos[1], p[2] - pos[2]}
}

// Vec3 returns a vec3 holding the same coordinates as the voxel position.
func (p Pos) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
}

// Vec3Centre returns a Vec3 holding the coordinates of the centre of the voxel.
func (p Pos) Vec3Centre() mgl64.Vec3 {
	return mgl64.Vec3{float64(p[0]) + 0.5, float64(p[1]) + 0.5, float64(p[2]) + 0.5}
}

// Cube returns the position of the cube that holds the voxel.
func (p Pos) Cube() CubePos {
	return CubePos{int32(p[0] >> 4), int32(p[1] >> 4), int32(p[2] >> 4)}
}

// Local returns the coordinates of the voxel relative to the cube that holds it. Each value is in the
// range 0-15.
func (p Pos) Local() (x, y, z uint8) {
	return uint8(p[0] & 0xf), uint8(p[1] & 0xf), uint8(p[2] & 0xf)
}

// PosFromVec3 returns a voxel position by a Vec3, rounding the values down adequately.
func PosFromVec3(vec3 mgl64.Vec3) Pos {
	return Pos{int(math.Floor(vec3[0])), int(math.Floor(vec3[1])), int(math.Floor(vec3[2]))}
}

// CubePos is the position of a 16x16x16 cube in cube coordinates. It is comparable and used as the key of
// every cube cache.
type CubePos struct {
	X, Y, Z int32
}

// String ...
func (c CubePos) String() string {
	return fmt.Sprintf("cube(%v,%v,%v)", c.X, c.Y, c.Z)
}

// Add returns the cube position offset by the one passed.
func (c CubePos) Add(o CubePos) CubePos {
	return CubePos{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

// Min returns the voxel with the lowest coordinates held by the cube.
func (c CubePos) Min() Pos {
	return Pos{int(c.X) << 4, int(c.Y) << 4, int(c.Z) << 4}
}

// Max returns the voxel with the highest coordinates held by the cube.
func (c CubePos) Max() Pos {
	return c.Min().Add(Pos{Size - 1, Size - 1, Size - 1})
}

// Centre returns the voxel at the centre of the cube, offset by 8 on every axis from Min. Decoration
// anchored at the centre spans the cube and its +X/+Y/+Z neighbours.
func (c CubePos) Centre() Pos {
	return c.Min().Add(Pos{Size / 2, Size / 2, Size / 2})
}

// Column returns the position of the column the cube is stacked in.
func (c CubePos) Column() ColumnPos {
	return ColumnPos{c.X, c.Z}
}

// Contains checks if the voxel position passed lies within the cube.
func (c CubePos) Contains(p Pos) bool {
	return p.Cube() == c
}

// Distance returns the Chebyshev distance between two cube positions.
func (c CubePos) Distance(o CubePos) int32 {
	return max(abs(c.X-o.X), abs(c.Y-o.Y), abs(c.Z-o.Z))
}

// Morton returns a Z-order value for the cube. Sorting by it yields a deterministic, spatially coherent
// processing order.
func (c CubePos) Morton() uint64 {
	return splitBy2(toUnsigned(c.X)) | splitBy2(toUnsigned(c.Y))<<1 | splitBy2(toUnsigned(c.Z))<<2
}

// Less reports if c sorts before o. Positions are ordered by Morton value first, with ties between
// positions that share their low 21 bits broken by the raw coordinates.
func (c CubePos) Less(o CubePos) bool {
	if a, b := c.Morton(), o.Morton(); a != b {
		return a < b
	}
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

// ColumnPos is the horizontal position of a column of cubes.
type ColumnPos struct {
	X, Z int32
}

// String ...
func (c ColumnPos) String() string {
	return fmt.Sprintf("column(%v,%v)", c.X, c.Z)
}

// Cube returns the position of the cube at cube height y in the column.
func (c ColumnPos) Cube(y int32) CubePos {
	return CubePos{c.X, y, c.Z}
}

// toUnsigned maps v to 21 unsigned bits, retaining the order of values in the range -2^20 to 2^20-1.
func toUnsigned(v int32) uint32 {
	return (uint32(v) ^ (1 << 20)) & 0x1fffff
}

// splitBy2 spreads the lowest 21 bits of x so that two zero bits sit between every pair of bits.
func splitBy2(x uint32) uint64 {
	v := uint64(x) & 0x1fffff
	v = (v | v<<32) & 0x1f00000000ffff
	v = (v | v<<16) & 0x1f0000ff0000ff
	v = (v | v<<8) & 0x100f00f00f00f00f
	v = (v | v<<4) & 0x10c30c30c30c30c3
	v = (v | v<<2) & 0x1249249249249249
	return v
}

// Clamp limits v to the range lo-hi.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
