package cube

// Neighbourhood is a set of cube offsets relative to a cube.
type Neighbourhood []CubePos

// Of returns the positions of the neighbourhood around the cube passed.
func (n Neighbourhood) Of(c CubePos) []CubePos {
	out := make([]CubePos, len(n))
	for i, off := range n {
		out[i] = c.Add(off)
	}
	return out
}

var (
	// Neighbours holds the 26 cubes at a Chebyshev distance of 1.
	Neighbours = neighbours(-1, 1, false)
	// PositiveOctant holds the 7 cubes with offsets of 0 or 1 on every axis, excluding the cube itself.
	// Decoration anchored at the centre of a cube spills into exactly these cubes.
	PositiveOctant = neighbours(0, 1, false)
	// NegativeOctant holds the 7 cubes with offsets of -1 or 0 on every axis, excluding the cube itself.
	// These are the cubes whose decoration can spill into a cube.
	NegativeOctant = neighbours(-1, 0, false)
	// Above holds the cube directly above.
	Above = Neighbourhood{{0, 1, 0}}
)

func neighbours(lo, hi int32, self bool) Neighbourhood {
	var n Neighbourhood
	for x := lo; x <= hi; x++ {
		for y := lo; y <= hi; y++ {
			for z := lo; z <= hi; z++ {
				if x == 0 && y == 0 && z == 0 && !self {
					continue
				}
				n = append(n, CubePos{x, y, z})
			}
		}
	}
	return n
}
