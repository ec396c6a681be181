package world

import (
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
	"github.com/tallworlds/cubicgen/server/block"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/entity"
)

// decorationBox creates the cubes from (0, 0, 0) to (2, 2, 2), so that every cube of the octant from (0, 0, 0)
// to (1, 1, 1) may be decorated. All of these decorate the cube at (1, 1, 1).
func decorationBox() (*Store, []cube.CubePos) {
	s := NewStore(StoreConfig{})
	var sources []cube.CubePos
	for x := int32(0); x <= 2; x++ {
		for y := int32(0); y <= 2; y++ {
			for z := int32(0); z <= 2; z++ {
				pos := cube.CubePos{X: x, Y: y, Z: z}
				s.Create(pos)
				if x <= 1 && y <= 1 && z <= 1 {
					sources = append(sources, pos)
				}
			}
		}
	}
	return s, sources
}

func decorateFrom(t *testing.T, s *Store, source cube.CubePos, f func(a *Area)) {
	t.Helper()
	a, ok := s.Acquire(append(cube.PositiveOctant.Of(source), source), nil)
	require.True(t, ok)
	defer a.Release()
	a.Decorate(source)
	if f != nil {
		f(a)
	}
	a.Commit()
}

func settle(t *testing.T, s *Store, pos cube.CubePos) bool {
	t.Helper()
	a, ok := s.Acquire([]cube.CubePos{pos}, nil)
	require.True(t, ok)
	defer a.Release()
	return a.Settle(pos)
}

func TestDecorateOrderIndependent(t *testing.T) {
	target := cube.CubePos{X: 1, Y: 1, Z: 1}
	p := cube.Pos{20, 20, 20}
	edits := map[cube.CubePos]block.ID{
		{}:           block.Stone,
		{X: 1}:       block.Dirt,
		{Y: 1, Z: 1}: block.Cobblestone,
	}

	run := func(order []cube.CubePos) *Cube {
		s, _ := decorationBox()
		for _, source := range order {
			decorateFrom(t, s, source, func(a *Area) {
				if b, ok := edits[source]; ok {
					require.True(t, a.SetBlock(p, b, nil))
				}
			})
		}
		require.True(t, settle(t, s, target))
		c, _ := s.Cube(target)
		return c
	}
	_, sources := decorationBox()
	forward := run(sources)
	backward := slices.Clone(sources)
	slices.Reverse(backward)
	reversed := run(backward)

	require.Equal(t, forward.Digest(), reversed.Digest())
	require.Contains(t, []block.ID{block.Stone, block.Dirt, block.Cobblestone}, forward.Block(4, 4, 4))
}

func TestDecorateDeferredUntilSettled(t *testing.T) {
	s, sources := decorationBox()
	target := cube.CubePos{X: 1, Y: 1, Z: 1}
	p := cube.Pos{17, 17, 17}

	decorateFrom(t, s, sources[0], func(a *Area) {
		require.True(t, a.Decorating())
		require.True(t, a.SetBlock(p, block.Stone, nil))
		b, _ := a.Block(p)
		require.Equal(t, block.Stone, b)
		b, _ = a.BaseBlock(p)
		require.Equal(t, block.Air, b)

		require.True(t, a.AddAgent(entity.NewAgent(entity.Pig, 10, entity.SpawnOpts{Position: mgl64.Vec3{17.5, 18, 17.5}})))
	})
	c, _ := s.Cube(target)
	require.Equal(t, block.Air, c.Block(1, 1, 1))
	require.Empty(t, c.Agents())

	// Not every cube that may decorate the target has been populated.
	require.False(t, settle(t, s, target))
	require.False(t, c.Settled())

	for _, source := range sources[1:] {
		decorateFrom(t, s, source, nil)
	}
	require.True(t, settle(t, s, target))
	require.True(t, c.Settled())
	require.Equal(t, block.Stone, c.Block(1, 1, 1))
	require.Len(t, c.Agents(), 1)

	a, ok := s.Acquire([]cube.CubePos{target}, nil)
	require.True(t, ok)
	b, _ := a.BaseBlock(p)
	require.Equal(t, block.Air, b)
	b, _ = a.Block(p)
	require.Equal(t, block.Stone, b)
	// Settling twice changes nothing.
	require.True(t, a.Settle(target))
	a.Release()
	require.Len(t, c.Agents(), 1)
}

func TestDecorateSurface(t *testing.T) {
	s, sources := decorationBox()
	decorateFrom(t, s, sources[0], func(a *Area) {
		y, ok := a.Surface(3, 3)
		require.True(t, ok)
		require.Equal(t, cube.NoSurface, y)

		a.SetBlock(cube.Pos{3, 20, 3}, block.Stone, nil)
		y, ok = a.Surface(3, 3)
		require.True(t, ok)
		require.Equal(t, 20, y)
	})
}

func TestEvictDropsDecorations(t *testing.T) {
	s, sources := decorationBox()
	target := cube.CubePos{X: 1, Y: 1, Z: 1}
	for _, source := range sources {
		decorateFrom(t, s, source, nil)
	}
	require.True(t, s.Evict(sources[0]))
	require.False(t, settle(t, s, target))

	// A cube generated again receives the decorations kept for it.
	s.Create(sources[0])
	decorateFrom(t, s, sources[0], func(a *Area) {
		a.SetBlock(cube.Pos{18, 18, 18}, block.Dirt, nil)
	})
	require.True(t, s.Evict(target))
	c, _ := s.Create(target)
	require.False(t, settle(t, s, target), "the cube decorates itself as well")
	decorateFrom(t, s, target, nil)
	require.True(t, settle(t, s, target))
	require.Equal(t, block.Dirt, c.Block(2, 2, 2))
}
