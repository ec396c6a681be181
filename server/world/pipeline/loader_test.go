package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tallworlds/cubicgen/server/block/cube"
)

func TestLoaderMove(t *testing.T) {
	store, stages, s := newTestScheduler(Config{Workers: 1, HorizontalLoadDistance: 1, VerticalLoadDistance: 2}, nil)
	l := NewLoader(s)

	centre := cube.CubePos{X: 5, Y: -1, Z: 2}
	if n := l.Move(centre); n != 3*5*3 {
		t.Fatalf("expected %v cubes requested, got %v", 3*5*3, n)
	}
	require.Equal(t, 3*5*3, s.Pending())
	require.Equal(t, 3*5*3, store.Len())

	require.True(t, l.InRange(cube.CubePos{X: 6, Y: 1, Z: 1}, 0))
	require.False(t, l.InRange(cube.CubePos{X: 7, Y: 1, Z: 1}, 0))
	require.True(t, l.InRange(cube.CubePos{X: 7, Y: 1, Z: 1}, 1))
	require.False(t, l.InRange(cube.CubePos{X: 5, Y: -4, Z: 2}, 0))

	// Requesting the same area again does not queue anything twice.
	l.Move(centre)
	require.Equal(t, 3*5*3, s.Pending())

	s.Step(context.Background(), 1)
	require.Len(t, stages.attempts(), 3*5*3)
}

func TestLoaderCollectGarbage(t *testing.T) {
	store, _, s := newTestScheduler(Config{HorizontalLoadDistance: 1, VerticalLoadDistance: 2}, nil)
	l := NewLoader(s)

	l.Move(cube.CubePos{})
	l.Move(cube.CubePos{X: 2})
	require.Equal(t, 5*5*3, store.Len())

	// Cubes at x = -1 lie more than one cube outside of the range around the new centre.
	if n := l.CollectGarbage(); n != 5*3 {
		t.Fatalf("expected %v cubes evicted, got %v", 5*3, n)
	}
	require.Equal(t, 4*5*3, store.Len())
	require.False(t, store.Exists(cube.CubePos{X: -1}))
	require.True(t, store.Exists(cube.CubePos{X: 0}))

	// Evicted cubes are dropped from the queue on the next tick.
	s.Step(context.Background(), 1)
	require.Equal(t, 4*5*3, s.Pending())
}

func TestLoaderSkipsOwnedCubes(t *testing.T) {
	store, _, s := newTestScheduler(Config{HorizontalLoadDistance: 1, VerticalLoadDistance: 2}, nil)
	l := NewLoader(s)
	l.Move(cube.CubePos{})
	l.Move(cube.CubePos{X: 10})

	a, ok := store.Acquire(nil, []cube.CubePos{{}})
	require.True(t, ok)
	require.Equal(t, 3*5*3-1, l.CollectGarbage())
	require.True(t, store.Exists(cube.CubePos{}))
	a.Release()

	require.Equal(t, 1, l.CollectGarbage())
	require.False(t, store.Exists(cube.CubePos{}))
}
