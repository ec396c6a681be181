package biome

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Source assigns a biome to every horizontal voxel position. Implementations must be pure functions of the
// position and safe for concurrent use.
type Source interface {
	Biome(x, z int) ID
}

// Noise is a Source that picks biomes by climate. Temperature and rainfall noise select the closest land
// biome of the table, while continental noise places aquatic biomes.
type Noise struct {
	seed int64

	temperature, rainfall, continent, river *perlin.Perlin

	land    []Biome
	ocean   ID
	rivers  ID
	aquatic int
}

// NewNoise creates a Noise source for the world seed and table passed.
func NewNoise(seed int64, t *Table) *Noise {
	n := &Noise{
		seed:        seed,
		temperature: perlin.NewPerlin(2, 2, 3, seed),
		rainfall:    perlin.NewPerlin(2, 2, 3, seed+1),
		continent:   perlin.NewPerlin(2, 2, 4, seed+2),
		river:       perlin.NewPerlin(2, 2, 2, seed+3),
	}
	for _, b := range t.Biomes() {
		if !b.Aquatic {
			n.land = append(n.land, b)
			continue
		}
		switch n.aquatic {
		case 0:
			n.ocean = b.ID
		case 1:
			n.rivers = b.ID
		}
		n.aquatic++
	}
	if len(n.land) == 0 {
		// A table of aquatic biomes only is still usable.
		n.land = t.Biomes()
		n.aquatic = 0
	}
	return n
}

// Biome ...
func (n *Noise) Biome(x, z int) ID {
	x, z = n.jitter(x, z)
	fx, fz := float64(x), float64(z)

	if n.aquatic > 0 && n.continent.Noise2D(fx/1024, fz/1024) < -0.2 {
		return n.ocean
	}
	if n.aquatic > 1 && math.Abs(n.river.Noise2D(fx/512, fz/512)) < 0.015 {
		return n.rivers
	}
	temperature := n.temperature.Noise2D(fx/384, fz/384) + 1
	rainfall := (n.rainfall.Noise2D(fx/384, fz/384) + 1) / 2

	best, bestDist := n.land[0].ID, math.Inf(1)
	for _, b := range n.land {
		dt, dr := (b.Temperature-temperature)/2, b.Rainfall-rainfall
		if d := dt*dt + dr*dr; d < bestDist {
			best, bestDist = b.ID, d
		}
	}
	return best
}

// jitter offsets the position by up to one voxel so that biome borders are not perfectly smooth.
func (n *Noise) jitter(x, z int) (int, int) {
	hash := int64(x)*2345803 ^ int64(z)*9236449 ^ n.seed
	hash *= hash + 223
	xNoise, zNoise := hash>>20&3, hash>>22&3
	if xNoise == 3 {
		xNoise = 1
	}
	if zNoise == 3 {
		zNoise = 1
	}
	return x + int(xNoise) - 1, z + int(zNoise) - 1
}

// Striped is a debugging Source that lays biomes out in stripes along the X axis, each 1<<ScaleBits voxels
// wide, cycling through IDs.
type Striped struct {
	IDs       []ID
	ScaleBits uint
}

// Biome ...
func (s Striped) Biome(x, _ int) ID {
	if len(s.IDs) == 0 {
		return IDPlains
	}
	i := (x >> s.ScaleBits) % len(s.IDs)
	if i < 0 {
		i += len(s.IDs)
	}
	return s.IDs[i]
}

// Uniform is a Source that returns the same biome everywhere.
type Uniform ID

// Biome ...
func (u Uniform) Biome(int, int) ID {
	return ID(u)
}
