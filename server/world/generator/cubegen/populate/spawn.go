package populate

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/tallworlds/cubicgen/server/block/cube"
	"github.com/tallworlds/cubicgen/server/entity"
	"github.com/tallworlds/cubicgen/server/world"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/biome"
	"github.com/tallworlds/cubicgen/server/world/generator/cubegen/rand"
)

// AgentFactory constructs agents. It is implemented by *entity.Registry.
type AgentFactory interface {
	Spawn(t entity.Type, pos mgl64.Vec3, yaw float64, id uuid.UUID) (*entity.Agent, error)
}

// SpawnRules decides if an agent of a type may be placed with its feet at a position.
type SpawnRules interface {
	CanSpawn(a *world.Area, t entity.Type, feet cube.Pos) bool
}

// SpawnObserver is notified of the outcome of every agent placement.
type SpawnObserver interface {
	AgentSpawned(t entity.Type)
	ConstructionFailed(t entity.Type)
}

// GroundRules is the default SpawnRules: agents need a solid block to stand on and two voxels of open space
// that hold no liquid.
type GroundRules struct{}

// CanSpawn ...
func (GroundRules) CanSpawn(a *world.Area, _ entity.Type, feet cube.Pos) bool {
	ground, ok := a.Block(feet.Sub(cube.Pos{0, 1}))
	if !ok || !ground.Solid() {
		return false
	}
	for _, p := range []cube.Pos{feet, feet.Add(cube.Pos{0, 1})} {
		b, ok := a.Block(p)
		if !ok || b.Solid() || b.Liquid() {
			return false
		}
	}
	return true
}

// agentNamespace is the namespace of the name-based handles of spawned agents.
var agentNamespace = uuid.MustParse("6f1c3b2e-8d4a-5e7f-9b0c-2a1d3e4f5a6b")

const (
	// spawnAttempts is the amount of positions tried per group member.
	spawnAttempts = 4
	// maxRejitter bounds the amount of times a walk that left the decoration box is restarted around the
	// anchor of the group.
	maxRejitter = 16
)

// Spawn places groups of agents from a biome's spawn table while a cube is decorated.
type Spawn struct {
	Table   []biome.SpawnEntry
	Chance  float64
	Factory AgentFactory
	Rules   SpawnRules
	Log     *slog.Logger
	// Observer may be nil.
	Observer SpawnObserver
}

// Populate keeps spawning groups while the stream yields a value below Chance. Each group is of an entry
// picked by weight and anchored at a random column of the decoration box. Nothing is spawned if the weights
// of the table do not add up to a value in the range [1, math.MaxInt32]. Members are placed on the
// surface within the vertical span of the cube, walking randomly from the anchor after every attempt.
func (s Spawn) Populate(a *world.Area, pos cube.CubePos, r rand.Source) {
	if len(s.Table) == 0 || s.Factory == nil {
		return
	}
	rules := s.Rules
	if rules == nil {
		rules = GroundRules{}
	}
	total := 0
	for _, e := range s.Table {
		total += e.Weight
	}
	if total <= 0 || total > math.MaxInt32 {
		return
	}
	box := pos.Centre()
	minY := pos.Min().Y()
	n := 0

	for r.Float32() < float32(s.Chance) {
		e := pick(s.Table, total, r)
		size := e.Min + int(r.Int31n(int32(1+e.Max-e.Min)))
		ax, az := box.X()+int(r.Int31n(16)), box.Z()+int(r.Int31n(16))
		x, z := ax, az

		for i := 0; i < size; i++ {
			for attempt := 0; attempt < spawnAttempts; attempt++ {
				if y, ok := a.Surface(x, z); ok && y != cube.NoSurface {
					feet := cube.Pos{x, y + 1, z}
					if feet.Y() >= minY && feet.Y() <= minY+cube.Size && rules.CanSpawn(a, e.Agent, feet) {
						if !s.spawn(a, pos, e.Agent, feet, float64(r.Float32()*360), n) {
							break
						}
						n++
						x, z = walk(x, z, ax, az, box, r)
						break
					}
				}
				x, z = walk(x, z, ax, az, box, r)
			}
		}
	}
}

// spawn constructs an agent and hands it over to the area. It returns false if construction failed, in
// which case the member is skipped.
func (s Spawn) spawn(a *world.Area, pos cube.CubePos, t entity.Type, feet cube.Pos, yaw float64, n int) bool {
	id := uuid.NewSHA1(agentNamespace, fmt.Appendf(nil, "%d/%d/%d/%d", pos.X, pos.Y, pos.Z, n))
	ag, err := s.Factory.Spawn(t, mgl64.Vec3{float64(feet[0]) + 0.5, float64(feet[1]), float64(feet[2]) + 0.5}, yaw, id)
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("spawn agent: construction failed", "cube", pos, "type", t, "error", err)
		}
		if s.Observer != nil {
			s.Observer.ConstructionFailed(t)
		}
		return false
	}
	if a.AddAgent(ag) && s.Observer != nil {
		s.Observer.AgentSpawned(t)
	}
	return true
}

// pick selects an entry of the table by weight.
func pick(table []biome.SpawnEntry, total int, r rand.Source) biome.SpawnEntry {
	n := int(r.Int31n(int32(total)))
	for _, e := range table {
		if n -= e.Weight; n < 0 {
			return e
		}
	}
	return table[len(table)-1]
}

// walk moves x, z by a random step. If the step leaves the decoration box, a new position is drawn around
// the anchor ax, az; after maxRejitter failed draws the walk restarts at the anchor.
func walk(x, z, ax, az int, box cube.Pos, r rand.Source) (int, int) {
	x += int(r.Int31n(5)) - int(r.Int31n(5))
	z += int(r.Int31n(5)) - int(r.Int31n(5))
	for i := 0; !inColumnBox(x, z, box); i++ {
		if i == maxRejitter {
			return ax, az
		}
		x = ax + int(r.Int31n(5)) - int(r.Int31n(5))
		z = az + int(r.Int31n(5)) - int(r.Int31n(5))
	}
	return x, z
}

func inColumnBox(x, z int, box cube.Pos) bool {
	return x >= box.X() && x < box.X()+cube.Size && z >= box.Z() && z < box.Z()+cube.Size
}
