package entity

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Type is the catalogue reference of an agent type, such as "minecraft:pig".
type Type string

// Agent types spawned by the default biome table.
const (
	Pig     Type = "minecraft:pig"
	Cow     Type = "minecraft:cow"
	Sheep   Type = "minecraft:sheep"
	Chicken Type = "minecraft:chicken"
	Wolf    Type = "minecraft:wolf"
)

// SpawnOpts holds the values with which a new agent is constructed.
type SpawnOpts struct {
	// ID is the unique handle of the agent. A zero ID is replaced with a random one.
	ID uuid.UUID
	// Position is the position of the feet of the agent.
	Position mgl64.Vec3
	// Yaw is the facing of the agent in degrees.
	Yaw float64
}

// Agent is a mobile agent placed in the world. Its fields may be read concurrently; the position and
// rotation are guarded by a mutex.
type Agent struct {
	id  uuid.UUID
	t   Type
	hp  float64
	mu  sync.Mutex
	pos mgl64.Vec3
	yaw float64
}

// NewAgent creates an agent of the type passed with the maximum health passed.
func NewAgent(t Type, maxHealth float64, opts SpawnOpts) *Agent {
	id := opts.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Agent{id: id, t: t, hp: maxHealth, pos: opts.Position, yaw: opts.Yaw}
}

// H returns the unique handle of the agent.
func (a *Agent) H() uuid.UUID {
	return a.id
}

// Type returns the type of the agent.
func (a *Agent) Type() Type {
	return a.t
}

// Health returns the health the agent spawned with.
func (a *Agent) Health() float64 {
	return a.hp
}

// Position returns the current position of the agent.
func (a *Agent) Position() mgl64.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pos
}

// Rotation returns the yaw of the agent in degrees.
func (a *Agent) Rotation() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.yaw
}

// String ...
func (a *Agent) String() string {
	return fmt.Sprintf("%v(%v)", a.t, a.id)
}
