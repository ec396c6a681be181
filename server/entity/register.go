package entity

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ErrUnknownType is returned when an agent of a type without a registered factory is spawned.
var ErrUnknownType = errors.New("entity: unknown agent type")

// Factory constructs an agent from the spawn options passed. A factory returns an error if the agent cannot
// be constructed, for example because a capability it depends on is missing.
type Factory func(opts SpawnOpts) (*Agent, error)

// Registry maps agent types to the factories that construct them. A Registry is immutable after creation
// and safe for concurrent use.
type Registry struct {
	factories map[Type]Factory
}

// NewRegistry creates a Registry holding the factories passed.
func NewRegistry(factories map[Type]Factory) *Registry {
	return &Registry{factories: maps.Clone(factories)}
}

// DefaultRegistry is a Registry that holds all agents spawned by the built-in biome table.
var DefaultRegistry = NewRegistry(map[Type]Factory{
	Pig:     creature(Pig, 10),
	Cow:     creature(Cow, 10),
	Sheep:   creature(Sheep, 8),
	Chicken: creature(Chicken, 4),
	Wolf:    creature(Wolf, 8),
})

func creature(t Type, maxHealth float64) Factory {
	return func(opts SpawnOpts) (*Agent, error) {
		return NewAgent(t, maxHealth, opts), nil
	}
}

// Lookup returns the factory registered for the type passed.
func (r *Registry) Lookup(t Type) (Factory, bool) {
	f, ok := r.factories[t]
	return f, ok
}

// Types returns all registered types, sorted.
func (r *Registry) Types() []Type {
	return slices.Sorted(maps.Keys(r.factories))
}

// Spawn constructs an agent of type t at the position and with the yaw passed. The handle of the agent is
// derived from id, so that repeated generation of the same world produces agents with the same handles.
func (r *Registry) Spawn(t Type, pos mgl64.Vec3, yaw float64, id uuid.UUID) (*Agent, error) {
	f, ok := r.factories[t]
	if !ok {
		return nil, fmt.Errorf("spawn %v: %w", t, ErrUnknownType)
	}
	a, err := f(SpawnOpts{ID: id, Position: pos, Yaw: yaw})
	if err != nil {
		return nil, fmt.Errorf("spawn %v: %w", t, err)
	}
	return a, nil
}
