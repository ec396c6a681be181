package entity

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

func TestRegistrySpawn(t *testing.T) {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("pig"))
	a, err := DefaultRegistry.Spawn(Pig, mgl64.Vec3{1.5, 64, -2.5}, 90, id)
	if err != nil {
		t.Fatalf("expected pig to spawn, got %v", err)
	}
	if a.Type() != Pig {
		t.Fatalf("expected pig, got %v", a.Type())
	}
	if a.H() != id {
		t.Fatalf("expected handle %v, got %v", id, a.H())
	}
	if a.Position() != (mgl64.Vec3{1.5, 64, -2.5}) || a.Rotation() != 90 {
		t.Fatalf("unexpected placement %v, %v", a.Position(), a.Rotation())
	}
}

func TestRegistrySpawnErrors(t *testing.T) {
	if _, err := DefaultRegistry.Spawn("minecraft:dragon", mgl64.Vec3{}, 0, uuid.Nil); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}

	errMissing := errors.New("missing capability")
	r := NewRegistry(map[Type]Factory{
		Cow: func(SpawnOpts) (*Agent, error) { return nil, errMissing },
	})
	if _, err := r.Spawn(Cow, mgl64.Vec3{}, 0, uuid.Nil); !errors.Is(err, errMissing) {
		t.Fatalf("expected factory error to be wrapped, got %v", err)
	}
}

func TestNewAgentAssignsHandle(t *testing.T) {
	a := NewAgent(Sheep, 8, SpawnOpts{})
	if a.H() == uuid.Nil {
		t.Fatalf("expected a handle to be assigned")
	}
}
