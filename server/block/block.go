package block

import (
	"fmt"
	"strings"
)

// ID is the runtime identifier of a voxel. The zero value is Air.
type ID uint16

// All voxel types known to the generator.
const (
	Air ID = iota
	Stone
	Dirt
	Grass
	Sand
	Sandstone
	Gravel
	Clay
	Water
	Lava
	Ice
	Snow
	CoalOre
	IronOre
	GoldOre
	RedstoneOre
	DiamondOre
	LapisOre
	Cobblestone
	MossyCobblestone
	Spawner
	Chest
	OakLog
	BirchLog
	SpruceLog
	OakLeaves
	BirchLeaves
	SpruceLeaves
	ShortGrass
	Cactus

	count
)

type properties struct {
	name string
	// solid blocks support agents standing on top of them.
	solid bool
	// opaque blocks stop sky light and count towards the height index.
	opaque bool
	liquid bool
	// falls is set for blocks that drop down when unsupported.
	falls bool
	// replaceable blocks may be overwritten by growing features such as trees.
	replaceable bool
}

var props = [count]properties{
	Air:              {name: "air", replaceable: true},
	Stone:            {name: "stone", solid: true, opaque: true},
	Dirt:             {name: "dirt", solid: true, opaque: true},
	Grass:            {name: "grass", solid: true, opaque: true},
	Sand:             {name: "sand", solid: true, opaque: true, falls: true},
	Sandstone:        {name: "sandstone", solid: true, opaque: true},
	Gravel:           {name: "gravel", solid: true, opaque: true, falls: true},
	Clay:             {name: "clay", solid: true, opaque: true},
	Water:            {name: "water", liquid: true},
	Lava:             {name: "lava", liquid: true},
	Ice:              {name: "ice", solid: true, opaque: true},
	Snow:             {name: "snow", replaceable: true},
	CoalOre:          {name: "coal_ore", solid: true, opaque: true},
	IronOre:          {name: "iron_ore", solid: true, opaque: true},
	GoldOre:          {name: "gold_ore", solid: true, opaque: true},
	RedstoneOre:      {name: "redstone_ore", solid: true, opaque: true},
	DiamondOre:       {name: "diamond_ore", solid: true, opaque: true},
	LapisOre:         {name: "lapis_ore", solid: true, opaque: true},
	Cobblestone:      {name: "cobblestone", solid: true, opaque: true},
	MossyCobblestone: {name: "mossy_cobblestone", solid: true, opaque: true},
	Spawner:          {name: "mob_spawner", solid: true},
	Chest:            {name: "chest", solid: true},
	OakLog:           {name: "oak_log", solid: true, opaque: true},
	BirchLog:         {name: "birch_log", solid: true, opaque: true},
	SpruceLog:        {name: "spruce_log", solid: true, opaque: true},
	OakLeaves:        {name: "oak_leaves", solid: true, replaceable: true},
	BirchLeaves:      {name: "birch_leaves", solid: true, replaceable: true},
	SpruceLeaves:     {name: "spruce_leaves", solid: true, replaceable: true},
	ShortGrass:       {name: "short_grass", replaceable: true},
	Cactus:           {name: "cactus", solid: true},
}

var byName = func() map[string]ID {
	m := make(map[string]ID, count)
	for id, p := range props {
		m[p.name] = ID(id)
	}
	return m
}()

// ByName looks up a block by its name, such as "stone" or "minecraft:stone".
func ByName(name string) (ID, bool) {
	id, ok := byName[strings.TrimPrefix(name, "minecraft:")]
	return id, ok
}

// String returns the name of the block.
func (b ID) String() string {
	if b >= count {
		return fmt.Sprintf("block(%d)", uint16(b))
	}
	return props[b].name
}

// Solid checks if the block supports things standing on top of it.
func (b ID) Solid() bool {
	return b < count && props[b].solid
}

// Opaque checks if the block blocks sky light. Only opaque blocks are tracked by column height indices.
func (b ID) Opaque() bool {
	return b < count && props[b].opaque
}

// Liquid checks if the block is water or lava.
func (b ID) Liquid() bool {
	return b < count && props[b].liquid
}

// Falls checks if the block drops down when the block below it is not solid.
func (b ID) Falls() bool {
	return b < count && props[b].falls
}

// Replaceable checks if features such as trees may grow into the block.
func (b ID) Replaceable() bool {
	return b < count && props[b].replaceable
}

// Leaves checks if the block is a leaves block of any tree.
func (b ID) Leaves() bool {
	return b == OakLeaves || b == BirchLeaves || b == SpruceLeaves
}

// UnmarshalText decodes a block from its name, so that blocks may be referred to by name in catalogue
// files.
func (b *ID) UnmarshalText(text []byte) error {
	id, ok := ByName(string(text))
	if !ok {
		return fmt.Errorf("unknown block %q", text)
	}
	*b = id
	return nil
}

// MarshalText encodes the block as its name.
func (b ID) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
