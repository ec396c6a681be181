package world

import "fmt"

// Stage is a step of cube generation. The stage stored on a cube is the last stage the cube completed, and
// only ever moves forward by one step at a time.
type Stage uint32

const (
	// StageEmpty is the stage of a cube that was requested but holds no content yet.
	StageEmpty Stage = iota
	// StageTerrain is reached once the base terrain of the cube is generated.
	StageTerrain
	// StageBiome is reached once the ground cover of the biomes in the cube is applied.
	StageBiome
	// StagePopulation is reached once the cube is decorated with features and agents.
	StagePopulation
	// StageLighting is reached once the sky light of the cube is computed.
	StageLighting
	// StageFinal is reached once the cube is complete and live.
	StageFinal
)

var stageNames = [...]string{"empty", "terrain", "biome", "population", "lighting", "final"}

// String ...
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", uint32(s))
}

// Next returns the stage following s. Next returns StageFinal for StageFinal.
func (s Stage) Next() Stage {
	if s >= StageFinal {
		return StageFinal
	}
	return s + 1
}

// Stages returns all stages in order.
func Stages() []Stage {
	return []Stage{StageEmpty, StageTerrain, StageBiome, StagePopulation, StageLighting, StageFinal}
}
