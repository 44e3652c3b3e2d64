package main

import (
	"github.com/dozersim/dozersim/mapdef"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	spawnSpacing = 10
	spawnHeight  = 3
)

var spawnRotation = mgl32.QuatRotate(mgl32.DegToRad(180), mgl32.Vec3{0, 0, 1})

// spawnPositions returns n positions spaced along X around the spawn point of d, or around the
// centre of the map when it has none.
func spawnPositions(d *mapdef.MapDef, n int) []mgl32.Vec3 {
	origin := mgl32.Vec3{d.Scale.X() / 2, d.Scale.Y() / 2, d.MaxHeight() * d.Scale.Z()}
	if d.SpawnPoint != nil {
		origin = *d.SpawnPoint
	}
	positions := make([]mgl32.Vec3, n)
	for i := range positions {
		offset := (float32(i) - float32(n-1)/2) * spawnSpacing
		positions[i] = origin.Add(mgl32.Vec3{offset, 0, spawnHeight})
	}
	return positions
}
