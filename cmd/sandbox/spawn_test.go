package main

import (
	"testing"

	"github.com/dozersim/dozersim/mapdef"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSpawnPositionsAroundCentre(t *testing.T) {
	d := mapdef.Flat(60, 40)
	pos := spawnPositions(d, 3)
	assert.Equal(t, []mgl32.Vec3{{20, 20, 3}, {30, 20, 3}, {40, 20, 3}}, pos)
}

func TestSpawnPositionsUseSpawnPoint(t *testing.T) {
	d := mapdef.Flat(60, 40)
	spawn := mgl32.Vec3{5, 6, 1}
	d.SpawnPoint = &spawn
	pos := spawnPositions(d, 2)
	assert.Equal(t, []mgl32.Vec3{{0, 6, 4}, {10, 6, 4}}, pos)
}
