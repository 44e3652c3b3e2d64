package mpm

import (
	"github.com/dozersim/dozersim/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// CouplingMode decides whether particles push back on a coupled body.
type CouplingMode uint8

const (
	// OneWay bodies move particles but never receive forces from them.
	OneWay CouplingMode = iota
	// TwoWay bodies also receive the reaction of the particles.
	TwoWay
)

func (m CouplingMode) String() string {
	if m == TwoWay {
		return "two-way"
	}
	return "one-way"
}

// BodyCouplingEntry declares a collider the solver treats as a boundary obstacle.
type BodyCouplingEntry struct {
	Body     physics.BodyHandle
	Collider physics.ColliderHandle
	Mode     CouplingMode
}

// CouplingEntries pairs every collider tagged for coupling with its parent body. Colliders
// without a parent body cannot move and are skipped.
func CouplingEntries(colliders *physics.ColliderSet) []BodyCouplingEntry {
	var entries []BodyCouplingEntry
	for _, h := range colliders.Coupled() {
		c, _ := colliders.Get(h)
		body, ok := c.Parent()
		if !ok {
			continue
		}
		entries = append(entries, BodyCouplingEntry{Body: body, Collider: h, Mode: OneWay})
	}
	return entries
}

// SimulationParams are the global parameters of the solver.
type SimulationParams struct {
	Gravity mgl32.Vec3
	// DT is the length of a single substep.
	DT float32
}

// Context is everything the solver needs to run: its parameters, the particles and the bodies
// they interact with.
type Context struct {
	Params      SimulationParams
	NumSubsteps int
	Particles   []Particle
	// Removed is the number of particles dropped at seeding because they were buried.
	Removed     int
	Coupling    []BodyCouplingEntry
	CellWidth   float32
	Capacity    int
}
