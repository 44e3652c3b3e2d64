package mpm

import (
	"github.com/chewxy/math32"
	"github.com/dozersim/dozersim/game"
	"github.com/dozersim/dozersim/physics"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// State is the stage of the particle seeding.
type State uint8

const (
	StateUninitialized State = iota
	StateSeeding
	StateReady
)

func (s State) String() string {
	switch s {
	case StateSeeding:
		return "seeding"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// RockSource supplies the centres of the rocks to turn into particles.
type RockSource interface {
	// Rocks returns the rock centres, or false while the source is still loading.
	Rocks() ([]mgl32.Vec3, bool)
}

// SeederConfig holds the tunables used when building the particle context.
type SeederConfig struct {
	// MinCoupledColliders is the number of coupled colliders that must exist before seeding.
	MinCoupledColliders int
	NumSubsteps         int
	GravityFactor       float32
	CellWidth           float32
	Capacity            int

	RockSize     float32
	Density      float32
	YoungModulus float32
	PoissonRatio float32
}

// DefaultSeederConfig returns the configuration used by the sandbox.
func DefaultSeederConfig() SeederConfig {
	return SeederConfig{
		MinCoupledColliders: 5,
		NumSubsteps:         2,
		GravityFactor:       1,
		CellWidth:           0.5,
		Capacity:            60000,

		RockSize:     1,
		Density:      game.RockDensity,
		YoungModulus: 1e7,
		PoissonRatio: 0.2,
	}
}

// Plasticity returns the granular model every seeded particle carries.
func (c SeederConfig) Plasticity() DruckerPrager {
	model := NewDruckerPrager(c.YoungModulus, c.PoissonRatio)
	model.H0 = mgl32.DegToRad(75)
	model.H1 = mgl32.DegToRad(90)
	model.H2 = 0.6
	model.H3 = mgl32.DegToRad(30)
	return model
}

// Seeder builds the particle context once the terrain and the vehicles exist. The context is
// built at most once per seeder.
type Seeder struct {
	conf  SeederConfig
	log   *logrus.Logger
	state State

	initialized *atomic.Bool
	ctx         *Context
}

// NewSeeder creates a seeder in the uninitialized state.
func NewSeeder(conf SeederConfig, log *logrus.Logger) *Seeder {
	return &Seeder{
		conf:        conf,
		log:         log,
		initialized: atomic.NewBool(false),
	}
}

// State returns the current stage of the seeder.
func (s *Seeder) State() State {
	return s.state
}

// Context returns the built context, or nil if seeding has not happened yet.
func (s *Seeder) Context() *Context {
	return s.ctx
}

// Poll seeds the particles if every precondition holds: the world has bodies and colliders, at least
// MinCoupledColliders of them are coupled, exactly one rock source exists and it is loaded.
// The context is returned once seeding is done.
func (s *Seeder) Poll(bodies *physics.RigidBodySet, colliders *physics.ColliderSet, sources []RockSource) (*Context, bool) {
	if s.initialized.Load() {
		return s.ctx, s.state == StateReady
	}
	if bodies.Len() == 0 || colliders.Len() == 0 {
		return nil, false
	}
	coupling := CouplingEntries(colliders)
	if len(coupling) < s.conf.MinCoupledColliders {
		return nil, false
	}
	if len(sources) != 1 {
		return nil, false
	}
	rocks, loaded := sources[0].Rocks()
	if !loaded {
		return nil, false
	}
	if !s.initialized.CompareAndSwap(false, true) {
		return s.ctx, s.state == StateReady
	}
	s.state = StateSeeding

	particles, removed := SeedRocks(bodies, colliders, rocks, s.conf)
	total := len(particles) + removed
	s.log.Infof("Num removed particles: %d/%d (simulated: %d)", removed, total, len(particles))
	s.log.Debugf("coupled colliders: %d", len(coupling))
	if s.conf.Capacity > 0 && len(particles) > s.conf.Capacity {
		s.log.Warnf("particle capacity exceeded, dropping %d particles", len(particles)-s.conf.Capacity)
		particles = particles[:s.conf.Capacity]
	}

	substeps := max(s.conf.NumSubsteps, 1)
	s.ctx = &Context{
		Params: SimulationParams{
			Gravity: mgl32.Vec3{0, 0, -game.StandardGravity}.Mul(s.conf.GravityFactor),
			DT:      game.DefaultMaxDT / float32(substeps),
		},
		NumSubsteps: substeps,
		Particles:   particles,
		Removed:     removed,
		Coupling:    coupling,
		CellWidth:   s.conf.CellWidth,
		Capacity:    s.conf.Capacity,
	}
	s.state = StateReady
	return s.ctx, true
}

// SeedRocks turns every rock into eight particles, one per octant of its box. Rocks whose
// centre lies below any collider are dropped, the returned count is the number of particles
// that were not created for that reason.
func SeedRocks(bodies *physics.RigidBodySet, colliders *physics.ColliderSet, rocks []mgl32.Vec3, conf SeederConfig) ([]Particle, int) {
	plasticity := conf.Plasticity()
	model := ElasticFromYoungModulus(conf.YoungModulus, conf.PoissonRatio)
	half := mgl32.Vec3{conf.RockSize, conf.RockSize, conf.RockSize}.Mul(0.5)

	particles := make([]Particle, 0, len(rocks)*8)
	removed := 0
	for _, centre := range rocks {
		if underCollider(bodies, colliders, centre) {
			removed += 8
			continue
		}
		for _, octant := range game.BoxOctants(game.BoxFromHalfExtents(centre, half)) {
			radius := math32.Cbrt(game.BoxVolume(octant)) / 2
			particles = append(particles, Particle{
				Position:   game.BoxCenter(octant),
				Dynamics:   DynamicsWithDensity(radius, conf.Density),
				Model:      model,
				Plasticity: &plasticity,
			})
		}
	}
	return particles, removed
}

// underCollider casts upward from p and reports whether any collider is hit.
func underCollider(bodies *physics.RigidBodySet, colliders *physics.ColliderSet, p mgl32.Vec3) bool {
	ray := physics.NewRay(p, mgl32.Vec3{0, 0, 1})
	for _, c := range colliders.All() {
		if c.IntersectsRay(bodies, ray, math32.MaxFloat32) {
			return true
		}
	}
	return false
}
