package mpm

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/dozersim/dozersim/game"
	"github.com/dozersim/dozersim/physics"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type staticSource struct {
	rocks  []mgl32.Vec3
	loaded bool
	calls  int
}

func (s *staticSource) Rocks() ([]mgl32.Vec3, bool) {
	s.calls++
	return s.rocks, s.loaded
}

// groundWorld creates a fixed slab whose top face is at z=0 plus coupled boxes beside it.
func groundWorld(coupled int) *physics.World {
	w := physics.NewWorld(mgl32.Vec3{0, 0, -game.StandardGravity})
	ground := w.Bodies.Insert(physics.NewRigidBody(physics.Fixed, mgl32.Vec3{0, 0, -1}))
	w.Colliders.InsertWithParent(physics.NewCollider("ground", physics.NewCuboid(10, 10, 1)).WithCoupling(), ground)
	for i := 1; i < coupled; i++ {
		body := w.Bodies.Insert(physics.NewRigidBody(physics.Fixed, mgl32.Vec3{50 + float32(i)*5, 50, 0}))
		w.Colliders.InsertWithParent(physics.NewCollider("post", physics.NewCuboid(1, 1, 1)).WithCoupling(), body)
	}
	return w
}

func relEq(a, b float32) bool {
	return math32.Abs(a-b) <= math32.Abs(b)*1e-5
}

func TestElasticFromYoungModulus(t *testing.T) {
	e := ElasticFromYoungModulus(1e7, 0.2)
	if !relEq(e.Lambda, 1e7*0.2/(1.2*0.6)) {
		t.Fatalf("unexpected lambda %v", e.Lambda)
	}
	if !relEq(e.Mu, 1e7/2.4) {
		t.Fatalf("unexpected mu %v", e.Mu)
	}
}

func TestPlasticityOverridesHardening(t *testing.T) {
	conf := DefaultSeederConfig()
	p := conf.Plasticity()
	if !relEq(p.H0, mgl32.DegToRad(75)) || !relEq(p.H1, mgl32.DegToRad(90)) || p.H2 != 0.6 || !relEq(p.H3, mgl32.DegToRad(30)) {
		t.Fatalf("unexpected hardening %+v", p)
	}
	e := ElasticFromYoungModulus(conf.YoungModulus, conf.PoissonRatio)
	if p.Lambda != e.Lambda || p.Mu != e.Mu {
		t.Fatalf("plasticity lame parameters %v/%v differ from elastic %v/%v", p.Lambda, p.Mu, e.Lambda, e.Mu)
	}
}

func TestSeedRocksSplitsIntoOctants(t *testing.T) {
	w := physics.NewWorld(mgl32.Vec3{})
	particles, removed := SeedRocks(w.Bodies, w.Colliders, []mgl32.Vec3{{0, 0, 5}}, DefaultSeederConfig())
	if removed != 0 || len(particles) != 8 {
		t.Fatalf("expected 8 particles and none removed, got %d/%d", len(particles), removed)
	}
	for _, p := range particles {
		if !game.Float32ApproxEq(p.Dynamics.InitRadius, 0.25) {
			t.Fatalf("expected radius 0.25, got %v", p.Dynamics.InitRadius)
		}
		if !relEq(p.Dynamics.Mass, 0.125*game.RockDensity) {
			t.Fatalf("expected mass %v, got %v", 0.125*game.RockDensity, p.Dynamics.Mass)
		}
		off := p.Position.Sub(mgl32.Vec3{0, 0, 5})
		for axis := 0; axis < 3; axis++ {
			if !game.Float32ApproxEq(math32.Abs(off[axis]), 0.25) {
				t.Fatalf("particle %v is not an octant centre", p.Position)
			}
		}
		if p.Plasticity == nil {
			t.Fatal("particle has no plasticity model")
		}
	}
}

func TestSeedRocksDropsBuriedRocks(t *testing.T) {
	w := groundWorld(1)
	rocks := []mgl32.Vec3{{0, 0, -0.1}, {1, 1, 0.5}}
	particles, removed := SeedRocks(w.Bodies, w.Colliders, rocks, DefaultSeederConfig())
	if removed != 8 {
		t.Fatalf("expected the buried rock to be removed, removed %d", removed)
	}
	if len(particles) != 8 {
		t.Fatalf("expected 8 simulated particles, got %d", len(particles))
	}
	for _, p := range particles {
		if p.Position.Z() < 0 {
			t.Fatalf("particle %v belongs to the buried rock", p.Position)
		}
	}
}

func TestCouplingEntriesSkipParentless(t *testing.T) {
	w := groundWorld(2)
	w.Colliders.Insert(physics.NewCollider("loose", physics.NewCuboid(1, 1, 1)).WithCoupling())
	w.Colliders.Insert(physics.NewCollider("plain", physics.NewCuboid(1, 1, 1)))
	entries := CouplingEntries(w.Colliders)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Mode != OneWay {
			t.Fatalf("expected one-way coupling, got %v", e.Mode)
		}
		c, _ := w.Colliders.Get(e.Collider)
		if parent, _ := c.Parent(); parent != e.Body {
			t.Fatalf("entry body %v does not match collider parent %v", e.Body, parent)
		}
	}
}

func TestSeederWaitsForPreconditions(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := NewSeeder(DefaultSeederConfig(), log)
	src := &staticSource{rocks: []mgl32.Vec3{{0, 0, 2}}}

	empty := physics.NewWorld(mgl32.Vec3{})
	if _, ok := s.Poll(empty.Bodies, empty.Colliders, []RockSource{src}); ok {
		t.Fatal("seeded without colliders")
	}
	few := groundWorld(4)
	if _, ok := s.Poll(few.Bodies, few.Colliders, []RockSource{src}); ok {
		t.Fatal("seeded with too few coupled colliders")
	}
	w := groundWorld(5)
	if _, ok := s.Poll(w.Bodies, w.Colliders, nil); ok {
		t.Fatal("seeded without a map")
	}
	if _, ok := s.Poll(w.Bodies, w.Colliders, []RockSource{src, src}); ok {
		t.Fatal("seeded with two maps")
	}
	if _, ok := s.Poll(w.Bodies, w.Colliders, []RockSource{src}); ok {
		t.Fatal("seeded before the map was loaded")
	}
	if s.State() != StateUninitialized {
		t.Fatalf("expected uninitialized, got %v", s.State())
	}

	src.loaded = true
	if _, ok := s.Poll(physics.NewRigidBodySet(), w.Colliders, []RockSource{src}); ok {
		t.Fatal("seeded before any body was registered")
	}
	if s.State() != StateUninitialized {
		t.Fatalf("expected uninitialized without bodies, got %v", s.State())
	}
	ctx, ok := s.Poll(w.Bodies, w.Colliders, []RockSource{src})
	if !ok || ctx == nil {
		t.Fatal("expected seeding once every precondition holds")
	}
	if s.State() != StateReady {
		t.Fatalf("expected ready, got %v", s.State())
	}
	if len(ctx.Coupling) != 5 || len(ctx.Particles) != 8 {
		t.Fatalf("unexpected context: %d coupled, %d particles", len(ctx.Coupling), len(ctx.Particles))
	}
	if ctx.NumSubsteps != 2 || !game.Float32ApproxEq(ctx.Params.DT, 1.0/120) {
		t.Fatalf("unexpected timing: %d substeps, dt %v", ctx.NumSubsteps, ctx.Params.DT)
	}
	if !game.Vec3ApproxEq(ctx.Params.Gravity, mgl32.Vec3{0, 0, -9.81}) {
		t.Fatalf("unexpected gravity %v", ctx.Params.Gravity)
	}
}

func TestSeederRunsOnce(t *testing.T) {
	log, hook := test.NewNullLogger()
	s := NewSeeder(DefaultSeederConfig(), log)
	src := &staticSource{rocks: []mgl32.Vec3{{0, 0, 2}, {0, 0, -0.5}}, loaded: true}
	w := groundWorld(5)

	first, ok := s.Poll(w.Bodies, w.Colliders, []RockSource{src})
	if !ok {
		t.Fatal("expected seeding")
	}
	w.Colliders.InsertWithParent(physics.NewCollider("late", physics.NewCuboid(1, 1, 1)).WithCoupling(), w.Bodies.Insert(physics.NewRigidBody(physics.Fixed, mgl32.Vec3{})))
	second, ok := s.Poll(w.Bodies, w.Colliders, []RockSource{src})
	if !ok || second != first {
		t.Fatal("second poll must return the original context")
	}
	if src.calls != 1 {
		t.Fatalf("expected the rock source to be read once, read %d times", src.calls)
	}
	if len(second.Coupling) != 5 || second.Removed != 8 {
		t.Fatalf("context must not change after seeding, got %d coupled and %d removed", len(second.Coupling), second.Removed)
	}

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.InfoLevel && e.Message == "Num removed particles: 8/16 (simulated: 8)" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the removal summary to be logged")
	}
}

func TestSeederCapacity(t *testing.T) {
	log, _ := test.NewNullLogger()
	conf := DefaultSeederConfig()
	conf.Capacity = 12
	s := NewSeeder(conf, log)
	src := &staticSource{rocks: []mgl32.Vec3{{0, 0, 2}, {3, 3, 2}}, loaded: true}
	w := groundWorld(5)
	ctx, ok := s.Poll(w.Bodies, w.Colliders, []RockSource{src})
	if !ok || len(ctx.Particles) != 12 {
		t.Fatalf("expected particles to be capped at 12, got %d", len(ctx.Particles))
	}
}

func TestCPUSolverRestsOnGround(t *testing.T) {
	w := groundWorld(1)
	ctx := &Context{
		Params:      SimulationParams{Gravity: mgl32.Vec3{0, 0, -game.StandardGravity}},
		NumSubsteps: 2,
		Particles:   []Particle{{Position: mgl32.Vec3{0, 0, 1}}},
		Coupling:    CouplingEntries(w.Colliders),
	}
	solver := NewCPUSolver()
	for range 120 {
		solver.Step(ctx, w.Bodies, w.Colliders, game.DefaultMaxDT)
	}
	p := ctx.Particles[0]
	if math32.Abs(p.Position.Z()) > 1e-5 {
		t.Fatalf("expected the particle to rest at z=0, got %v", p.Position)
	}
	if math32.Abs(p.Dynamics.Velocity.Z()) > 1e-5 {
		t.Fatalf("expected no vertical velocity at rest, got %v", p.Dynamics.Velocity)
	}
}

func TestCPUSolverFreeFall(t *testing.T) {
	w := physics.NewWorld(mgl32.Vec3{})
	ctx := &Context{
		Params:      SimulationParams{Gravity: mgl32.Vec3{0, 0, -10}},
		NumSubsteps: 4,
		Particles:   []Particle{{Position: mgl32.Vec3{0, 0, 100}}},
	}
	NewCPUSolver().Step(ctx, w.Bodies, w.Colliders, 1)
	if !game.Float32ApproxEq(ctx.Particles[0].Dynamics.Velocity.Z(), -10) {
		t.Fatalf("expected vz=-10 after one second, got %v", ctx.Particles[0].Dynamics.Velocity)
	}
	if !game.Float32ApproxEq(ctx.Params.DT, 0.25) {
		t.Fatalf("expected substep dt 0.25, got %v", ctx.Params.DT)
	}
}
