package physics

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-4
}

func approxVec(a, b mgl32.Vec3) bool {
	return approx(a[0], b[0]) && approx(a[1], b[1]) && approx(a[2], b[2])
}

func TestApplyImpulseAtCenterOfMass(t *testing.T) {
	b := NewRigidBody(Dynamic, mgl32.Vec3{1, 2, 3}).WithCuboidMass(1, mgl32.Vec3{1, 1, 1})
	b.ApplyImpulseAtPoint(mgl32.Vec3{8, 0, 0}, b.WorldCenterOfMass())

	if !approxVec(b.LinearVelocity, mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("expected linear velocity (1,0,0), got %v", b.LinearVelocity)
	}
	if b.AngularVelocity.Len() != 0 {
		t.Fatalf("expected no spin, got %v", b.AngularVelocity)
	}
}

func TestApplyImpulseOffCenterSpins(t *testing.T) {
	b := NewRigidBody(Dynamic, mgl32.Vec3{}).WithCuboidMass(1, mgl32.Vec3{1, 1, 1})
	b.ApplyImpulseAtPoint(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0})

	// r = +X, J = +Z, r×J = -Y.
	if b.AngularVelocity.Y() >= 0 {
		t.Fatalf("expected negative spin around Y, got %v", b.AngularVelocity)
	}
	if v := b.VelocityAtPoint(mgl32.Vec3{1, 0, 0}); v.Z() <= b.LinearVelocity.Z() {
		t.Fatalf("expected the pushed corner to move faster than the centre, got %v", v)
	}
}

func TestFixedBodyIgnoresImpulse(t *testing.T) {
	b := NewRigidBody(Fixed, mgl32.Vec3{}).WithCuboidMass(1, mgl32.Vec3{1, 1, 1})
	b.ApplyImpulseAtPoint(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{1, 0, 0})
	if b.LinearVelocity.Len() != 0 || b.AngularVelocity.Len() != 0 {
		t.Fatalf("fixed body moved: %v %v", b.LinearVelocity, b.AngularVelocity)
	}
	if b.ImpulseDenominator(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}) != 0 {
		t.Fatalf("expected zero impulse denominator for fixed body")
	}
}

func TestCuboidRayCast(t *testing.T) {
	c := NewCuboid(1, 1, 1)
	hit, ok := c.CastLocalRay(NewRay(mgl32.Vec3{0.2, 0.1, 5}, mgl32.Vec3{0, 0, -10}), 1, true)
	if !ok {
		t.Fatalf("expected hit")
	}
	if !approx(hit.Toi, 0.4) {
		t.Fatalf("expected toi 0.4, got %v", hit.Toi)
	}
	if !approxVec(hit.Normal, mgl32.Vec3{0, 0, 1}) {
		t.Fatalf("expected +Z normal, got %v", hit.Normal)
	}

	if _, ok := c.CastLocalRay(NewRay(mgl32.Vec3{0.2, 0.1, 5}, mgl32.Vec3{0, 0, -1}), 1, true); ok {
		t.Fatalf("expected the ray to stop short of the box")
	}
}

func TestCuboidSolidCastFromInside(t *testing.T) {
	c := NewCuboid(1, 1, 1)
	hit, ok := c.CastLocalRay(NewRay(mgl32.Vec3{0, 0, 0.5}, mgl32.Vec3{0, 0, -1}), 1, true)
	if !ok || hit.Toi != 0 || hit.Normal.Len() != 0 {
		t.Fatalf("expected toi 0 with zero normal, got %v %v", hit, ok)
	}

	hit, ok = c.CastLocalRay(NewRay(mgl32.Vec3{0, 0, 0.5}, mgl32.Vec3{0, 0, 1}), 10, false)
	if !ok || !approx(hit.Toi, 0.5) {
		t.Fatalf("expected exit at toi 0.5, got %v %v", hit, ok)
	}
	if !approxVec(hit.Normal, mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("expected inward normal on exit, got %v", hit.Normal)
	}
}

func TestQueryFilterFlagsAndExclusions(t *testing.T) {
	w := NewWorld(mgl32.Vec3{})
	ground := w.Colliders.Insert(NewCollider("ground", NewCuboid(10, 10, 1)))
	sensorCollider := NewCollider("sensor", NewCuboid(1, 1, 0.1)).WithPosition(mgl32.Vec3{0, 0, 2})
	sensorCollider.Sensor = true
	sensor := w.Colliders.Insert(sensorCollider)
	crateBody := w.Bodies.Insert(NewRigidBody(Dynamic, mgl32.Vec3{0, 0, 3}).WithCuboidMass(1, mgl32.Vec3{0.5, 0.5, 0.5}))
	crate := w.Colliders.InsertWithParent(NewCollider("crate", NewCuboid(0.5, 0.5, 0.5)), crateBody)
	rampBody := w.Bodies.Insert(NewRigidBody(KinematicPositionBased, mgl32.Vec3{5, 0, 2}))
	w.Colliders.InsertWithParent(NewCollider("ramp", NewCuboid(1, 1, 0.5)), rampBody)

	down := NewRay(mgl32.Vec3{0, 0, 4}, mgl32.Vec3{0, 0, -1})
	cases := []struct {
		name   string
		filter QueryFilter
		want   ColliderHandle
		toi    float32
	}{
		{"exclude fixed skips parentless colliders", ExcludeFixed(), crate, 0.5},
		{"exclude collider", DefaultQueryFilter().ExcludeCollider(crate), sensor, 1.9},
		{"exclude sensors and dynamic", QueryFilter{Flags: ExcludeSensorsFlag | ExcludeDynamicFlag}, ground, 3},
	}
	for _, tc := range cases {
		h, hit, ok := w.CastRay(down, 10, true, tc.filter)
		if !ok || h != tc.want {
			t.Fatalf("%s: expected collider %v, got %v %v", tc.name, tc.want, h, ok)
		}
		if !approx(hit.Toi, tc.toi) {
			t.Fatalf("%s: expected toi %v, got %v", tc.name, tc.toi, hit.Toi)
		}
	}

	noGround := QueryFilter{
		Flags:     ExcludeSensorsFlag | ExcludeDynamicFlag,
		Predicate: func(_ ColliderHandle, c *Collider) bool { return c.Name != "ground" },
	}
	if h, _, ok := w.CastRay(down, 10, true, noGround); ok {
		t.Fatalf("expected the predicate to reject the ground, hit %v", h)
	}

	overRamp := NewRay(mgl32.Vec3{5, 0, 4}, mgl32.Vec3{0, 0, -1})
	if h, _, ok := w.CastRay(overRamp, 10, true, QueryFilter{Flags: ExcludeKinematicFlag}); !ok || h != ground {
		t.Fatalf("expected the kinematic ramp to be skipped, got %v %v", h, ok)
	}
}

func TestHeightFieldRayCast(t *testing.T) {
	heights := make([]float32, 9)
	hf := NewHeightField(3, 3, heights, mgl32.Vec3{10, 10, 1})

	hit, ok := hf.CastLocalRay(NewRay(mgl32.Vec3{0.3, 0.2, 2}, mgl32.Vec3{0, 0, -4}), 1, true)
	if !ok || !approx(hit.Toi, 0.5) {
		t.Fatalf("expected toi 0.5, got %v %v", hit, ok)
	}
	if !approxVec(hit.Normal, mgl32.Vec3{0, 0, 1}) {
		t.Fatalf("expected +Z normal, got %v", hit.Normal)
	}

	hit, ok = hf.CastLocalRay(NewRay(mgl32.Vec3{1, -2, -0.1}, mgl32.Vec3{0, 0, 1}), math32.MaxFloat32, true)
	if !ok || !approx(hit.Toi, 0.1) {
		t.Fatalf("expected to hit the surface from below, got %v %v", hit, ok)
	}
	if !approxVec(hit.Normal, mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("expected normal facing the ray, got %v", hit.Normal)
	}

	if _, ok := hf.CastLocalRay(NewRay(mgl32.Vec3{20, 0, 2}, mgl32.Vec3{0, 0, -4}), 1, true); ok {
		t.Fatalf("expected no hit outside the field")
	}
}

func TestHeightFieldSlope(t *testing.T) {
	// Heights rise along X from 0 to 2.
	heights := []float32{0, 1, 2, 0, 1, 2}
	hf := NewHeightField(2, 3, heights, mgl32.Vec3{4, 2, 1})

	z, normal, ok := hf.SurfaceAt(0.5, 0)
	if !ok || !approx(z, 1.25) {
		t.Fatalf("expected height 1.25, got %v %v", z, ok)
	}
	if normal.X() >= 0 || normal.Z() <= 0 {
		t.Fatalf("expected a normal tilted towards -X, got %v", normal)
	}

	surface, _, inside := hf.ResolvePenetration(mgl32.Vec3{0.5, 0, 0.5})
	if !inside || !approx(surface.Z(), 1.25) {
		t.Fatalf("expected point to be pushed to the surface, got %v %v", surface, inside)
	}
}

func TestQueryFilterExcludesDynamicAndChassis(t *testing.T) {
	w := NewWorld(mgl32.Vec3{0, 0, -9.81})
	ground := w.Colliders.Insert(NewCollider("ground", NewCuboid(10, 10, 1)))

	chassis := w.Bodies.Insert(NewRigidBody(Dynamic, mgl32.Vec3{0, 0, 3}).WithCuboidMass(1, mgl32.Vec3{1, 1, 0.5}))
	w.Colliders.InsertWithParent(NewCollider("chassis", NewCuboid(1, 1, 0.5)), chassis)

	kinematic := w.Bodies.Insert(NewRigidBody(KinematicPositionBased, mgl32.Vec3{5, 0, 2}))
	ramp := w.Colliders.InsertWithParent(NewCollider("ramp", NewCuboid(1, 1, 0.5)), kinematic)

	ray := NewRay(mgl32.Vec3{0, 0, 4}, mgl32.Vec3{0, 0, -10})
	h, _, ok := w.CastRay(ray, 1, true, DefaultQueryFilter())
	if !ok || h == ground {
		t.Fatalf("expected the chassis to be hit first without a filter")
	}

	h, hit, ok := w.CastRay(ray, 1, true, ExcludeDynamic().ExcludeRigidBody(chassis))
	if !ok || h != ground {
		t.Fatalf("expected the ground to be hit, got %v %v", h, ok)
	}
	if !approx(hit.Toi, 0.3) {
		t.Fatalf("expected toi 0.3, got %v", hit.Toi)
	}

	h, _, ok = w.CastRay(NewRay(mgl32.Vec3{5, 0, 4}, mgl32.Vec3{0, 0, -10}), 1, true, ExcludeDynamic())
	if !ok || h != ramp {
		t.Fatalf("expected kinematic colliders to pass an exclude-dynamic filter")
	}
}

func TestColliderFollowsParent(t *testing.T) {
	w := NewWorld(mgl32.Vec3{})
	body := NewRigidBody(Dynamic, mgl32.Vec3{10, 0, 0})
	body.Rotation = mgl32.QuatRotate(math32.Pi/2, mgl32.Vec3{0, 0, 1})
	bh := w.Bodies.Insert(body)
	c := NewCollider("arm", NewCuboid(0.5, 0.5, 0.5)).WithPosition(mgl32.Vec3{2, 0, 0})
	w.Colliders.InsertWithParent(c, bh)

	pos, _ := c.Pose(w.Bodies)
	if !approxVec(pos, mgl32.Vec3{10, 2, 0}) {
		t.Fatalf("expected collider at (10,2,0), got %v", pos)
	}
	if !c.IntersectsRay(w.Bodies, NewRay(mgl32.Vec3{10, 2, 5}, mgl32.Vec3{0, 0, -1}), 10) {
		t.Fatalf("expected ray to hit the rotated child collider")
	}

	w.RemoveBody(bh)
	if w.Colliders.Len() != 0 || w.Bodies.Len() != 0 {
		t.Fatalf("expected body and collider to be removed")
	}
}

func TestStepAppliesGravity(t *testing.T) {
	w := NewWorld(mgl32.Vec3{0, 0, -10})
	b := NewRigidBody(Dynamic, mgl32.Vec3{0, 0, 5}).WithCuboidMass(1, mgl32.Vec3{1, 1, 1})
	w.Bodies.Insert(b)
	fixed := NewRigidBody(Fixed, mgl32.Vec3{})
	w.Bodies.Insert(fixed)

	w.Step(0.1)
	if !approx(b.LinearVelocity.Z(), -1) {
		t.Fatalf("expected vz -1, got %v", b.LinearVelocity.Z())
	}
	if !approx(b.Position.Z(), 4.9) {
		t.Fatalf("expected z 4.9, got %v", b.Position.Z())
	}
	if fixed.Position.Len() != 0 {
		t.Fatalf("fixed body moved")
	}
}

func TestStepRotatesAroundCenterOfMass(t *testing.T) {
	w := NewWorld(mgl32.Vec3{})
	b := NewRigidBody(Dynamic, mgl32.Vec3{}).WithCuboidMass(1, mgl32.Vec3{1, 1, 1})
	b.LocalCenterOfMass = mgl32.Vec3{0, 0, -1}
	b.AngularVelocity = mgl32.Vec3{0, 0, 1}
	w.Bodies.Insert(b)

	com := b.WorldCenterOfMass()
	w.Step(0.5)
	if !approxVec(b.WorldCenterOfMass(), com) {
		t.Fatalf("expected centre of mass to stay put, got %v", b.WorldCenterOfMass())
	}
	if approxVec(b.Rotation.Rotate(mgl32.Vec3{1, 0, 0}), mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("expected body to rotate")
	}
}
