package physics

import (
	"github.com/dozersim/dozersim/game"
	"github.com/go-gl/mathgl/mgl32"
)

// World groups the bodies, colliders and query pipeline of a simulation.
type World struct {
	Gravity   mgl32.Vec3
	Bodies    *RigidBodySet
	Colliders *ColliderSet
	Queries   QueryPipeline
}

// NewWorld returns an empty world with the given gravity.
func NewWorld(gravity mgl32.Vec3) *World {
	return &World{
		Gravity:   gravity,
		Bodies:    NewRigidBodySet(),
		Colliders: NewColliderSet(),
	}
}

// CastRay casts r against every collider of the world.
func (w *World) CastRay(r Ray, maxToi float32, solid bool, filter QueryFilter) (ColliderHandle, RayIntersection, bool) {
	return w.Queries.CastRay(w.Bodies, w.Colliders, r, maxToi, solid, filter)
}

// RemoveBody removes a body and every collider attached to it.
func (w *World) RemoveBody(h BodyHandle) {
	w.Colliders.RemoveAttached(h)
	w.Bodies.Remove(h)
}

// Step advances every non-fixed body by dt. Dynamic bodies receive gravity and damping before
// their velocities are integrated. No contacts are solved.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	for _, b := range w.Bodies.All() {
		switch b.Type {
		case Fixed:
			continue
		case Dynamic:
			b.LinearVelocity = b.LinearVelocity.Add(w.Gravity.Mul(b.GravityScale * dt))
			b.LinearVelocity = b.LinearVelocity.Mul(1 / (1 + dt*b.LinearDamping))
			b.AngularVelocity = b.AngularVelocity.Mul(1 / (1 + dt*b.AngularDamping))
		}
		integrate(b, dt)
	}
}

// integrate moves the centre of mass along the linear velocity and rotates the body around it.
func integrate(b *RigidBody, dt float32) {
	com := b.WorldCenterOfMass().Add(b.LinearVelocity.Mul(dt))
	if angle := b.AngularVelocity.Len() * dt; angle > 0 {
		b.Rotation = game.QuatAxisAngle(b.AngularVelocity, angle).Mul(b.Rotation).Normalize()
	}
	b.Position = com.Sub(b.Rotation.Rotate(b.LocalCenterOfMass))
}
