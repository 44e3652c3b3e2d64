package physics

import (
	"iter"

	"github.com/go-gl/mathgl/mgl32"
)

// BodyType decides how a rigid body takes part in the simulation.
type BodyType uint8

const (
	// Dynamic bodies are moved by forces, impulses and gravity.
	Dynamic BodyType = iota
	// Fixed bodies never move.
	Fixed
	// KinematicPositionBased bodies move only by their velocity and ignore impulses.
	KinematicPositionBased
)

func (t BodyType) String() string {
	switch t {
	case Dynamic:
		return "dynamic"
	case Fixed:
		return "fixed"
	case KinematicPositionBased:
		return "kinematic"
	}
	return "unknown"
}

// BodyHandle identifies a rigid body inside a RigidBodySet. The zero handle is never issued.
type BodyHandle uint32

// RigidBody is a single body of the world. Position and Rotation describe the body frame,
// LinearVelocity is the velocity of the centre of mass.
type RigidBody struct {
	Type BodyType

	Position mgl32.Vec3
	Rotation mgl32.Quat

	LinearVelocity  mgl32.Vec3
	AngularVelocity mgl32.Vec3

	Mass float32
	// LocalInertia holds the principal moments of inertia in the body frame.
	LocalInertia      mgl32.Vec3
	LocalCenterOfMass mgl32.Vec3

	LinearDamping  float32
	AngularDamping float32
	GravityScale   float32
}

// NewRigidBody returns a body of the given type at pos with identity rotation and unit gravity scale.
func NewRigidBody(t BodyType, pos mgl32.Vec3) *RigidBody {
	return &RigidBody{
		Type:         t,
		Position:     pos,
		Rotation:     mgl32.QuatIdent(),
		GravityScale: 1,
	}
}

// WithCuboidMass sets the mass properties of a solid box of the given density and half extents.
func (b *RigidBody) WithCuboidMass(density float32, half mgl32.Vec3) *RigidBody {
	b.Mass, b.LocalInertia = CuboidMassProperties(density, half)
	return b
}

// IsDynamic returns true if the body reacts to impulses.
func (b *RigidBody) IsDynamic() bool {
	return b.Type == Dynamic
}

// InvMass returns the inverse mass of the body, or zero when it does not react to impulses.
func (b *RigidBody) InvMass() float32 {
	if !b.IsDynamic() || b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

// WorldCenterOfMass returns the centre of mass in world space.
func (b *RigidBody) WorldCenterOfMass() mgl32.Vec3 {
	return b.Position.Add(b.Rotation.Rotate(b.LocalCenterOfMass))
}

// TransformPoint converts a point from the body frame to world space.
func (b *RigidBody) TransformPoint(local mgl32.Vec3) mgl32.Vec3 {
	return b.Position.Add(b.Rotation.Rotate(local))
}

// TransformVector rotates a direction from the body frame to world space.
func (b *RigidBody) TransformVector(local mgl32.Vec3) mgl32.Vec3 {
	return b.Rotation.Rotate(local)
}

// VelocityAtPoint returns the world velocity of the body at the world point p.
func (b *RigidBody) VelocityAtPoint(p mgl32.Vec3) mgl32.Vec3 {
	return b.LinearVelocity.Add(b.AngularVelocity.Cross(p.Sub(b.WorldCenterOfMass())))
}

// WorldInvInertia returns R·I⁻¹·Rᵀ.
func (b *RigidBody) WorldInvInertia() mgl32.Mat3 {
	if !b.IsDynamic() {
		return mgl32.Mat3{}
	}
	var inv mgl32.Vec3
	for i := 0; i < 3; i++ {
		if b.LocalInertia[i] > 0 {
			inv[i] = 1 / b.LocalInertia[i]
		}
	}
	r := b.Rotation.Mat4().Mat3()
	return r.Mul3(mgl32.Diag3(inv)).Mul3(r.Transpose())
}

// ApplyImpulse changes the linear velocity of the body by j/m.
func (b *RigidBody) ApplyImpulse(j mgl32.Vec3) {
	if !b.IsDynamic() {
		return
	}
	b.LinearVelocity = b.LinearVelocity.Add(j.Mul(b.InvMass()))
}

// ApplyImpulseAtPoint applies the impulse j at the world point p, changing both linear and
// angular velocity.
func (b *RigidBody) ApplyImpulseAtPoint(j, p mgl32.Vec3) {
	if !b.IsDynamic() {
		return
	}
	b.LinearVelocity = b.LinearVelocity.Add(j.Mul(b.InvMass()))
	r := p.Sub(b.WorldCenterOfMass())
	b.AngularVelocity = b.AngularVelocity.Add(b.WorldInvInertia().Mul3x1(r.Cross(j)))
}

// ImpulseDenominator returns the effective inverse mass of the body at the world point p
// along normal.
func (b *RigidBody) ImpulseDenominator(p, normal mgl32.Vec3) float32 {
	if !b.IsDynamic() {
		return 0
	}
	r := p.Sub(b.WorldCenterOfMass())
	c := b.WorldInvInertia().Mul3x1(r.Cross(normal)).Cross(r)
	return b.InvMass() + normal.Dot(c)
}

// CuboidMassProperties returns the mass and principal inertia of a solid box.
func CuboidMassProperties(density float32, half mgl32.Vec3) (float32, mgl32.Vec3) {
	mass := density * 8 * half[0] * half[1] * half[2]
	x2, y2, z2 := half[0]*half[0], half[1]*half[1], half[2]*half[2]
	return mass, mgl32.Vec3{
		mass / 3 * (y2 + z2),
		mass / 3 * (x2 + z2),
		mass / 3 * (x2 + y2),
	}
}

// RigidBodySet owns every rigid body of a world.
type RigidBodySet struct {
	bodies []*RigidBody
	count  int
}

// NewRigidBodySet returns an empty set.
func NewRigidBodySet() *RigidBodySet {
	return &RigidBodySet{}
}

// Insert adds b to the set and returns its handle.
func (s *RigidBodySet) Insert(b *RigidBody) BodyHandle {
	s.bodies = append(s.bodies, b)
	s.count++
	return BodyHandle(len(s.bodies))
}

// Get returns the body with the given handle.
func (s *RigidBodySet) Get(h BodyHandle) (*RigidBody, bool) {
	if h == 0 || int(h) > len(s.bodies) {
		return nil, false
	}
	b := s.bodies[h-1]
	return b, b != nil
}

// Remove deletes the body with the given handle. Handles are never reused.
func (s *RigidBodySet) Remove(h BodyHandle) bool {
	if _, ok := s.Get(h); !ok {
		return false
	}
	s.bodies[h-1] = nil
	s.count--
	return true
}

// Len returns the number of bodies in the set.
func (s *RigidBodySet) Len() int {
	return s.count
}

// All iterates over the bodies of the set in handle order.
func (s *RigidBodySet) All() iter.Seq2[BodyHandle, *RigidBody] {
	return func(yield func(BodyHandle, *RigidBody) bool) {
		for i, b := range s.bodies {
			if b == nil {
				continue
			}
			if !yield(BodyHandle(i+1), b) {
				return
			}
		}
	}
}
