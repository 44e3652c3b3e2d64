package vehicle

import (
	"github.com/dozersim/dozersim/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// Wheel is the geometry, tuning and per-tick state of a single wheel.
type Wheel struct {
	// LocalPosition is where the suspension is mounted, in chassis space.
	LocalPosition mgl32.Vec3
	// DirectionCS is the direction of the suspension ray in chassis space.
	DirectionCS mgl32.Vec3
	// AxleCS is the wheel axle in chassis space.
	AxleCS mgl32.Vec3

	Radius               float32
	SuspensionRestLength float32
	Tuning               WheelTuning
	RollInfluence        float32

	EngineForce   float32
	SteeringAngle float32
	Brake         float32

	// Rotation is the accumulated spin of the wheel around its axle.
	Rotation      float32
	deltaRotation float32

	// InContact is true if the suspension ray hit the ground during the last update.
	InContact bool
	// SuspensionLength is the current length of the suspension.
	SuspensionLength float32

	contactPoint  mgl32.Vec3
	contactNormal mgl32.Vec3
	hardPoint     mgl32.Vec3
	directionWS   mgl32.Vec3
	axleWS        mgl32.Vec3
	ground        physics.ColliderHandle

	suspensionForce            float32
	suspensionRelativeVelocity float32
	clippedInvContactDot       float32
	sideImpulse                float32
	forwardImpulse             float32
	skidInfo                   float32
}

func newWheel(pos mgl32.Vec3, restLength, radius float32, tuning WheelTuning) Wheel {
	return Wheel{
		LocalPosition:        pos,
		DirectionCS:          mgl32.Vec3{0, 0, -1},
		AxleCS:               mgl32.Vec3{1, 0, 0},
		Radius:               radius,
		SuspensionRestLength: restLength,
		SuspensionLength:     restLength,
		Tuning:               tuning,
		RollInfluence:        defaultRollInfluence,
		skidInfo:             1,
	}
}

// ContactPoint returns the world point where the suspension ray touched the ground, if it did.
func (w Wheel) ContactPoint() (mgl32.Vec3, bool) {
	return w.contactPoint, w.InContact
}

// ContactNormal returns the ground normal under the wheel. Without contact it points against
// the suspension direction.
func (w Wheel) ContactNormal() mgl32.Vec3 {
	return w.contactNormal
}

// SuspensionForce returns the suspension force computed during the last update.
func (w Wheel) SuspensionForce() float32 {
	return w.suspensionForce
}

// Impulses returns the forward and side friction impulses applied during the last update.
func (w Wheel) Impulses() (forward, side float32) {
	return w.forwardImpulse, w.sideImpulse
}

// Center returns the world position of the wheel centre.
func (w Wheel) Center() mgl32.Vec3 {
	return w.hardPoint.Add(w.directionWS.Mul(w.SuspensionLength))
}
