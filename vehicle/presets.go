package vehicle

import (
	"github.com/dozersim/dozersim/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// Kind names a type of vehicle.
type Kind string

const (
	KindBulldozer Kind = "bulldozer"
	KindExcavator Kind = "excavator"
	KindTruck     Kind = "truck"
)

// ChassisPart is an extra collider attached to a chassis, like a bulldozer blade or a truck bed wall.
type ChassisPart struct {
	Name        string
	Offset      mgl32.Vec3
	Rotation    mgl32.Quat
	HalfExtents mgl32.Vec3
}

// Preset bundles the controller parameters of a vehicle with the shape and mass of its chassis.
type Preset struct {
	Kind   Kind
	Params Parameters

	ChassisHalfExtents mgl32.Vec3
	ChassisDensity     float32
	// CenterOfMass is lowered on tracked vehicles to keep them on the ground.
	CenterOfMass mgl32.Vec3
	Parts        []ChassisPart
}

// Bulldozer returns a tracked bulldozer with a front blade.
func Bulldozer() Preset {
	return Preset{
		Kind: KindBulldozer,
		Params: EmptyParameters().
			WithWheelPositionsForHalfSize(mgl32.Vec3{0.5, 1.0, 0.4}, 1).
			WithWheelTuning(SandboxWheelTuning()).
			WithCrawler(true),
		ChassisHalfExtents: mgl32.Vec3{1, 2, 0.4},
		ChassisDensity:     0.8,
		CenterOfMass:       mgl32.Vec3{0, 0, -1},
		Parts: []ChassisPart{
			{Name: "blade", Offset: mgl32.Vec3{0, 2.5, -0.5}, Rotation: mgl32.QuatIdent(), HalfExtents: mgl32.Vec3{1, 0.4, 0.8}},
		},
	}
}

// Excavator returns a tracked excavator. Its arm is driven by accessory controls.
func Excavator() Preset {
	return Preset{
		Kind: KindExcavator,
		Params: EmptyParameters().
			WithWheelPositionsForHalfSize(mgl32.Vec3{0.5, 0.5, 0.2}, 1).
			WithWheelTuning(SandboxWheelTuning()).
			WithCrawler(true),
		ChassisHalfExtents: mgl32.Vec3{1, 2, 0.4},
		ChassisDensity:     0.8,
		CenterOfMass:       mgl32.Vec3{0, 0, -1},
		Parts: []ChassisPart{
			{Name: "boom", Offset: mgl32.Vec3{0, 3.2, 0.9}, Rotation: mgl32.QuatIdent(), HalfExtents: mgl32.Vec3{0.25, 1.2, 0.25}},
			{Name: "bucket", Offset: mgl32.Vec3{0, 4.8, 0.5}, Rotation: mgl32.QuatIdent(), HalfExtents: mgl32.Vec3{0.7, 0.35, 0.4}},
			{Name: "bucket jaw", Offset: mgl32.Vec3{0, 5.2, 0.5}, Rotation: mgl32.QuatIdent(), HalfExtents: mgl32.Vec3{0.7, 0.05, 0.4}},
		},
	}
}

// Truck returns a wheeled dump truck. It is heavier, so its engine and brakes are stronger.
func Truck() Preset {
	p := EmptyParameters().
		WithWheelTuning(SandboxWheelTuning()).
		WithEngineForce(120).
		WithWheelBrake(1, 1)
	p.WheelPositions = [WheelCount]mgl32.Vec3{
		{-1.3, 1.6, 0.3},
		{1.3, 1.6, 0.3},
		{-1.3, -1.2, 0.3},
		{1.3, -1.2, 0.3},
	}
	p.WheelRadius = 0.7
	return Preset{
		Kind:               KindTruck,
		Params:             p,
		ChassisHalfExtents: mgl32.Vec3{1, 1, 0.4},
		ChassisDensity:     1,
		Parts: []ChassisPart{
			{Name: "bed right", Offset: mgl32.Vec3{1.4, -0.7, 1.5}, Rotation: mgl32.QuatIdent(), HalfExtents: mgl32.Vec3{0.2, 2.1, 1}},
			{Name: "bed left", Offset: mgl32.Vec3{-1.4, -0.7, 1.5}, Rotation: mgl32.QuatIdent(), HalfExtents: mgl32.Vec3{0.2, 2.1, 0.8}},
			{Name: "bed front", Offset: mgl32.Vec3{0, 2, 1.5}, Rotation: mgl32.QuatIdent(), HalfExtents: mgl32.Vec3{1.5, 0.8, 1}},
			{Name: "bed bottom", Offset: mgl32.Vec3{0, -1, 1.3}, Rotation: mgl32.QuatRotate(mgl32.DegToRad(-10), mgl32.Vec3{1, 0, 0}), HalfExtents: mgl32.Vec3{1.5, 2, 0.1}},
		},
	}
}

// PresetFor returns the preset of the given kind.
func PresetFor(k Kind) (Preset, bool) {
	switch k {
	case KindBulldozer:
		return Bulldozer(), true
	case KindExcavator:
		return Excavator(), true
	case KindTruck:
		return Truck(), true
	}
	return Preset{}, false
}

// Spawn inserts the chassis body and its colliders into the world. Chassis colliders are tagged
// for particle coupling so the vehicle pushes material around.
func (p Preset) Spawn(w *physics.World, pos mgl32.Vec3, rot mgl32.Quat) physics.BodyHandle {
	body := physics.NewRigidBody(physics.Dynamic, pos).WithCuboidMass(p.ChassisDensity, p.ChassisHalfExtents)
	body.Rotation = rot
	body.LocalCenterOfMass = p.CenterOfMass
	body.AngularDamping = 0.5
	h := w.Bodies.Insert(body)

	half := p.ChassisHalfExtents
	w.Colliders.InsertWithParent(physics.NewCollider(string(p.Kind)+" chassis", physics.NewCuboid(half[0], half[1], half[2])).WithCoupling(), h)
	for _, part := range p.Parts {
		c := physics.NewCollider(part.Name, physics.NewCuboid(part.HalfExtents[0], part.HalfExtents[1], part.HalfExtents[2])).
			WithPosition(part.Offset).
			WithRotation(part.Rotation).
			WithCoupling()
		w.Colliders.InsertWithParent(c, h)
	}
	return h
}
