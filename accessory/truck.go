package accessory

import (
	"github.com/dozersim/dozersim/physics"
	"github.com/dozersim/dozersim/vehicle"
	"github.com/go-gl/mathgl/mgl32"
)

// bedParts are the chassis colliders forming the dump bed.
var bedParts = []string{"bed right", "bed left", "bed front", "bed bottom"}

// TruckDef describes the dump bed joint of a truck.
type TruckDef struct {
	MainDump RotationControlDef
	// HingePivot is the chassis space point the bed tilts around.
	HingePivot mgl32.Vec3
}

// DefaultTruckDef returns the dump joint matching the truck preset.
func DefaultTruckDef() TruckDef {
	return TruckDef{
		MainDump:   Bounded("main dump", mgl32.Vec3{1, 0, 0}, 0, mgl32.DegToRad(50), 0, 5),
		HingePivot: mgl32.Vec3{0, -3, 1.2},
	}
}

// TruckControls hold the dump ratio of a truck, 0 lowered and 1 fully raised.
type TruckControls struct {
	MainDump float32

	bed []Linkage
}

// NewTruckControls returns controls resting at the default dump angle.
func NewTruckControls(def TruckDef) *TruckControls {
	return &TruckControls{MainDump: def.MainDump.DefaultRatio()}
}

// IntegrateInputs raises the bed while T is held and lowers it while G is held.
func (t *TruckControls) IntegrateInputs(input vehicle.InputState, elapsed float32, def TruckDef) {
	delta := input.Axis(vehicle.KeyT, vehicle.KeyG) * inputStep * elapsed * def.MainDump.Sensitivity
	t.MainDump = min(max(t.MainDump+delta, 0), 1)
}

// DumpFriction is the friction of the bed floor. Material slides off as the bed rises.
func (t *TruckControls) DumpFriction() float32 {
	return 1 - t.MainDump
}

// Rotation returns the rotation of the bed.
func (t *TruckControls) Rotation(def TruckDef) mgl32.Quat {
	return def.MainDump.RemapInRange(t.MainDump)
}

// Link binds the controls to the bed colliders of the chassis body.
func (t *TruckControls) Link(colliders *physics.ColliderSet, body physics.BodyHandle) bool {
	t.bed = t.bed[:0]
	for _, name := range bedParts {
		if l, ok := FindLinkage(colliders, body, name); ok {
			t.bed = append(t.bed, l)
		}
	}
	return len(t.bed) > 0
}

// Apply tilts the linked bed colliders and updates the bed floor friction.
func (t *TruckControls) Apply(colliders *physics.ColliderSet, def TruckDef) {
	hinge := Pivot{Point: def.HingePivot, Rotation: t.Rotation(def)}
	for _, l := range t.bed {
		l.Pose(colliders, hinge)
		if c, ok := colliders.Get(l.Collider); ok && c.Name == "bed bottom" {
			c.Friction = t.DumpFriction()
		}
	}
}
