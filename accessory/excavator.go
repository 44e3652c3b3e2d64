package accessory

import (
	"github.com/dozersim/dozersim/physics"
	"github.com/dozersim/dozersim/vehicle"
	"github.com/go-gl/mathgl/mgl32"
)

// ExcavatorDef describes the joints of an excavator arm, from the turret to the bucket jaw.
type ExcavatorDef struct {
	Swing      RotationControlDef
	Boom       RotationControlDef
	Stick      RotationControlDef
	BucketBase RotationControlDef
	BucketJaw  RotationControlDef

	// Joint pivots in chassis space.
	SwingPivot, BoomPivot, StickPivot, BucketPivot, JawPivot mgl32.Vec3
}

// DefaultExcavatorDef returns the joints matching the excavator preset.
func DefaultExcavatorDef() ExcavatorDef {
	x := mgl32.Vec3{1, 0, 0}
	swing := RotationControlDef{Name: "swing", Axis: mgl32.Vec3{0, 0, 1}, Sensitivity: 10, LerpMultiplier: 4}
	return ExcavatorDef{
		Swing:      swing,
		Boom:       Bounded("boom", x, mgl32.DegToRad(-30), mgl32.DegToRad(45), 0, 5),
		Stick:      Bounded("stick", x, mgl32.DegToRad(-60), mgl32.DegToRad(20), 0, 5),
		BucketBase: Bounded("bucket", x, mgl32.DegToRad(-90), mgl32.DegToRad(30), 0, 5),
		BucketJaw:  Bounded("bucket jaw", x, 0, mgl32.DegToRad(60), 0, 5),

		BoomPivot:   mgl32.Vec3{0, 2, 0.9},
		StickPivot:  mgl32.Vec3{0, 4.4, 0.9},
		BucketPivot: mgl32.Vec3{0, 4.6, 0.8},
		JawPivot:    mgl32.Vec3{0, 5.15, 0.9},
	}
}

// ExcavatorControls are the real time knobs of an excavator.
type ExcavatorControls struct {
	Swing      ControlKnob
	Boom       ControlKnob
	Stick      ControlKnob
	BucketBase ControlKnob
	BucketJaw  ControlKnob

	boom, bucket, jaw Linkage
	linked            bool
}

// NewExcavatorControls returns knobs resting at the default angles of def.
func NewExcavatorControls(def ExcavatorDef) *ExcavatorControls {
	return &ExcavatorControls{
		Swing:      def.Swing.DefaultKnob(),
		Boom:       def.Boom.DefaultKnob(),
		Stick:      def.Stick.DefaultKnob(),
		BucketBase: def.BucketBase.DefaultKnob(),
		BucketJaw:  def.BucketJaw.DefaultKnob(),
	}
}

// IntegrateInputs moves the desired value of each knob while its keys are held: T/G swing, Y/H
// boom, U/J stick, I/K bucket and O/L jaw.
func (e *ExcavatorControls) IntegrateInputs(input vehicle.InputState, elapsed float32, def ExcavatorDef) {
	step := inputStep * elapsed
	e.Swing.add(def.Swing, input.Axis(vehicle.KeyT, vehicle.KeyG)*step*def.Swing.Sensitivity)
	e.Boom.add(def.Boom, input.Axis(vehicle.KeyY, vehicle.KeyH)*step*def.Boom.Sensitivity)
	e.Stick.add(def.Stick, input.Axis(vehicle.KeyU, vehicle.KeyJ)*step*def.Stick.Sensitivity)
	e.BucketBase.add(def.BucketBase, input.Axis(vehicle.KeyI, vehicle.KeyK)*step*def.BucketBase.Sensitivity)
	e.BucketJaw.add(def.BucketJaw, input.Axis(vehicle.KeyO, vehicle.KeyL)*step*def.BucketJaw.Sensitivity)
}

// ExcavatorPose holds the joint rotations of an excavator arm.
type ExcavatorPose struct {
	Swing, Boom, Stick, BucketBase, BucketJaw mgl32.Quat
}

// Propagate smooths every knob toward its desired value and returns the resulting rotations.
func (e *ExcavatorControls) Propagate(dt float32, def ExcavatorDef) ExcavatorPose {
	return ExcavatorPose{
		Swing:      e.Swing.SmoothMove(def.Swing, dt),
		Boom:       e.Boom.SmoothMove(def.Boom, dt),
		Stick:      e.Stick.SmoothMove(def.Stick, dt),
		BucketBase: e.BucketBase.SmoothMove(def.BucketBase, dt),
		BucketJaw:  e.BucketJaw.SmoothMove(def.BucketJaw, dt),
	}
}

// Link binds the controls to the "boom", "bucket" and "bucket jaw" colliders of the chassis
// body. It returns false if the chassis has no arm.
func (e *ExcavatorControls) Link(colliders *physics.ColliderSet, body physics.BodyHandle) bool {
	boom, ok := FindLinkage(colliders, body, "boom")
	if !ok {
		return false
	}
	bucket, ok := FindLinkage(colliders, body, "bucket")
	if !ok {
		return false
	}
	jaw, ok := FindLinkage(colliders, body, "bucket jaw")
	if !ok {
		return false
	}
	e.boom, e.bucket, e.jaw, e.linked = boom, bucket, jaw, true
	return true
}

// Apply moves the linked arm colliders to the given pose.
func (e *ExcavatorControls) Apply(colliders *physics.ColliderSet, pose ExcavatorPose, def ExcavatorDef) {
	if !e.linked {
		return
	}
	swing := Pivot{Point: def.SwingPivot, Rotation: pose.Swing}
	boom := Pivot{Point: def.BoomPivot, Rotation: pose.Boom}
	stick := Pivot{Point: def.StickPivot, Rotation: pose.Stick}
	bucket := Pivot{Point: def.BucketPivot, Rotation: pose.BucketBase}
	e.boom.Pose(colliders, boom, swing)
	e.bucket.Pose(colliders, bucket, stick, boom, swing)
	e.jaw.Pose(colliders, Pivot{Point: def.JawPivot, Rotation: pose.BucketJaw}, bucket, stick, boom, swing)
}
