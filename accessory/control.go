package accessory

import (
	"github.com/dozersim/dozersim/game"
	"github.com/go-gl/mathgl/mgl32"
)

// inputStep is the change of a control value per second of held key, before sensitivity.
const inputStep = float32(0.1)

// RotationControlDef describes a joint driven by a control value. Bounded joints map a value in
// [0, 1] onto their angle range, unbounded joints take the value as an angle in radians.
type RotationControlDef struct {
	Name string
	Axis mgl32.Vec3
	// MinMaxAngle is nil for unbounded joints.
	MinMaxAngle    *[2]float32
	DefaultAngle   float32
	Sensitivity    float32
	LerpMultiplier float32
}

// Bounded returns a definition limited to [lo, hi] radians.
func Bounded(name string, axis mgl32.Vec3, lo, hi, def, sensitivity float32) RotationControlDef {
	return RotationControlDef{
		Name:           name,
		Axis:           axis,
		MinMaxAngle:    &[2]float32{lo, hi},
		DefaultAngle:   def,
		Sensitivity:    sensitivity,
		LerpMultiplier: 4,
	}
}

// ClampAngle limits angle to the range of the joint.
func (d RotationControlDef) ClampAngle(angle float32) float32 {
	if d.MinMaxAngle == nil {
		return angle
	}
	return game.Clamp32(angle, d.MinMaxAngle[0], d.MinMaxAngle[1])
}

// DefaultRatio returns the control value matching DefaultAngle.
func (d RotationControlDef) DefaultRatio() float32 {
	if d.MinMaxAngle == nil {
		return d.DefaultAngle
	}
	lo, hi := d.ClampAngle(d.MinMaxAngle[0]), d.ClampAngle(d.MinMaxAngle[1])
	if hi == lo {
		return 0
	}
	return (d.DefaultAngle - lo) / (hi - lo)
}

// Angle returns the joint angle for a control value.
func (d RotationControlDef) Angle(value float32) float32 {
	if d.MinMaxAngle == nil {
		return value
	}
	return game.Lerp32(d.MinMaxAngle[0], d.MinMaxAngle[1], value)
}

// RemapInRange returns the joint rotation for a control value.
func (d RotationControlDef) RemapInRange(value float32) mgl32.Quat {
	return game.QuatAxisAngle(d.Axis, d.Angle(value))
}

// DefaultKnob returns a knob resting at the default angle.
func (d RotationControlDef) DefaultKnob() ControlKnob {
	r := d.DefaultRatio()
	return ControlKnob{Current: r, Desired: r}
}

// ControlKnob is the real time value of a joint. Current follows Desired smoothly.
type ControlKnob struct {
	Current float32
	Desired float32
}

// SmoothMove moves Current toward Desired and returns the resulting joint rotation.
func (k *ControlKnob) SmoothMove(def RotationControlDef, dt float32) mgl32.Quat {
	k.Current = game.Lerp32(k.Current, k.Desired, min(dt*def.LerpMultiplier, 1))
	return def.RemapInRange(k.Current)
}

// add changes Desired by delta, clamping bounded joints to [0, 1].
func (k *ControlKnob) add(def RotationControlDef, delta float32) {
	k.Desired += delta
	if def.MinMaxAngle != nil {
		k.Desired = game.Clamp32(k.Desired, 0, 1)
	}
}
