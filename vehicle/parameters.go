package vehicle

import "github.com/go-gl/mathgl/mgl32"

// Parameters describe how a Controller is built and how it reacts to input. They are a plain
// value: every With* method returns a modified copy.
type Parameters struct {
	// WheelPositions are the suspension mount points in chassis space. Indices 0 and 1 are the
	// front axle, 2 and 3 the rear axle. Even indices are on the left side.
	WheelPositions       [WheelCount]mgl32.Vec3
	WheelTuning          WheelTuning
	SuspensionRestLength float32
	WheelRadius          float32
	// Crawler vehicles do not steer. They turn by driving one track harder than the other.
	Crawler bool
	// WheelBrake holds the brake impulse of the front and rear axle.
	WheelBrake [2]float32
	// EngineForce is the force applied to a powered wheel while forward or back is held.
	EngineForce float32
}

// EmptyParameters returns the neutral baseline every vehicle is built from.
func EmptyParameters() Parameters {
	return Parameters{
		WheelTuning: DefaultWheelTuning(),
		WheelRadius: DefaultWheelRadius,
		WheelBrake:  [2]float32{DefaultWheelBrake, DefaultWheelBrake},
		EngineForce: DefaultEngineForce,
	}
}

// DefaultParameters returns the parameters of a small car.
func DefaultParameters() Parameters {
	return EmptyParameters().WithWheelPositionsForHalfSize(mgl32.Vec3{0.3, 0.15, 0.3}, 0)
}

// WithWheelPositionsForHalfSize lays out the wheels around a chassis of the given half extents:
// X is the half width, Y the half length and Z the half height. The wheels stick out by half a
// width on each side and are lowered by contactOffset below the chassis bottom. The rest length
// of the suspension is the half height, and the wheel radius half of it.
func (p Parameters) WithWheelPositionsForHalfSize(half mgl32.Vec3, contactOffset float32) Parameters {
	width, length, height := half[0], half[1], half[2]
	z := -height - contactOffset
	p.WheelPositions = [WheelCount]mgl32.Vec3{
		{-width * 1.5, length, z},
		{width * 1.5, length, z},
		{-width * 1.5, -length, z},
		{width * 1.5, -length, z},
	}
	p.SuspensionRestLength = height
	p.WheelRadius = height / 2
	return p
}

// WithWheelTuning ...
func (p Parameters) WithWheelTuning(t WheelTuning) Parameters {
	p.WheelTuning = t
	return p
}

// WithCrawler ...
func (p Parameters) WithCrawler(crawler bool) Parameters {
	p.Crawler = crawler
	return p
}

// WithEngineForce ...
func (p Parameters) WithEngineForce(force float32) Parameters {
	p.EngineForce = force
	return p
}

// WithWheelBrake ...
func (p Parameters) WithWheelBrake(front, rear float32) Parameters {
	p.WheelBrake = [2]float32{front, rear}
	return p
}
