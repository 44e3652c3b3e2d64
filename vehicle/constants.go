package vehicle

const (
	// WheelCount is the number of wheels of every vehicle.
	WheelCount = 4

	// MaxSteeringAngle is the steering angle, in radians, applied while Left or Right is held.
	MaxSteeringAngle = float32(0.7)

	// DefaultWheelRadius, DefaultEngineForce and DefaultWheelBrake are the values of EmptyParameters.
	DefaultWheelRadius = float32(0.5)
	DefaultEngineForce = float32(10)
	DefaultWheelBrake  = float32(0.25)

	defaultRollInfluence = float32(0.1)
	sideFrictionDamping  = float32(0.2)
	forwardSkidFactor    = float32(0.5)
	sideSkidFactor       = float32(1)
	rotationDamping      = float32(0.99)
	// minContactDot is the largest normal·direction product still treated as a valid contact.
	minContactDot = float32(-0.1)
)
