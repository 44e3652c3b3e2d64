package vehicle

// WheelTuning holds the suspension and friction constants shared by every wheel of a vehicle.
type WheelTuning struct {
	// SuspensionStiffness is the spring constant of the suspension.
	SuspensionStiffness float32
	// SuspensionCompression is the damping applied while the suspension compresses.
	SuspensionCompression float32
	// SuspensionDamping is the damping applied while the suspension relaxes.
	SuspensionDamping float32
	// MaxSuspensionTravel bounds how far the suspension may move from its rest length.
	MaxSuspensionTravel float32
	// SideFrictionStiffness scales the lateral friction impulse.
	SideFrictionStiffness float32
	// FrictionSlip bounds the friction impulse relative to the suspension force.
	FrictionSlip float32
	// MaxSuspensionForce bounds the force the suspension may exert.
	MaxSuspensionForce float32
}

// DefaultWheelTuning returns the tuning of a light passenger car.
func DefaultWheelTuning() WheelTuning {
	return WheelTuning{
		SuspensionStiffness:   5.88,
		SuspensionCompression: 0.83,
		SuspensionDamping:     0.88,
		MaxSuspensionTravel:   5,
		SideFrictionStiffness: 1,
		FrictionSlip:          10.5,
		MaxSuspensionForce:    6000,
	}
}

// SandboxWheelTuning returns the stiffer tuning used by the heavy equipment of the sandbox.
func SandboxWheelTuning() WheelTuning {
	t := DefaultWheelTuning()
	t.SuspensionStiffness = 100
	t.SuspensionDamping = 10
	return t
}
