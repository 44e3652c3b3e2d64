package game

const (
	// StandardGravity is the magnitude of gravity along -Z.
	StandardGravity = float32(9.81)
	// DefaultMaxDT is the largest step handed to the vehicle controller and the particle solver.
	DefaultMaxDT = float32(1.0 / 60.0)
	// RockDensity is the density of seeded rock particles in kg/m³.
	RockDensity = float32(2700)
)
