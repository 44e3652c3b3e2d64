package mpm

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ParticleDynamics is the kinematic state of a particle.
type ParticleDynamics struct {
	Velocity   mgl32.Vec3
	InitVolume float32
	InitRadius float32
	Mass       float32
}

// DynamicsWithDensity returns the state of a particle at rest, sized as a cube of side 2*radius.
func DynamicsWithDensity(radius, density float32) ParticleDynamics {
	side := radius * 2
	volume := side * side * side
	return ParticleDynamics{
		InitVolume: volume,
		InitRadius: radius,
		Mass:       volume * density,
	}
}

// ElasticCoefficients are the Lamé parameters of a linear elastic material.
type ElasticCoefficients struct {
	Lambda float32
	Mu     float32
}

// ElasticFromYoungModulus converts a Young's modulus and Poisson ratio into Lamé parameters.
func ElasticFromYoungModulus(youngModulus, poissonRatio float32) ElasticCoefficients {
	return ElasticCoefficients{
		Lambda: youngModulus * poissonRatio / ((1 + poissonRatio) * (1 - 2*poissonRatio)),
		Mu:     youngModulus / (2 * (1 + poissonRatio)),
	}
}

// DruckerPrager is a plasticity model for granular material. H0 to H3 describe the friction
// angle hardening curve, angles are in radians.
type DruckerPrager struct {
	H0, H1, H2, H3 float32
	Lambda, Mu     float32
}

// NewDruckerPrager returns the model for sand-like material of the given stiffness.
func NewDruckerPrager(youngModulus, poissonRatio float32) DruckerPrager {
	e := ElasticFromYoungModulus(youngModulus, poissonRatio)
	return DruckerPrager{
		H0:     mgl32.DegToRad(35),
		H1:     mgl32.DegToRad(9),
		H2:     0.2,
		H3:     mgl32.DegToRad(10),
		Lambda: e.Lambda,
		Mu:     e.Mu,
	}
}

// FrictionAngle returns the friction angle reached after the given amount of plastic
// deformation.
func (d DruckerPrager) FrictionAngle(q float32) float32 {
	return d.H0 + (d.H1*q-d.H3)*math32.Exp(-d.H2*q)
}

// Particle is a single material point handed to the solver.
type Particle struct {
	Position   mgl32.Vec3
	Dynamics   ParticleDynamics
	Model      ElasticCoefficients
	Plasticity *DruckerPrager
}
