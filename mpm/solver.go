package mpm

import (
	"github.com/dozersim/dozersim/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// Solver advances the particles of a context by one frame.
type Solver interface {
	Step(ctx *Context, bodies *physics.RigidBodySet, colliders *physics.ColliderSet, dt float32)
}

// CPUSolver is a reference solver that moves particles ballistically and keeps them outside
// coupled colliders. It does not evaluate the constitutive models.
type CPUSolver struct {
	// Friction scales down the tangential velocity of particles in contact with a body.
	Friction float32
}

// NewCPUSolver returns a solver with a moderate contact friction.
func NewCPUSolver() *CPUSolver {
	return &CPUSolver{Friction: 0.5}
}

// Step runs ctx.NumSubsteps substeps covering dt.
func (s *CPUSolver) Step(ctx *Context, bodies *physics.RigidBodySet, colliders *physics.ColliderSet, dt float32) {
	if ctx == nil || dt <= 0 {
		return
	}
	substeps := max(ctx.NumSubsteps, 1)
	ctx.Params.DT = dt / float32(substeps)
	for range substeps {
		s.substep(ctx, bodies, colliders)
	}
}

func (s *CPUSolver) substep(ctx *Context, bodies *physics.RigidBodySet, colliders *physics.ColliderSet) {
	h := ctx.Params.DT
	for i := range ctx.Particles {
		p := &ctx.Particles[i]
		p.Dynamics.Velocity = p.Dynamics.Velocity.Add(ctx.Params.Gravity.Mul(h))
		p.Position = p.Position.Add(p.Dynamics.Velocity.Mul(h))

		for _, entry := range ctx.Coupling {
			c, ok := colliders.Get(entry.Collider)
			if !ok {
				continue
			}
			surface, normal, inside := c.ResolvePenetration(bodies, p.Position)
			if !inside {
				continue
			}
			p.Position = surface
			p.Dynamics.Velocity = s.collide(p.Dynamics.Velocity, normal, bodies, entry.Body, surface)
		}
	}
}

// collide removes the velocity component of v that points into the obstacle, relative to the
// body's own motion at the contact.
func (s *CPUSolver) collide(v, normal mgl32.Vec3, bodies *physics.RigidBodySet, h physics.BodyHandle, at mgl32.Vec3) mgl32.Vec3 {
	var bodyVel mgl32.Vec3
	if b, ok := bodies.Get(h); ok {
		bodyVel = b.VelocityAtPoint(at)
	}
	rel := v.Sub(bodyVel)
	vn := rel.Dot(normal)
	if vn >= 0 {
		return v
	}
	tangent := rel.Sub(normal.Mul(vn)).Mul(1 - s.Friction)
	return bodyVel.Add(tangent)
}
