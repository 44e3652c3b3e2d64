package vehicle

import (
	"github.com/chewxy/math32"
	"github.com/dozersim/dozersim/assert"
	"github.com/dozersim/dozersim/game"
	"github.com/dozersim/dozersim/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// Controller drives a chassis body with four ray-cast wheels.
type Controller struct {
	chassis physics.BodyHandle
	wheels  [WheelCount]Wheel

	// IndexUpAxis and IndexForwardAxis select the chassis axes used as up and forward.
	IndexUpAxis      int
	IndexForwardAxis int

	currentVehicleSpeed float32
}

// NewController builds the four wheels described by p around the chassis body.
func NewController(chassis physics.BodyHandle, p Parameters) *Controller {
	assert.IsTrue(chassis != 0, "vehicle controller needs a chassis body")

	c := &Controller{chassis: chassis, IndexUpAxis: 1, IndexForwardAxis: 0}
	if !p.Crawler {
		c.IndexUpAxis, c.IndexForwardAxis = 2, 1
	}
	for i, pos := range p.WheelPositions {
		c.wheels[i] = newWheel(pos, p.SuspensionRestLength, p.WheelRadius, p.WheelTuning)
		c.wheels[i].Brake = p.WheelBrake[i/2]
	}
	return c
}

// Chassis returns the handle of the body driven by the controller.
func (c *Controller) Chassis() physics.BodyHandle {
	return c.chassis
}

// Wheels returns the wheels of the vehicle. The slice always holds WheelCount entries and
// aliases the controller's state.
func (c *Controller) Wheels() []Wheel {
	return c.wheels[:]
}

// CurrentVehicleSpeed returns the chassis speed measured during the last update. It is negative
// while the vehicle moves backwards.
func (c *Controller) CurrentVehicleSpeed() float32 {
	return c.currentVehicleSpeed
}

// IntegrateActions applies the held keys to the wheels. Standard vehicles power and steer the
// front axle only.
func (c *Controller) IntegrateActions(input InputState, p Parameters) {
	if p.Crawler {
		c.integrateActionsCrawler(input, p)
		return
	}
	cmd := TranslateStandard(input, p)
	for i := 0; i < 2; i++ {
		c.wheels[i].EngineForce = cmd.EngineForce
		c.wheels[i].SteeringAngle = cmd.SteeringAngle
	}
}

func (c *Controller) integrateActionsCrawler(input InputState, p Parameters) {
	left, right := TranslateCrawler(input, p).TrackForces()
	c.wheels[0].EngineForce = left
	c.wheels[1].EngineForce = right
	c.wheels[2].EngineForce = left
	c.wheels[3].EngineForce = right
}

// Stop releases the throttle and centres the steering of every wheel.
func (c *Controller) Stop() {
	for i := range c.wheels {
		c.wheels[i].EngineForce = 0
		c.wheels[i].SteeringAngle = 0
	}
}

// UpdateVehicle advances the vehicle by dt. Suspension rays ignore dynamic bodies and the
// chassis itself. dt is used as is: callers cap it.
func (c *Controller) UpdateVehicle(dt float32, bodies *physics.RigidBodySet, colliders *physics.ColliderSet, queries physics.QueryPipeline) {
	c.UpdateVehicleWithFilter(dt, bodies, colliders, queries, physics.ExcludeDynamic().ExcludeRigidBody(c.chassis))
}

// UpdateVehicleWithFilter advances the vehicle by dt, casting suspension rays with filter.
func (c *Controller) UpdateVehicleWithFilter(dt float32, bodies *physics.RigidBodySet, colliders *physics.ColliderSet, queries physics.QueryPipeline, filter physics.QueryFilter) {
	chassis, ok := bodies.Get(c.chassis)
	assert.IsTrue(ok, "chassis body %d is missing", c.chassis)

	for i := range c.wheels {
		c.updateWheelTransform(chassis, i)
	}

	c.currentVehicleSpeed = chassis.LinearVelocity.Len()
	forward := chassis.TransformVector(game.Axis(c.IndexForwardAxis))
	if forward.Dot(chassis.LinearVelocity) < 0 {
		c.currentVehicleSpeed = -c.currentVehicleSpeed
	}

	for i := range c.wheels {
		c.rayCast(chassis, bodies, colliders, queries, filter, i)
	}

	c.updateSuspension(chassis.Mass)
	for i := range c.wheels {
		w := &c.wheels[i]
		force := math32.Min(w.suspensionForce, w.Tuning.MaxSuspensionForce)
		w.suspensionForce = force
		if force == 0 {
			continue
		}
		chassis.ApplyImpulseAtPoint(w.contactNormal.Mul(force*dt), w.contactPoint)
	}

	c.updateFriction(chassis, bodies, colliders, dt)
	c.updateWheelRotation(chassis, dt)
}

func (c *Controller) updateWheelTransform(chassis *physics.RigidBody, i int) {
	w := &c.wheels[i]
	w.InContact = false
	w.hardPoint = chassis.TransformPoint(w.LocalPosition)
	w.directionWS = chassis.TransformVector(w.DirectionCS)
	steering := game.QuatAxisAngle(w.directionWS.Mul(-1), w.SteeringAngle)
	w.axleWS = steering.Rotate(chassis.TransformVector(w.AxleCS))
}

// rayCast casts the suspension ray of wheel i and records the contact state.
func (c *Controller) rayCast(chassis *physics.RigidBody, bodies *physics.RigidBodySet, colliders *physics.ColliderSet, queries physics.QueryPipeline, filter physics.QueryFilter, i int) {
	w := &c.wheels[i]
	rayLength := w.SuspensionRestLength + w.Radius
	ray := physics.NewRay(w.hardPoint, w.directionWS.Mul(rayLength))
	w.contactPoint = ray.PointAt(1)
	w.ground = 0

	handle, hit, ok := queries.CastRay(bodies, colliders, ray, 1, true, filter)
	if !ok {
		w.SuspensionLength = w.SuspensionRestLength
		w.suspensionRelativeVelocity = 0
		w.contactNormal = w.directionWS.Mul(-1)
		w.clippedInvContactDot = 1
		return
	}

	if hit.Toi == 0 {
		// The mount point is inside the ground. Recover a usable normal by casting back up.
		hit.Normal = mgl32.Vec3{}
		if col, ok := colliders.Get(handle); ok {
			up := physics.NewRay(ray.PointAt(1), ray.Dir.Mul(-1))
			if back, ok := col.CastRay(bodies, up, 1, false); ok {
				hit.Normal = back.Normal.Mul(-1)
			}
		}
		if hit.Normal.LenSqr() == 0 {
			hit.Normal = w.directionWS.Mul(-1)
		}
	}

	w.contactNormal = hit.Normal
	w.InContact = true
	w.ground = handle

	length := hit.Toi*rayLength - w.Radius
	w.SuspensionLength = game.Clamp32(length,
		w.SuspensionRestLength-w.Tuning.MaxSuspensionTravel,
		w.SuspensionRestLength+w.Tuning.MaxSuspensionTravel,
	)
	w.contactPoint = ray.PointAt(hit.Toi)

	denominator := w.contactNormal.Dot(w.directionWS)
	projVel := w.contactNormal.Dot(chassis.VelocityAtPoint(w.contactPoint))
	if denominator >= minContactDot {
		w.suspensionRelativeVelocity = 0
		w.clippedInvContactDot = 1 / -minContactDot
	} else {
		inv := -1 / denominator
		w.suspensionRelativeVelocity = projVel * inv
		w.clippedInvContactDot = inv
	}
}

// updateSuspension computes the spring-damper force of every wheel touching the ground.
func (c *Controller) updateSuspension(chassisMass float32) {
	for i := range c.wheels {
		w := &c.wheels[i]
		if !w.InContact {
			w.suspensionForce = 0
			continue
		}
		force := w.Tuning.SuspensionStiffness * (w.SuspensionRestLength - w.SuspensionLength) * w.clippedInvContactDot
		damping := w.Tuning.SuspensionDamping
		if w.suspensionRelativeVelocity < 0 {
			damping = w.Tuning.SuspensionCompression
		}
		force -= damping * w.suspensionRelativeVelocity
		w.suspensionForce = math32.Max(force*chassisMass, 0)
	}
}

// groundBody returns the dynamic body under wheel w, if any.
func (c *Controller) groundBody(w *Wheel, bodies *physics.RigidBodySet, colliders *physics.ColliderSet) *physics.RigidBody {
	col, ok := colliders.Get(w.ground)
	if !ok {
		return nil
	}
	parent, ok := col.Parent()
	if !ok {
		return nil
	}
	b, ok := bodies.Get(parent)
	if !ok || !b.IsDynamic() {
		return nil
	}
	return b
}

func (c *Controller) updateFriction(chassis *physics.RigidBody, bodies *physics.RigidBodySet, colliders *physics.ColliderSet, dt float32) {
	var (
		axles, forwards [WheelCount]mgl32.Vec3
		onGround        int
	)
	for i := range c.wheels {
		w := &c.wheels[i]
		w.sideImpulse, w.forwardImpulse = 0, 0
		if w.InContact {
			onGround++
		}
	}

	for i := range c.wheels {
		w := &c.wheels[i]
		if !w.InContact {
			continue
		}
		n := w.contactNormal
		axles[i] = game.SafeNormalize(w.axleWS.Sub(n.Mul(w.axleWS.Dot(n))))
		forwards[i] = game.SafeNormalize(n.Cross(axles[i]))

		ground := c.groundBody(w, bodies, colliders)
		relVel := axles[i].Dot(chassis.VelocityAtPoint(w.contactPoint))
		denom := chassis.ImpulseDenominator(w.contactPoint, axles[i])
		if ground != nil {
			relVel -= axles[i].Dot(ground.VelocityAtPoint(w.contactPoint))
			denom += ground.ImpulseDenominator(w.contactPoint, axles[i])
		}
		if denom > 0 {
			w.sideImpulse = -sideFrictionDamping * relVel / denom
		}
		w.sideImpulse *= w.Tuning.SideFrictionStiffness
	}

	sliding := false
	for i := range c.wheels {
		w := &c.wheels[i]
		w.skidInfo = 1
		if !w.InContact {
			continue
		}

		var rolling float32
		if w.EngineForce != 0 {
			rolling = w.EngineForce * dt
		} else {
			rolling = c.rollingFriction(chassis, c.groundBody(w, bodies, colliders), w, forwards[i], onGround)
		}
		w.forwardImpulse = rolling

		maxImpulse := w.suspensionForce * dt * w.Tuning.FrictionSlip
		x := w.forwardImpulse * forwardSkidFactor
		y := w.sideImpulse * sideSkidFactor
		if sq := x*x + y*y; sq > maxImpulse*maxImpulse {
			sliding = true
			w.skidInfo *= maxImpulse / math32.Sqrt(sq)
		}
	}

	if sliding {
		for i := range c.wheels {
			w := &c.wheels[i]
			if w.sideImpulse != 0 && w.skidInfo < 1 {
				w.forwardImpulse *= w.skidInfo
				w.sideImpulse *= w.skidInfo
			}
		}
	}

	up := chassis.TransformVector(game.Axis(c.IndexUpAxis))
	com := chassis.WorldCenterOfMass()
	for i := range c.wheels {
		w := &c.wheels[i]
		point := w.contactPoint
		if w.forwardImpulse != 0 {
			chassis.ApplyImpulseAtPoint(forwards[i].Mul(w.forwardImpulse), point)
		}
		if w.sideImpulse != 0 {
			// Lift the side impulse towards the centre of mass to limit body roll.
			point = point.Sub(up.Mul(up.Dot(point.Sub(com)) * (1 - w.RollInfluence)))
			chassis.ApplyImpulseAtPoint(axles[i].Mul(w.sideImpulse), point)
		}
	}
}

// rollingFriction returns the forward impulse that brings the wheel to rest relative to the
// ground, bounded by the wheel's brake.
func (c *Controller) rollingFriction(chassis, ground *physics.RigidBody, w *Wheel, forward mgl32.Vec3, onGround int) float32 {
	vel := chassis.VelocityAtPoint(w.contactPoint)
	denom := chassis.ImpulseDenominator(w.contactPoint, forward)
	if ground != nil {
		vel = vel.Sub(ground.VelocityAtPoint(w.contactPoint))
		denom += ground.ImpulseDenominator(w.contactPoint, forward)
	}
	if denom <= 0 || onGround == 0 {
		return 0
	}
	vrel := forward.Dot(vel)
	friction := -vrel * (1 / denom) / float32(onGround)
	return game.Clamp32(friction, -w.Brake, w.Brake)
}

func (c *Controller) updateWheelRotation(chassis *physics.RigidBody, dt float32) {
	forwardAxis := chassis.TransformVector(game.Axis(c.IndexForwardAxis))
	for i := range c.wheels {
		w := &c.wheels[i]
		if w.InContact && w.Radius > 0 {
			vel := chassis.VelocityAtPoint(w.hardPoint)
			fwd := forwardAxis.Sub(w.contactNormal.Mul(forwardAxis.Dot(w.contactNormal)))
			w.deltaRotation = fwd.Dot(vel) * dt / w.Radius
		}
		w.Rotation += w.deltaRotation
		w.deltaRotation *= rotationDamping
	}
}
