package physics

import (
	"iter"

	"github.com/dozersim/dozersim/game"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// ColliderHandle identifies a collider inside a ColliderSet. The zero handle is never issued.
type ColliderHandle uint32

// Collider attaches a Shape to an optional parent body. A collider without a parent is static
// and LocalPosition/LocalRotation are its world pose.
type Collider struct {
	Name  string
	Shape Shape

	LocalPosition mgl32.Vec3
	LocalRotation mgl32.Quat

	Friction float32
	Sensor   bool
	// Coupled marks the collider as a boundary obstacle for the particle solver.
	Coupled bool

	parent    BodyHandle
	hasParent bool
}

// NewCollider returns a collider with the given shape and identity pose.
func NewCollider(name string, shape Shape) *Collider {
	return &Collider{
		Name:          name,
		Shape:         shape,
		LocalRotation: mgl32.QuatIdent(),
		Friction:      0.5,
	}
}

// WithPosition sets the position of the collider relative to its parent.
func (c *Collider) WithPosition(pos mgl32.Vec3) *Collider {
	c.LocalPosition = pos
	return c
}

// WithRotation sets the rotation of the collider relative to its parent.
func (c *Collider) WithRotation(rot mgl32.Quat) *Collider {
	c.LocalRotation = rot
	return c
}

// WithCoupling marks the collider as an obstacle for the particle solver.
func (c *Collider) WithCoupling() *Collider {
	c.Coupled = true
	return c
}

// Parent returns the handle of the body the collider is attached to.
func (c *Collider) Parent() (BodyHandle, bool) {
	return c.parent, c.hasParent
}

// Pose returns the world position and rotation of the collider.
func (c *Collider) Pose(bodies *RigidBodySet) (mgl32.Vec3, mgl32.Quat) {
	if c.hasParent {
		if b, ok := bodies.Get(c.parent); ok {
			return b.TransformPoint(c.LocalPosition), b.Rotation.Mul(c.LocalRotation)
		}
	}
	return c.LocalPosition, c.LocalRotation
}

// WorldBBox returns the axis-aligned bounds of the collider in world space.
func (c *Collider) WorldBBox(bodies *RigidBodySet) cube.BBox {
	pos, rot := c.Pose(bodies)
	local := c.Shape.LocalBBox()
	min, max := local.Min(), local.Max()
	lo, hi := pos, pos
	for i := 0; i < 8; i++ {
		corner := min
		if i&1 != 0 {
			corner[0] = max[0]
		}
		if i&2 != 0 {
			corner[1] = max[1]
		}
		if i&4 != 0 {
			corner[2] = max[2]
		}
		p := pos.Add(rot.Rotate(corner))
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo, hi = game.MinVec3(lo, p), game.MaxVec3(hi, p)
	}
	return cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
}

// CastRay casts r against the collider in world space.
func (c *Collider) CastRay(bodies *RigidBodySet, r Ray, maxToi float32, solid bool) (RayIntersection, bool) {
	pos, rot := c.Pose(bodies)
	inv := rot.Inverse()
	local := Ray{Origin: inv.Rotate(r.Origin.Sub(pos)), Dir: inv.Rotate(r.Dir)}
	hit, ok := c.Shape.CastLocalRay(local, maxToi, solid)
	if !ok {
		return RayIntersection{}, false
	}
	hit.Normal = rot.Rotate(hit.Normal)
	return hit, true
}

// IntersectsRay reports whether a solid cast of r hits the collider within maxToi.
func (c *Collider) IntersectsRay(bodies *RigidBodySet, r Ray, maxToi float32) bool {
	_, ok := c.CastRay(bodies, r, maxToi, true)
	return ok
}

// ResolvePenetration returns the closest world surface point and normal if p is inside the
// collider.
func (c *Collider) ResolvePenetration(bodies *RigidBodySet, p mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3, bool) {
	pos, rot := c.Pose(bodies)
	surface, normal, inside := c.Shape.ResolvePenetration(rot.Inverse().Rotate(p.Sub(pos)))
	if !inside {
		return p, mgl32.Vec3{}, false
	}
	return pos.Add(rot.Rotate(surface)), rot.Rotate(normal), true
}

// ColliderSet owns every collider of a world.
type ColliderSet struct {
	colliders []*Collider
	count     int
}

// NewColliderSet returns an empty set.
func NewColliderSet() *ColliderSet {
	return &ColliderSet{}
}

// Insert adds a collider without a parent body.
func (s *ColliderSet) Insert(c *Collider) ColliderHandle {
	s.colliders = append(s.colliders, c)
	s.count++
	return ColliderHandle(len(s.colliders))
}

// InsertWithParent adds a collider attached to the body with the given handle.
func (s *ColliderSet) InsertWithParent(c *Collider, parent BodyHandle) ColliderHandle {
	c.parent, c.hasParent = parent, true
	return s.Insert(c)
}

// Get returns the collider with the given handle.
func (s *ColliderSet) Get(h ColliderHandle) (*Collider, bool) {
	if h == 0 || int(h) > len(s.colliders) {
		return nil, false
	}
	c := s.colliders[h-1]
	return c, c != nil
}

// Remove deletes the collider with the given handle.
func (s *ColliderSet) Remove(h ColliderHandle) bool {
	if _, ok := s.Get(h); !ok {
		return false
	}
	s.colliders[h-1] = nil
	s.count--
	return true
}

// RemoveAttached removes every collider whose parent is body.
func (s *ColliderSet) RemoveAttached(body BodyHandle) {
	for h, c := range s.All() {
		if p, ok := c.Parent(); ok && p == body {
			s.Remove(h)
		}
	}
}

// Len returns the number of colliders in the set.
func (s *ColliderSet) Len() int {
	return s.count
}

// All iterates over the colliders of the set in handle order.
func (s *ColliderSet) All() iter.Seq2[ColliderHandle, *Collider] {
	return func(yield func(ColliderHandle, *Collider) bool) {
		for i, c := range s.colliders {
			if c == nil {
				continue
			}
			if !yield(ColliderHandle(i+1), c) {
				return
			}
		}
	}
}

// Coupled returns the handles of every collider tagged for particle coupling.
func (s *ColliderSet) Coupled() []ColliderHandle {
	var handles []ColliderHandle
	for h, c := range s.All() {
		if c.Coupled {
			handles = append(handles, h)
		}
	}
	return handles
}
