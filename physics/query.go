package physics

import (
	"github.com/chewxy/math32"
	"github.com/dozersim/dozersim/game"
	"github.com/ethaniccc/float32-cube/cube/trace"
)

// QueryFilterFlags exclude whole categories of colliders from scene queries.
type QueryFilterFlags uint8

const (
	ExcludeFixedFlag QueryFilterFlags = 1 << iota
	ExcludeKinematicFlag
	ExcludeDynamicFlag
	ExcludeSensorsFlag
)

// QueryFilter decides which colliders a scene query may hit. Colliders without a parent body
// count as fixed.
type QueryFilter struct {
	Flags QueryFilterFlags

	excludeBody        BodyHandle
	excludeCollider    ColliderHandle
	hasExcludeBody     bool
	hasExcludeCollider bool

	// Predicate, if set, must return true for a collider to be hit.
	Predicate func(h ColliderHandle, c *Collider) bool
}

// DefaultQueryFilter hits every collider.
func DefaultQueryFilter() QueryFilter {
	return QueryFilter{}
}

// ExcludeDynamic returns a filter that skips colliders attached to dynamic bodies.
func ExcludeDynamic() QueryFilter {
	return QueryFilter{Flags: ExcludeDynamicFlag}
}

// ExcludeFixed returns a filter that skips fixed and parentless colliders.
func ExcludeFixed() QueryFilter {
	return QueryFilter{Flags: ExcludeFixedFlag}
}

// ExcludeRigidBody skips every collider attached to the body h.
func (f QueryFilter) ExcludeRigidBody(h BodyHandle) QueryFilter {
	f.excludeBody, f.hasExcludeBody = h, true
	return f
}

// ExcludeCollider skips the collider h.
func (f QueryFilter) ExcludeCollider(h ColliderHandle) QueryFilter {
	f.excludeCollider, f.hasExcludeCollider = h, true
	return f
}

// Test returns true if the collider c with handle h passes the filter.
func (f QueryFilter) Test(bodies *RigidBodySet, h ColliderHandle, c *Collider) bool {
	if f.hasExcludeCollider && f.excludeCollider == h {
		return false
	}
	if c.Sensor && f.Flags&ExcludeSensorsFlag != 0 {
		return false
	}

	bodyType := Fixed
	if parent, ok := c.Parent(); ok {
		if f.hasExcludeBody && parent == f.excludeBody {
			return false
		}
		if b, ok := bodies.Get(parent); ok {
			bodyType = b.Type
		}
	}
	switch bodyType {
	case Fixed:
		if f.Flags&ExcludeFixedFlag != 0 {
			return false
		}
	case KinematicPositionBased:
		if f.Flags&ExcludeKinematicFlag != 0 {
			return false
		}
	case Dynamic:
		if f.Flags&ExcludeDynamicFlag != 0 {
			return false
		}
	}
	return f.Predicate == nil || f.Predicate(h, c)
}

// QueryPipeline answers scene queries against a body and collider snapshot.
type QueryPipeline struct{}

// CastRay returns the closest collider hit by r within maxToi that passes filter.
func (QueryPipeline) CastRay(bodies *RigidBodySet, colliders *ColliderSet, r Ray, maxToi float32, solid bool, filter QueryFilter) (ColliderHandle, RayIntersection, bool) {
	var (
		bestHandle ColliderHandle
		best       = RayIntersection{Toi: math32.MaxFloat32}
		found      bool
	)
	end := r.PointAt(r.clampToi(maxToi))
	for h, c := range colliders.All() {
		if !filter.Test(bodies, h, c) {
			continue
		}
		bb := c.WorldBBox(bodies)
		if !game.BoxContains(bb, r.Origin) {
			if _, ok := trace.BBoxIntercept(bb, r.Origin, end); !ok {
				continue
			}
		}
		hit, ok := c.CastRay(bodies, r, maxToi, solid)
		if ok && hit.Toi < best.Toi {
			bestHandle, best, found = h, hit, true
		}
	}
	return bestHandle, best, found
}

// IntersectsRay reports whether any collider passing filter is hit by a solid cast of r.
func (q QueryPipeline) IntersectsRay(bodies *RigidBodySet, colliders *ColliderSet, r Ray, maxToi float32, filter QueryFilter) bool {
	_, _, ok := q.CastRay(bodies, colliders, r, maxToi, true, filter)
	return ok
}
