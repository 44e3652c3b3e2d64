package accessory

import (
	"github.com/dozersim/dozersim/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// Pivot is a joint rotation about a point in chassis space.
type Pivot struct {
	Point    mgl32.Vec3
	Rotation mgl32.Quat
}

func (p Pivot) apply(pos mgl32.Vec3, rot mgl32.Quat) (mgl32.Vec3, mgl32.Quat) {
	return p.Point.Add(p.Rotation.Rotate(pos.Sub(p.Point))), p.Rotation.Mul(rot)
}

// Linkage is a chassis collider moved by joints. The rest pose is captured when the linkage is
// found so repeated posing never accumulates.
type Linkage struct {
	Collider     physics.ColliderHandle
	RestPosition mgl32.Vec3
	RestRotation mgl32.Quat
}

// FindLinkage looks up the collider of the given name attached to body.
func FindLinkage(colliders *physics.ColliderSet, body physics.BodyHandle, name string) (Linkage, bool) {
	for h, c := range colliders.All() {
		parent, ok := c.Parent()
		if !ok || parent != body || c.Name != name {
			continue
		}
		return Linkage{Collider: h, RestPosition: c.LocalPosition, RestRotation: c.LocalRotation}, true
	}
	return Linkage{}, false
}

// Pose places the collider by applying the pivots in order, innermost joint first.
func (l Linkage) Pose(colliders *physics.ColliderSet, pivots ...Pivot) {
	c, ok := colliders.Get(l.Collider)
	if !ok {
		return
	}
	pos, rot := l.RestPosition, l.RestRotation
	for _, p := range pivots {
		pos, rot = p.apply(pos, rot)
	}
	c.LocalPosition, c.LocalRotation = pos, rot.Normalize()
}
