package physics

import "github.com/go-gl/mathgl/mgl32"

// maxCastDistance bounds the length of a ray segment handed to the box intercept, so rays
// cast with an unbounded time of impact stay finite.
const maxCastDistance = float32(1e4)

// Ray is a half-line. Dir does not need to be normalized: times of impact are expressed in
// multiples of Dir.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// NewRay ...
func NewRay(origin, dir mgl32.Vec3) Ray {
	return Ray{Origin: origin, Dir: dir}
}

// PointAt returns Origin + Dir*toi.
func (r Ray) PointAt(toi float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(toi))
}

// clampToi limits maxToi so the cast segment never exceeds maxCastDistance.
func (r Ray) clampToi(maxToi float32) float32 {
	l := r.Dir.Len()
	if l == 0 {
		return 0
	}
	if maxToi*l > maxCastDistance {
		return maxCastDistance / l
	}
	return maxToi
}

// RayIntersection describes where a ray hit a shape. A solid cast that starts inside a shape
// reports Toi 0 with a zero Normal.
type RayIntersection struct {
	Toi    float32
	Normal mgl32.Vec3
}
