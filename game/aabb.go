package game

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// BoxFromHalfExtents returns a bounding box centred on center.
func BoxFromHalfExtents(center, half mgl32.Vec3) cube.BBox {
	return cube.Box(
		center[0]-half[0], center[1]-half[1], center[2]-half[2],
		center[0]+half[0], center[1]+half[1], center[2]+half[2],
	)
}

// BoxContains reports whether v lies inside bb, boundaries included.
func BoxContains(bb cube.BBox, v mgl32.Vec3) bool {
	min, max := bb.Min(), bb.Max()
	return v[0] >= min[0] && v[0] <= max[0] &&
		v[1] >= min[1] && v[1] <= max[1] &&
		v[2] >= min[2] && v[2] <= max[2]
}

// BoxCenter returns the centre point of bb.
func BoxCenter(bb cube.BBox) mgl32.Vec3 {
	return bb.Min().Add(bb.Max()).Mul(0.5)
}

// BoxOctants splits bb at its centre into 8 boxes of equal size.
func BoxOctants(bb cube.BBox) [8]cube.BBox {
	min, max, c := bb.Min(), bb.Max(), BoxCenter(bb)
	var out [8]cube.BBox
	for i := 0; i < 8; i++ {
		lo, hi := min, c
		if i&1 != 0 {
			lo[0], hi[0] = c[0], max[0]
		}
		if i&2 != 0 {
			lo[1], hi[1] = c[1], max[1]
		}
		if i&4 != 0 {
			lo[2], hi[2] = c[2], max[2]
		}
		out[i] = cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	}
	return out
}

// BoxVolume returns the volume enclosed by bb.
func BoxVolume(bb cube.BBox) float32 {
	ext := bb.Max().Sub(bb.Min())
	return ext[0] * ext[1] * ext[2]
}

// BoxSurfaceNormal returns the outward normal of the face of bb closest to v.
func BoxSurfaceNormal(bb cube.BBox, v mgl32.Vec3) mgl32.Vec3 {
	min, max := bb.Min(), bb.Max()
	best := float32(math32.MaxFloat32)
	var normal mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		if d := math32.Abs(v[axis] - min[axis]); d < best {
			best = d
			normal = Axis(axis).Mul(-1)
		}
		if d := math32.Abs(max[axis] - v[axis]); d < best {
			best = d
			normal = Axis(axis)
		}
	}
	return normal
}
