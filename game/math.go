package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Round32 will round a float32 to a given precision.
func Round32(val float32, precision int) float32 {
	pwr := math32.Pow(10, float32(precision))
	return math32.Round(val*pwr) / pwr
}

// Float32ApproxEq determines whether two floating point numbers are close enough to each other
// by a threshold of 1e-5.
func Float32ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// Vec3ApproxEq is Float32ApproxEq applied to every component of the vectors.
func Vec3ApproxEq(a, b mgl32.Vec3) bool {
	return Float32ApproxEq(a[0], b[0]) && Float32ApproxEq(a[1], b[1]) && Float32ApproxEq(a[2], b[2])
}

// Sign returns -1 if x < 0, 1 if x > 0 and 0 otherwise. Unlike math32.Copysign it never
// returns a non-zero value for zero.
func Sign(x float32) float32 {
	if x < 0 {
		return -1
	} else if x > 0 {
		return 1
	}
	return 0
}

// Clamp32 restricts val to [min, max].
func Clamp32(val, min, max float32) float32 {
	if val < min {
		return min
	} else if val > max {
		return max
	}
	return val
}

// Lerp32 linearly interpolates from a towards b by t.
func Lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Axis returns the unit vector along the axis with the given index (0 = X, 1 = Y, 2 = Z).
func Axis(index int) mgl32.Vec3 {
	var v mgl32.Vec3
	v[index] = 1
	return v
}

// SafeNormalize normalizes v, returning the zero vector when v has no length.
func SafeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l <= 1e-12 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

func MinVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Min(a[0], b[0]), math32.Min(a[1], b[1]), math32.Min(a[2], b[2])}
}

func MaxVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Max(a[0], b[0]), math32.Max(a[1], b[1]), math32.Max(a[2], b[2])}
}

// QuatAxisAngle returns the rotation of angle radians around axis. A zero axis yields identity.
func QuatAxisAngle(axis mgl32.Vec3, angle float32) mgl32.Quat {
	axis = SafeNormalize(axis)
	if axis.LenSqr() == 0 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatRotate(angle, axis)
}
