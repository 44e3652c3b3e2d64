package game

import (
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

func TestSignOfZeroIsZero(t *testing.T) {
	for _, tc := range []struct {
		in, want float32
	}{
		{0, 0},
		{-0.5, -1},
		{10, 1},
	} {
		if got := Sign(tc.in); got != tc.want {
			t.Fatalf("Sign(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBoxOctantsCoverBox(t *testing.T) {
	bb := BoxFromHalfExtents(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0.5, 0.5, 0.5})
	octants := BoxOctants(bb)

	var total float32
	for _, o := range octants {
		if !Float32ApproxEq(BoxVolume(o), 0.125) {
			t.Fatalf("expected octant volume 0.125, got %v", BoxVolume(o))
		}
		if !BoxContains(bb, BoxCenter(o)) {
			t.Fatalf("octant centre %v outside parent box", BoxCenter(o))
		}
		total += BoxVolume(o)
	}
	if !Float32ApproxEq(total, 1) {
		t.Fatalf("expected octants to sum to 1, got %v", total)
	}
	if BoxCenter(octants[0]) == BoxCenter(octants[7]) {
		t.Fatalf("expected distinct octants")
	}
}

func TestBoxSurfaceNormal(t *testing.T) {
	bb := cube.Box(-1, -1, -1, 1, 1, 0)
	if n := BoxSurfaceNormal(bb, mgl32.Vec3{0.2, 0.1, 0}); n != (mgl32.Vec3{0, 0, 1}) {
		t.Fatalf("expected +Z normal, got %v", n)
	}
	if n := BoxSurfaceNormal(bb, mgl32.Vec3{-1, 0, -0.5}); n != (mgl32.Vec3{-1, 0, 0}) {
		t.Fatalf("expected -X normal, got %v", n)
	}
}

func TestQuatAxisAngleZeroAxis(t *testing.T) {
	q := QuatAxisAngle(mgl32.Vec3{}, 1)
	if q != mgl32.QuatIdent() {
		t.Fatalf("expected identity, got %v", q)
	}
}
