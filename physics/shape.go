package physics

import (
	"github.com/chewxy/math32"
	"github.com/dozersim/dozersim/game"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape is the geometry of a collider, expressed in the collider's local frame.
type Shape interface {
	// LocalBBox returns the bounding box of the shape.
	LocalBBox() cube.BBox
	// CastLocalRay returns the first intersection of r with the shape within maxToi.
	CastLocalRay(r Ray, maxToi float32, solid bool) (RayIntersection, bool)
	// ResolvePenetration returns the closest surface point and its outward normal if p is
	// inside the shape.
	ResolvePenetration(p mgl32.Vec3) (surface, normal mgl32.Vec3, inside bool)
}

// Cuboid is a box centred on the origin of the collider.
type Cuboid struct {
	HalfExtents mgl32.Vec3
}

// NewCuboid ...
func NewCuboid(hx, hy, hz float32) Cuboid {
	return Cuboid{HalfExtents: mgl32.Vec3{hx, hy, hz}}
}

func (c Cuboid) LocalBBox() cube.BBox {
	return game.BoxFromHalfExtents(mgl32.Vec3{}, c.HalfExtents)
}

func (c Cuboid) CastLocalRay(r Ray, maxToi float32, solid bool) (RayIntersection, bool) {
	return castBox(c.LocalBBox(), r, maxToi, solid)
}

func (c Cuboid) ResolvePenetration(p mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3, bool) {
	bb := c.LocalBBox()
	if !game.BoxContains(bb, p) {
		return p, mgl32.Vec3{}, false
	}
	normal := game.BoxSurfaceNormal(bb, p)
	surface := p
	for axis := 0; axis < 3; axis++ {
		if normal[axis] > 0 {
			surface[axis] = bb.Max()[axis]
		} else if normal[axis] < 0 {
			surface[axis] = bb.Min()[axis]
		}
	}
	return surface, normal, true
}

// castBox intersects r with bb. Rays leaving the box through a face in a non-solid cast report
// the inward normal of that face.
func castBox(bb cube.BBox, r Ray, maxToi float32, solid bool) (RayIntersection, bool) {
	maxToi = r.clampToi(maxToi)
	if maxToi <= 0 {
		return RayIntersection{}, false
	}
	inside := game.BoxContains(bb, r.Origin)
	if inside && solid {
		return RayIntersection{}, true
	}

	res, ok := trace.BBoxIntercept(bb, r.Origin, r.PointAt(maxToi))
	if !ok {
		return RayIntersection{}, false
	}
	hit := res.Position()
	normal := game.BoxSurfaceNormal(bb, hit)
	if inside {
		normal = normal.Mul(-1)
	}
	return RayIntersection{
		Toi:    hit.Sub(r.Origin).Len() / r.Dir.Len(),
		Normal: normal,
	}, true
}

// heightFieldSkirt is how far below its lowest sample a height field still counts as solid
// ground when resolving penetrations.
const heightFieldSkirt = float32(1)

// HeightField is a regular grid of height samples centred on the collider origin. Columns run
// along X, rows along Y. Scale holds the total X and Y extents and the Z multiplier applied to
// every sample. The surface is two-sided: rays hit it from above and from below.
type HeightField struct {
	Rows, Cols int
	// Heights holds Rows*Cols samples in row-major order.
	Heights []float32
	Scale   mgl32.Vec3

	min, max float32
}

// NewHeightField returns a height field over the given samples.
func NewHeightField(rows, cols int, heights []float32, scale mgl32.Vec3) *HeightField {
	h := &HeightField{Rows: rows, Cols: cols, Heights: heights, Scale: scale}
	h.min, h.max = math32.MaxFloat32, -math32.MaxFloat32
	for _, v := range heights {
		h.min, h.max = math32.Min(h.min, v), math32.Max(h.max, v)
	}
	if len(heights) == 0 {
		h.min, h.max = 0, 0
	}
	return h
}

// Sample returns the scaled height of the sample at row r, column c.
func (h *HeightField) Sample(r, c int) float32 {
	return h.Heights[r*h.Cols+c] * h.Scale[2]
}

func (h *HeightField) cellSize() (float32, float32) {
	return h.Scale[0] / float32(h.Cols-1), h.Scale[1] / float32(h.Rows-1)
}

func (h *HeightField) LocalBBox() cube.BBox {
	hx, hy := h.Scale[0]/2, h.Scale[1]/2
	return cube.Box(-hx, -hy, h.min*h.Scale[2]-heightFieldSkirt, hx, hy, h.max*h.Scale[2])
}

// cellTriangles returns the two triangles of the cell at row r, column c.
func (h *HeightField) cellTriangles(r, c int) [2][3]mgl32.Vec3 {
	dx, dy := h.cellSize()
	x0, y0 := -h.Scale[0]/2+float32(c)*dx, -h.Scale[1]/2+float32(r)*dy
	p00 := mgl32.Vec3{x0, y0, h.Sample(r, c)}
	p10 := mgl32.Vec3{x0 + dx, y0, h.Sample(r, c+1)}
	p01 := mgl32.Vec3{x0, y0 + dy, h.Sample(r+1, c)}
	p11 := mgl32.Vec3{x0 + dx, y0 + dy, h.Sample(r+1, c+1)}
	return [2][3]mgl32.Vec3{{p00, p10, p11}, {p00, p11, p01}}
}

// cellBox returns the column box enclosing the surface of a cell.
func (h *HeightField) cellBox(r, c int) cube.BBox {
	dx, dy := h.cellSize()
	x0, y0 := -h.Scale[0]/2+float32(c)*dx, -h.Scale[1]/2+float32(r)*dy
	lo := math32.Min(math32.Min(h.Sample(r, c), h.Sample(r, c+1)), math32.Min(h.Sample(r+1, c), h.Sample(r+1, c+1)))
	hi := math32.Max(math32.Max(h.Sample(r, c), h.Sample(r, c+1)), math32.Max(h.Sample(r+1, c), h.Sample(r+1, c+1)))
	return cube.Box(x0, y0, lo-1e-3, x0+dx, y0+dy, hi+1e-3)
}

// cellIndex returns the cell containing the local point (x, y), clamped to the grid.
func (h *HeightField) cellIndex(x, y float32) (int, int) {
	dx, dy := h.cellSize()
	c := int(math32.Floor((x + h.Scale[0]/2) / dx))
	r := int(math32.Floor((y + h.Scale[1]/2) / dy))
	return clampInt(r, 0, h.Rows-2), clampInt(c, 0, h.Cols-2)
}

func (h *HeightField) CastLocalRay(ray Ray, maxToi float32, _ bool) (RayIntersection, bool) {
	if h.Rows < 2 || h.Cols < 2 {
		return RayIntersection{}, false
	}
	maxToi = ray.clampToi(maxToi)
	end := ray.PointAt(maxToi)
	bounds := h.LocalBBox()
	if !game.BoxContains(bounds, ray.Origin) {
		if _, ok := trace.BBoxIntercept(bounds, ray.Origin, end); !ok {
			return RayIntersection{}, false
		}
	}

	lo, hi := game.MinVec3(ray.Origin, end), game.MaxVec3(ray.Origin, end)
	r0, c0 := h.cellIndex(lo[0], lo[1])
	r1, c1 := h.cellIndex(hi[0], hi[1])

	best, found := RayIntersection{Toi: math32.MaxFloat32}, false
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			cell := h.cellBox(r, c)
			if !game.BoxContains(cell, ray.Origin) {
				if _, ok := trace.BBoxIntercept(cell, ray.Origin, end); !ok {
					continue
				}
			}
			for _, tri := range h.cellTriangles(r, c) {
				toi, normal, ok := rayTriangle(ray, tri)
				if ok && toi <= maxToi && toi < best.Toi {
					if normal.Dot(ray.Dir) > 0 {
						normal = normal.Mul(-1)
					}
					best, found = RayIntersection{Toi: toi, Normal: normal}, true
				}
			}
		}
	}
	return best, found
}

// SurfaceAt returns the height of the surface and its upward normal at the local point (x, y).
func (h *HeightField) SurfaceAt(x, y float32) (float32, mgl32.Vec3, bool) {
	hx, hy := h.Scale[0]/2, h.Scale[1]/2
	if h.Rows < 2 || h.Cols < 2 || x < -hx || x > hx || y < -hy || y > hy {
		return 0, mgl32.Vec3{}, false
	}
	r, c := h.cellIndex(x, y)
	down := Ray{Origin: mgl32.Vec3{x, y, h.max*h.Scale[2] + 1}, Dir: mgl32.Vec3{0, 0, -1}}
	for _, tri := range h.cellTriangles(r, c) {
		if toi, normal, ok := rayTriangle(down, tri); ok {
			return down.PointAt(toi).Z(), normal, true
		}
	}
	return h.Sample(r, c), mgl32.Vec3{0, 0, 1}, true
}

func (h *HeightField) ResolvePenetration(p mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3, bool) {
	z, normal, ok := h.SurfaceAt(p[0], p[1])
	if !ok || p[2] >= z || p[2] < h.min*h.Scale[2]-heightFieldSkirt {
		return p, mgl32.Vec3{}, false
	}
	return mgl32.Vec3{p[0], p[1], z}, normal, true
}

// rayTriangle is the Möller–Trumbore intersection. The returned normal follows the winding of
// the triangle.
func rayTriangle(r Ray, tri [3]mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	e1, e2 := tri[1].Sub(tri[0]), tri[2].Sub(tri[0])
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < 1e-9 {
		return 0, mgl32.Vec3{}, false
	}
	inv := 1 / det
	s := r.Origin.Sub(tri[0])
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, mgl32.Vec3{}, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, mgl32.Vec3{}, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, mgl32.Vec3{}, false
	}
	return t, game.SafeNormalize(e1.Cross(e2)), true
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	} else if v > max {
		return max
	}
	return v
}
